// Package schedule runs periodic regeneration jobs on cron expressions
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateJob is returned when a job name is already scheduled
	ErrDuplicateJob = errors.New("job already scheduled")
	// ErrJobNotFound is returned for a job name that is not scheduled
	ErrJobNotFound = errors.New("job not found")
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// parser accepts six-field expressions (with seconds) and descriptors
var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues)...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(fields(keysAndValues), zap.Error(err))...)
}

func fields(keysAndValues []interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		out = append(out, zap.Any(key, keysAndValues[i+1]))
	}
	return out
}

// Scheduler runs named jobs. A job still running when its next tick comes
// is skipped for that tick.
type Scheduler struct {
	logger  *zap.Logger
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a stopped scheduler
func New(logger *zap.Logger) *Scheduler {
	logger = logger.Named("schedule")
	cl := &cronLogger{logger: logger.Named("cron")}

	return &Scheduler{
		logger: logger,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		entries: make(map[string]cron.EntryID),
	}
}

// Validate checks a cron expression
func Validate(expression string) error {
	if _, err := parser.Parse(expression); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}
	return nil
}

// Add schedules job under name. ctx is passed to every run of the job.
func (s *Scheduler) Add(ctx context.Context, name, expression string, job Job) error {
	spec, err := parser.Parse(expression)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	entryID := s.cron.Schedule(spec, cron.FuncJob(func() {
		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("Scheduled job failed",
				zap.String("name", name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			return
		}
		s.logger.Info("Scheduled job completed",
			zap.String("name", name),
			zap.Duration("duration", time.Since(start)))
	}))
	s.entries[name] = entryID

	s.logger.Info("Added schedule",
		zap.String("name", name),
		zap.String("expression", expression),
		zap.Time("next_run", spec.Next(time.Now())))

	return nil
}

// Remove unschedules a job
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	s.cron.Remove(entryID)
	delete(s.entries, name)

	s.logger.Info("Removed schedule", zap.String("name", name))
	return nil
}

// Next returns the next run time of a job. It is zero until the scheduler
// has been started.
func (s *Scheduler) Next(name string) (time.Time, error) {
	s.mu.Lock()
	entryID, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.cron.Entry(entryID).Next, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to complete
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
