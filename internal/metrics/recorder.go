// Package metrics exposes generation counters and process resource usage.
package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

const namespace = "bamcfg"

// Recorder collects generation metrics. A nil *Recorder is valid and
// records nothing. All methods are safe for concurrent use.
type Recorder struct {
	logger       *zap.Logger
	registry     *prometheus.Registry
	emitted      *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	missing      *prometheus.CounterVec
	passDuration prometheus.Histogram
	passFailures *prometheus.CounterVec
	processRSS   prometheus.Gauge
	processCPU   prometheus.Gauge
}

// ProcessStats is a point-in-time resource sample of this process
type ProcessStats struct {
	RSS        uint64    `json:"rss"`
	CPUPercent float64   `json:"cpu_percent"`
	Threads    int32     `json:"threads"`
	SampledAt  time.Time `json:"sampled_at"`
}

// NewRecorder creates a recorder with its own prometheus registry
func NewRecorder(logger *zap.Logger) *Recorder {
	r := &Recorder{
		logger:   logger.Named("metrics"),
		registry: prometheus.NewRegistry(),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_emitted_total",
			Help:      "Objects written to configuration files, by kind.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_skipped_total",
			Help:      "Generation requests for objects already emitted in the pass, by kind.",
		}, []string{"kind"}),
		missing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_not_found_total",
			Help:      "Objects that could not be materialized (missing, template or inactive), by kind.",
		}, []string{"kind"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of successful generation passes.",
			Buckets:   prometheus.DefBuckets,
		}),
		passFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_failures_total",
			Help:      "Generation passes aborted by a fatal error, by error code.",
		}, []string{"code"}),
		processRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident memory of the compiler after the last pass.",
		}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage of the compiler after the last pass.",
		}),
	}

	r.registry.MustRegister(r.emitted, r.skipped, r.missing, r.passDuration,
		r.passFailures, r.processRSS, r.processCPU)
	return r
}

// Registry returns the prometheus registry backing the recorder
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Emitted counts one object written for kind
func (r *Recorder) Emitted(kind string) {
	if r == nil {
		return
	}
	r.emitted.WithLabelValues(kind).Inc()
}

// Skipped counts one already-emitted request for kind
func (r *Recorder) Skipped(kind string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(kind).Inc()
}

// Missing counts one object that could not be materialized
func (r *Recorder) Missing(kind string) {
	if r == nil {
		return
	}
	r.missing.WithLabelValues(kind).Inc()
}

// ObservePass records the duration of a successful pass
func (r *Recorder) ObservePass(d time.Duration) {
	if r == nil {
		return
	}
	r.passDuration.Observe(d.Seconds())
}

// PassFailed counts an aborted pass
func (r *Recorder) PassFailed(code string) {
	if r == nil {
		return
	}
	r.passFailures.WithLabelValues(code).Inc()
}

// SampleProcess reads the resource usage of the current process and
// updates the process gauges
func (r *Recorder) SampleProcess() (*ProcessStats, error) {
	if r == nil {
		return nil, nil
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect process: %w", err)
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU usage: %w", err)
	}

	threads, err := p.NumThreads()
	if err != nil {
		r.logger.Debug("Failed to get thread count", zap.Error(err))
	}

	stats := &ProcessStats{
		RSS:        memInfo.RSS,
		CPUPercent: cpuPercent,
		Threads:    threads,
		SampledAt:  time.Now(),
	}

	r.processRSS.Set(float64(stats.RSS))
	r.processCPU.Set(stats.CPUPercent)

	r.logger.Debug("Process sampled",
		zap.Uint64("rss", stats.RSS),
		zap.Float64("cpu_percent", stats.CPUPercent),
		zap.Int32("threads", stats.Threads))

	return stats, nil
}

// WriteTextfile writes every metric in the text exposition format, for
// node_exporter's textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
