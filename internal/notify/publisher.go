// Package notify announces completed generation passes on NATS JetStream so
// that the configuration merger and engine reloader can react to them.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/compiler"
)

const (
	// StreamName is the JetStream stream holding generation events
	StreamName = "BAMCFG"

	streamMaxAge  = 7 * 24 * time.Hour
	streamMaxMsgs = -1
)

// Event announces the file set produced for one node
type Event struct {
	ID          string         `json:"id"`
	PassID      string         `json:"pass_id"`
	NodeID      int            `json:"node_id"`
	Paths       []string       `json:"paths"`
	Counts      map[string]int `json:"counts"`
	Duration    time.Duration  `json:"duration"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// EventFromManifest builds the event of a completed pass
func EventFromManifest(m *compiler.Manifest) Event {
	counts := make(map[string]int, len(m.Counts))
	for kind, n := range m.Counts {
		counts[string(kind)] = n
	}
	return Event{
		ID:          uuid.NewString(),
		PassID:      m.PassID,
		NodeID:      m.NodeID,
		Paths:       m.Paths,
		Counts:      counts,
		Duration:    m.Duration,
		GeneratedAt: m.GeneratedAt,
	}
}

// Publisher publishes generation events
type Publisher struct {
	js     nats.JetStreamContext
	prefix string
	logger *zap.Logger
}

// NewPublisher creates a publisher and makes sure the event stream exists
func NewPublisher(ctx context.Context, js nats.JetStreamContext, prefix string, logger *zap.Logger) (*Publisher, error) {
	p := &Publisher{
		js:     js,
		prefix: prefix,
		logger: logger.Named("notify"),
	}
	if err := p.ensureStream(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureStream(ctx context.Context) error {
	_, err := p.js.StreamInfo(StreamName, nats.Context(ctx))
	if err == nil {
		p.logger.Info("Using existing event stream", zap.String("name", StreamName))
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	_, err = p.js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{p.prefix + ".>"},
		Storage:  nats.FileStorage,
		MaxAge:   streamMaxAge,
		MaxMsgs:  streamMaxMsgs,
	}, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	p.logger.Info("Created event stream", zap.String("name", StreamName))
	return nil
}

// Subject returns the subject events of a node are published on
func (p *Publisher) Subject(nodeID int) string {
	return p.prefix + ".generated." + strconv.Itoa(nodeID)
}

// Publish announces a completed pass
func (p *Publisher) Publish(ctx context.Context, m *compiler.Manifest) error {
	event := EventFromManifest(m)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(p.Subject(m.NodeID), data, nats.Context(ctx), nats.MsgId(event.ID)); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.Int("node_id", m.NodeID),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("pass_id", event.PassID),
		zap.Int("node_id", event.NodeID))
	return nil
}

// Subscribe delivers every event published under the prefix to handler
// until ctx is done
func (p *Publisher) Subscribe(ctx context.Context, handler func(Event)) error {
	sub, err := p.js.Subscribe(p.prefix+".generated.*", func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			p.logger.Error("Failed to unmarshal event", zap.Error(err))
			_ = msg.Term()
			return
		}

		handler(event)
		_ = msg.Ack()
	}, nats.DeliverNew())
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()

	return nil
}

// Connect opens a NATS connection that logs disconnects and reconnects
func Connect(url, name string, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
