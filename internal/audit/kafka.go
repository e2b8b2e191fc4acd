// Package audit mirrors room log changes to Kafka.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/vovakirdan/chatroomai/internal/config"
	"github.com/vovakirdan/chatroomai/internal/core"
)

// Record is the JSON value of one audit message. The message key is the room.
type Record struct {
	Room   string         `json:"room"`
	Action string         `json:"action"`
	Entry  *core.LogEntry `json:"entry,omitempty"`
	At     time.Time      `json:"at"`
}

// Sink is an audit sink owning a connection that must be closed.
type Sink interface {
	core.AuditSink
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes audit records to a topic without waiting for delivery.
type KafkaSink struct {
	w   messageWriter
	log *zerolog.Logger
}

// New returns a Kafka sink, or a no-op sink when no brokers are configured.
func New(cfg config.AuditConfig, logger *zerolog.Logger) Sink {
	if len(cfg.Brokers) == 0 {
		return nopSink{}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error().Err(err).Int("messages", len(messages)).Msg("audit delivery failed")
			}
		},
	}
	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("audit sink initialized")
	return newKafkaSink(w, logger)
}

func newKafkaSink(w messageWriter, logger *zerolog.Logger) *KafkaSink {
	return &KafkaSink{w: w, log: logger}
}

// Record queues rec for publishing. Failures are logged, never returned.
func (s *KafkaSink) Record(ctx context.Context, rec core.AuditRecord) {
	value, err := json.Marshal(Record{Room: rec.Room, Action: rec.Action, Entry: rec.Entry, At: rec.At})
	if err != nil {
		s.log.Error().Err(err).Str("room", rec.Room).Msg("marshal audit record")
		return
	}

	msg := kafka.Message{Key: []byte(rec.Room), Value: value, Time: rec.At}
	if err := s.w.WriteMessages(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("room", rec.Room).Str("action", rec.Action).Msg("publish audit record")
	}
}

// Close flushes pending messages.
func (s *KafkaSink) Close() error {
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("close audit writer: %w", err)
	}
	return nil
}

type nopSink struct{}

func (nopSink) Record(context.Context, core.AuditRecord) {}

func (nopSink) Close() error { return nil }
