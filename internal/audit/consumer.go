package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/vovakirdan/chatroomai/internal/config"
)

// Handler processes one decoded audit record.
type Handler func(ctx context.Context, rec Record) error

// Consume reads the audit topic as part of groupID until ctx is cancelled.
// Undecodable messages are committed and skipped. A handler error stops consumption
// without committing the message.
func Consume(ctx context.Context, cfg config.AuditConfig, groupID string, logger *zerolog.Logger, handle Handler) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("audit.brokers is empty")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer r.Close()

	logger.Info().Str("topic", cfg.Topic).Str("group", groupID).Msg("audit consumer started")

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch audit message: %w", err)
		}

		rec, err := decodeRecord(m.Value)
		if err != nil {
			logger.Warn().Err(err).Int64("offset", m.Offset).Msg("skipping undecodable audit message")
		} else if err := handle(ctx, rec); err != nil {
			return fmt.Errorf("handle audit record: %w", err)
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("commit audit message: %w", err)
		}
	}
}

func decodeRecord(value []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil {
		return Record{}, err
	}
	if rec.Room == "" || rec.Action == "" {
		return Record{}, errors.New("audit record without room or action")
	}
	return rec, nil
}
