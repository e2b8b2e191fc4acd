// Package store builds the room message log backend selected in configuration.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroomai/internal/config"
	"github.com/vovakirdan/chatroomai/internal/core"
	"github.com/vovakirdan/chatroomai/internal/store/redis"
	"github.com/vovakirdan/chatroomai/internal/store/sqlite"
)

// Open returns the message log for cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zerolog.Logger) (core.MessageLog, error) {
	switch cfg.Driver {
	case "", config.StoreMemory:
		logger.Info().Str("driver", config.StoreMemory).Msg("message log initialized")
		return core.NewMemoryLog(), nil
	case config.StoreSQLite:
		l, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite log: %w", err)
		}
		logger.Info().Str("driver", cfg.Driver).Str("db_path", cfg.SQLitePath).Msg("message log initialized")
		return l, nil
	case config.StoreRedis:
		l, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("init redis log: %w", err)
		}
		logger.Info().Str("driver", cfg.Driver).Str("addr", cfg.RedisAddr).Msg("message log initialized")
		return l, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
