package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatroomai/internal/config"
	"github.com/vovakirdan/chatroomai/internal/core"
)

func TestOpenBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := zerolog.Nop()

	tests := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{name: "memory", cfg: config.StoreConfig{Driver: config.StoreMemory}},
		{name: "sqlite", cfg: config.StoreConfig{Driver: config.StoreSQLite, SQLitePath: ":memory:"}},
		{name: "redis", cfg: config.StoreConfig{Driver: config.StoreRedis, RedisAddr: mr.Addr(), RedisPrefix: "t:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			log, err := Open(ctx, tt.cfg, &logger)
			require.NoError(t, err)
			defer log.Close()

			require.NoError(t, log.Append(ctx, tt.name, core.LogEntry{Text: "hi", Role: core.RoleUser}))
			require.NoError(t, log.Append(ctx, tt.name, core.LogEntry{Text: "hello", Role: core.RoleAssistant}))
			tail, err := log.Tail(ctx, tt.name, 1)
			require.NoError(t, err)
			assert.Equal(t, []core.LogEntry{{Text: "hello", Role: core.RoleAssistant}}, tail)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	logger := zerolog.Nop()
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"}, &logger)
	assert.Error(t, err)
}
