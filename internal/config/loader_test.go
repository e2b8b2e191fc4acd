package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPortEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("CHATROOM_PORT", "")
}

func TestLoadWritesDefaultConfig(t *testing.T) {
	clearPortEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, 3500, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
	assert.Equal(t, "3:04:05 PM", cfg.TimeFormat)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Empty(t, cfg.Audit.Brokers)
	assert.Zero(t, cfg.MessagesPerMinute, "inbound frame limit is off unless configured")

	_, err = os.Stat(path)
	require.NoError(t, err)

	// A second load reads the written file back unchanged.
	again, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	clearPortEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 4000
forget_empty_rooms: true
ai:
  model: file-model
  timeout: 10s
store:
  driver: sqlite
  sqlite_path: /tmp/chat.db
`), 0o600))

	t.Setenv("CHATROOM_AI_MODEL", "env-model")
	t.Setenv("CHATROOM_AUDIT_BROKERS", "k1:9092,k2:9092")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.True(t, cfg.ForgetEmptyRooms)
	assert.Equal(t, "env-model", cfg.AI.Model)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "https://ai.hackclub.com", cfg.AI.BaseURL)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/chat.db", cfg.Store.SQLitePath)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.Brokers)
}

func TestLoadPortFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	t.Setenv("CHATROOM_PORT", "")
	t.Setenv("PORT", "8081")
	cfg, _, err := Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, ":8081", cfg.Addr())

	t.Setenv("CHATROOM_PORT", "9090")
	cfg, _, err = Load(nil, path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearPortEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o600))

	_, _, err := Load(nil, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

func TestUpdateFromKeepsUnsetFields(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Port: 4242, LogLevel: "debug"})

	assert.Equal(t, 4242, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
}
