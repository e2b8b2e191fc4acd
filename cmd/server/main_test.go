package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatroomai/internal/config"
)

func TestLoadConfigAppliesFlags(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CHATROOM_PORT", "")

	cfg, path, err := loadConfig(&rootFlags{
		configPath:  filepath.Join(t.TempDir(), "config.yaml"),
		logLevel:    "error",
		port:        4100,
		storeDriver: config.StoreSQLite,
	})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 4100, cfg.Port)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, config.StoreSQLite, cfg.Store.Driver)
}

func TestLoadConfigRejectsBadDriverFlag(t *testing.T) {
	_, _, err := loadConfig(&rootFlags{
		configPath:  filepath.Join(t.TempDir(), "config.yaml"),
		logLevel:    "error",
		storeDriver: "mongo",
	})
	assert.Error(t, err)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NotNil(t, cmd.Flags().Lookup("port"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))

	sub, _, err := cmd.Find([]string{"audit-tail"})
	require.NoError(t, err)
	assert.Equal(t, "audit-tail", sub.Name())
}
