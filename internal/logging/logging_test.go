package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoapi/internal/config"
)

func TestNewWritesRotatedFile(t *testing.T) {
	cfg := config.Default()
	cfg.Debug = true
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "videoapi.log")

	logger, closer, err := New(cfg)
	require.NoError(t, err)

	logger.Debug("resolved")
	logger.Info("server listening")
	_ = logger.Sync()
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"resolved"`)
	assert.Contains(t, string(data), `"msg":"server listening"`)
}

func TestNewInfoLevelDropsDebug(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "videoapi.log")

	logger, closer, err := New(cfg)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Warn("shown")
	_ = logger.Sync()
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.Log.File)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewWithoutFile(t *testing.T) {
	logger, closer, err := New(config.Default())
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
