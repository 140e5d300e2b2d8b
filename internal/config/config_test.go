package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultHistorySize, cfg.HistorySize)
	assert.Equal(t, DefaultPollingInterval, cfg.PollingInterval.Std())
	assert.NotEmpty(t, cfg.DeviceID)
	assert.NotEmpty(t, cfg.SocketPath)
	assert.NotEmpty(t, cfg.LockPath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistorySize, cfg.HistorySize)

	// The default file was written for the user to edit.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.HistorySize = 7
	cfg.PollingInterval = Duration(250 * time.Millisecond)
	cfg.SocketPath = "/run/test/clipvd.sock"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.HistorySize)
	assert.Equal(t, 250*time.Millisecond, loaded.PollingInterval.Std())
	assert.Equal(t, "/run/test/clipvd.sock", loaded.SocketPath)
	assert.Equal(t, cfg.DeviceID, loaded.DeviceID)
}

func TestLoadParsesHumaneDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("polling_interval: 2s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.PollingInterval.Std())
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().Save(path))

	t.Setenv("CLIPV_HISTORY_SIZE", "3")
	t.Setenv("CLIPV_POLLING_INTERVAL", "50ms")
	t.Setenv("CLIPV_SOCKET_PATH", "/tmp/override.sock")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.HistorySize)
	assert.Equal(t, 50*time.Millisecond, cfg.PollingInterval.Std())
	assert.Equal(t, "/tmp/override.sock", cfg.SocketPath)
}

func TestLoadRejectsNegativeHistorySize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_size: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestBadDurationIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("polling_interval: soon\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
