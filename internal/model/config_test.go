package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(DataDir(), "todo.db"), cfg.Storage.DBPath)
	assert.Equal(t, filepath.Join(DataDir(), "prefs.yaml"), cfg.Storage.PrefsPath)
	assert.Equal(t, ListAll, cfg.Display.DefaultList)
	assert.Equal(t, 60, cfg.Display.RolloverCheckSec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Drafts", cfg.Share.Mailbox)
	assert.True(t, cfg.Share.IMAPTLS)
}

func TestSaveThenLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Storage.DBPath = "/tmp/other.db"
	cfg.Display.DefaultList = "Work"
	cfg.Display.RolloverCheckSec = 5
	cfg.Share.IMAPHost = "imap.example.com"
	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", got.Storage.DBPath)
	assert.Equal(t, "Work", got.Display.DefaultList)
	assert.Equal(t, 5, got.Display.RolloverCheckSec)
	assert.Equal(t, "imap.example.com", got.Share.IMAPHost)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	t.Setenv("TODO_LOG_LEVEL", "error")
	t.Setenv("TODO_STORAGE_DB_PATH", "/data/todo.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/data/todo.db", cfg.Storage.DBPath)
}

func TestLoadConfigRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unterminated\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
