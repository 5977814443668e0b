package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "logs/abslens.log", cfg.Log.File)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Diagram.MaxMethods)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, 300*time.Millisecond, cfg.Server.Debounce)
	assert.True(t, cfg.Analyze.Download)
	assert.False(t, cfg.Analyze.IncludeStdlib)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: text
analyze:
  filter: example.com/abstract
  include_unexported: true
server:
  port: 9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "logs/abslens.log", cfg.Log.File)
	assert.Equal(t, "example.com/abstract", cfg.Analyze.Filter)
	assert.True(t, cfg.Analyze.IncludeUnexported)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadDefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("diagram:\n  max_methods: 0\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Diagram.MaxMethods)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	t.Setenv("ABSLENS_LOG_LEVEL", "warn")
	t.Setenv("ABSLENS_ANALYZE_INCLUDE_STDLIB", "true")
	t.Setenv("ABSLENS_SERVER_PORT", "3000")
	t.Setenv("ABSLENS_SERVER_WATCH", "false")
	t.Setenv("ABSLENS_SERVER_DEBOUNCE", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Analyze.IncludeStdlib)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.False(t, cfg.Server.Watch)
	assert.Equal(t, time.Second, cfg.Server.Debounce)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log.level", envKey("ABSLENS_LOG_LEVEL"))
	assert.Equal(t, "analyze.include_unexported", envKey("ABSLENS_ANALYZE_INCLUDE_UNEXPORTED"))
}
