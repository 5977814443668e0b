package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONToBoth(t *testing.T) {
	var stderr bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "abslens.log")

	logger, cleanup, err := setup(&stderr, logFile, slog.LevelInfo, "json")
	require.NoError(t, err)
	logger.Info("hello", "component", "test")
	logger.Debug("dropped")
	cleanup()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["component"])

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, stderr.String(), string(data))
	assert.NotContains(t, string(data), "dropped")
}

func TestSetupTextWithoutFile(t *testing.T) {
	var stderr bytes.Buffer
	logger, cleanup, err := setup(&stderr, "", slog.LevelDebug, "TEXT")
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("details", "n", 3)
	assert.True(t, strings.Contains(stderr.String(), "msg=details"))
	assert.Contains(t, stderr.String(), "n=3")
}

func TestSetupUnknownFormat(t *testing.T) {
	_, _, err := setup(&bytes.Buffer{}, "", slog.LevelInfo, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"Info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	_, err := ParseLevel("trace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "trace")
}
