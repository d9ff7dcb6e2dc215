package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"forecastconsole/internal/config"
)

func TestNewWithoutFileIsNop(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "info"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "console.log")
	logger, err := New(config.LoggingConfig{Level: "warn", File: path, MaxSizeMB: 1}, false)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("resource", "assets"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"resource":"assets"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty", File: filepath.Join(t.TempDir(), "x.log")}, false)
	assert.Error(t, err)
}

func TestVerboseForcesDebug(t *testing.T) {
	level, err := parseLevel("error", true)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, err = parseLevel("", false)
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, zapcore.DebugLevel)
	logger.Debug("request", zap.Int("status", 200))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "debug", entry["level"])
}
