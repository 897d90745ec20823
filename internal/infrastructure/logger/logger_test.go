package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gameshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fileLogger builds a logger writing to a temp file and returns a reader for
// the lines written so far.
func fileLogger(t *testing.T, cfg config.LogConfig, env string) (*zap.Logger, func() []string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.log")
	cfg.Output = path

	log, err := FromConfig(cfg, env)
	require.NoError(t, err)

	return log, func() []string {
		require.NoError(t, log.Sync())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil
		}
		return strings.Split(text, "\n")
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		env     string
		wantErr bool
	}{
		{name: "empty development", cfg: config.LogConfig{}, env: "development"},
		{name: "empty production", cfg: config.LogConfig{}, env: "production"},
		{name: "console to stdout", cfg: config.LogConfig{Level: "debug", Format: "console", Output: "stdout"}},
		{name: "json to stderr", cfg: config.LogConfig{Level: "warning", Format: "JSON", Output: "stderr"}},
		{name: "unknown format", cfg: config.LogConfig{Format: "xml"}, wantErr: true},
		{name: "unknown level", cfg: config.LogConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := FromConfig(tt.cfg, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestFromConfig_ProductionWritesJSON(t *testing.T) {
	log, lines := fileLogger(t, config.LogConfig{}, "production")

	log.Info("price rolled", zap.String("shop_id", "blocks"))

	written := lines()
	require.Len(t, written, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(written[0]), &entry))
	assert.Equal(t, "price rolled", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "blocks", entry["shop_id"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestFromConfig_FormatOverridesEnvironment(t *testing.T) {
	log, lines := fileLogger(t, config.LogConfig{Format: "console"}, "production")

	log.Info("shop opened")

	written := lines()
	require.Len(t, written, 1)
	assert.False(t, json.Valid([]byte(written[0])))
	assert.Contains(t, written[0], "shop opened")
}

func TestFromConfig_LevelFilters(t *testing.T) {
	log, lines := fileLogger(t, config.LogConfig{Level: "warn", Format: "json"}, "")

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("stock low")
	log.Error("trade failed")

	written := lines()
	require.Len(t, written, 2)
	assert.Contains(t, written[0], "stock low")
	assert.Contains(t, written[1], "trade failed")
	assert.Contains(t, written[1], "stacktrace")
}

func TestFromConfig_UnwritableOutput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing", "dir", "shop.log")
	_, err := FromConfig(config.LogConfig{Output: missing}, "")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{" warn ", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.FatalLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSync(t *testing.T) {
	assert.NoError(t, Sync(zap.NewNop()))

	log, _ := fileLogger(t, config.LogConfig{}, "")
	assert.NoError(t, Sync(log))
}
