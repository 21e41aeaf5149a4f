package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Detection.Timeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CENSUSQC_SERVER_PORT", "9090")
	t.Setenv("CENSUSQC_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("CENSUSQC_SERVER_PORT", "70000")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestLoadRejectsInvalidFormat(t *testing.T) {
	t.Setenv("CENSUSQC_LOGGING_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging format")
}

func TestValidateDefaults(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
}

func TestNewLoggerLevels(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestNewLoggerTextFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"

	var buf bytes.Buffer
	cfg.NewLogger(&buf).Info("hello", slog.String("k", "v"))
	assert.Contains(t, buf.String(), "msg=hello")
}
