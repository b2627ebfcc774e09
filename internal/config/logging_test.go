package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel(" DEBUG "))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	assert.Equal(t, slog.LevelError, LogLevelError.SlogLevel())
}

func TestNewLogger(t *testing.T) {
	t.Run("json format at warn", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		var buf bytes.Buffer
		logger := NewLogger(&buf, LoggingConfig{Level: LogLevelWarn, Format: LogFormatJSON}, false)
		logger.Info("hidden")
		logger.Warn("shown", "page", "WikiStart")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"page":"WikiStart"`)
	})

	t.Run("env overrides config", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "debug")
		var buf bytes.Buffer
		NewLogger(&buf, LoggingConfig{Level: LogLevelError}, false).Debug("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "error")
		var buf bytes.Buffer
		NewLogger(&buf, LoggingConfig{}, true).Debug("visible")
		assert.Contains(t, buf.String(), "level=DEBUG")
	})
}
