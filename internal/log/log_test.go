package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	_, err := NewLogger("loud")
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	cfg := Config(zapcore.InfoLevel)
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, "time", cfg.EncoderConfig.TimeKey)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
}
