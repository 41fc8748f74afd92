package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    zapcore.Level
	}{
		{"", false, zapcore.InfoLevel},
		{"warn", false, zapcore.WarnLevel},
		{"ERROR", false, zapcore.ErrorLevel},
		{"error", true, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level, tt.verbose)
			require.NoError(t, err)
			defer func() { _ = logger.Sync() }()

			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}
