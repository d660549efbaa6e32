package logger

import (
	"testing"

	"github.com/GlebRadaev/gamestore/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name              string
		config            *config.Config
		expectedError     bool
		expectedLogLvl    zapcore.Level
		expectedAccessLvl zerolog.Level
	}{
		{
			name:              "Valid log level info",
			config:            &config.Config{LogLvl: "info"},
			expectedLogLvl:    zapcore.InfoLevel,
			expectedAccessLvl: zerolog.InfoLevel,
		},
		{
			name:              "Valid log level warn",
			config:            &config.Config{LogLvl: "warn"},
			expectedLogLvl:    zapcore.WarnLevel,
			expectedAccessLvl: zerolog.WarnLevel,
		},
		{
			name:              "Valid log level error",
			config:            &config.Config{LogLvl: "error"},
			expectedLogLvl:    zapcore.ErrorLevel,
			expectedAccessLvl: zerolog.ErrorLevel,
		},
		{
			name:              "Valid log level debug",
			config:            &config.Config{LogLvl: "debug"},
			expectedLogLvl:    zapcore.DebugLevel,
			expectedAccessLvl: zerolog.DebugLevel,
		},
		{
			name:          "Invalid log level",
			config:        &config.Config{LogLvl: "invalid"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.config)

			if tt.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, zap.L().Core().Enabled(tt.expectedLogLvl))
			assert.False(t, zap.L().Core().Enabled(tt.expectedLogLvl-1))
			assert.Equal(t, tt.expectedAccessLvl, zerolog.GlobalLevel())
		})
	}
}
