package logger

import (
	"fmt"
	"os"

	"github.com/GlebRadaev/gamestore/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "15:04:05 02-01-2006"

var logLvlMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

var accessLvlMap = map[zapcore.Level]zerolog.Level{
	zapcore.DebugLevel: zerolog.DebugLevel,
	zapcore.InfoLevel:  zerolog.InfoLevel,
	zapcore.WarnLevel:  zerolog.WarnLevel,
	zapcore.ErrorLevel: zerolog.ErrorLevel,
}

// InitLogger sets up the global zap logger for application events and the
// global zerolog logger used for HTTP access lines.
func InitLogger(conf *config.Config) error {
	lvl, ok := logLvlMap[conf.LogLvl]
	if !ok {
		return fmt.Errorf("unsupported log lvl: %s", conf.LogLvl)
	}

	encodeConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Sampling:         nil,
		Encoding:         "console",
		EncoderConfig:    encodeConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		return fmt.Errorf("unable to create zap logger, error: %w", err)
	}

	zap.ReplaceGlobals(logger)

	zerolog.SetGlobalLevel(accessLvlMap[lvl])
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeLayout}).
		With().Timestamp().Str("logger", "http").Logger()

	return nil
}
