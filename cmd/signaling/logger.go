package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// buildZapLogger returns a JSON logger with cloud logging keys for "json"
// and a colored development logger for anything else.
func buildZapLogger(encoding string, level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	var config zap.Config

	switch encoding {
	case "json":
		config = zap.NewProductionConfig()
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.LevelKey = "severity"
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.NameKey = "logger"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	default:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = atomicLevel

	return config.Build()
}
