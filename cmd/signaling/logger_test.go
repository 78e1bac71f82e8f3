package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestBuildZapLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		logger, err := buildZapLogger("json", "debug")

		assert.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("console", func(t *testing.T) {
		logger, err := buildZapLogger("console", "warn")

		assert.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := buildZapLogger("json", "loud")

		assert.Error(t, err)
	})
}
