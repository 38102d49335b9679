package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	original := Logger
	t.Cleanup(func() { Logger = original })

	require.NoError(t, Initialize(false, false))
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Initialize(true, false))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Initialize(false, true))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestDefaultIsNop(t *testing.T) {
	assert.NotNil(t, Logger)
	assert.NotPanics(t, func() { Logger.Infow("ignored", "key", "value") })
}
