package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetupReplacesGlobal(t *testing.T) {
	logger, err := Setup("warn", false)
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	assert.Same(t, logger, zap.L())
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestSetupVerboseForcesDebug(t *testing.T) {
	logger, err := Setup("error", true)
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := Setup("chatty", false)
	assert.Error(t, err)
}
