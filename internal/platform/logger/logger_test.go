package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/platform/logger"
)

func TestNew(t *testing.T) {
	for _, env := range []string{logger.EnvLocal, logger.EnvDev, logger.EnvProd} {
		l, err := logger.New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, l)
	}

	prod, err := logger.New(logger.EnvProd)
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))

	dev, err := logger.New(logger.EnvDev)
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}
