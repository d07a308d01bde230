package logger

import (
	"testing"

	"github.com/smallbiznis/nwcd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(config.Config{AppName: "nwcd"})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	log, err := New(config.Config{Logger: config.LoggerConfig{Level: "debug"}})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.Config{Logger: config.LoggerConfig{Level: "loud"}})
	assert.Error(t, err)
}
