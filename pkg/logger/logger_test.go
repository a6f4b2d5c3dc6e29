package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return Wrap(zap.New(core)), logs
}

func TestErrorAttachesErrorField(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.Error("Replay failed", errors.New("db down"), zap.String("op", "update"))
	log.Error("No cause", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "db down", ctx["error"])
	assert.Equal(t, "update", ctx["op"])
	assert.NotContains(t, entries[1].ContextMap(), "error")
}

func TestWithAndNamedCarryContext(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	log.Named("store").With(zap.String("user_id", "u-1")).Info("Session ready")
	log.Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store", entries[0].LoggerName)
	assert.Equal(t, "u-1", entries[0].ContextMap()["user_id"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Env: "development", Level: "chatty"})
	assert.Error(t, err)

	log, err := New(Options{Env: "production", Level: "warn", Service: "pathwise-api"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}
