package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var adapter watermill.LoggerAdapter = messaging.NewZapLogger(zap.New(core))

	adapter.Info("subscribed", watermill.LogFields{"topic": "link.created"})
	adapter.Debug("debug line", nil)
	adapter.Trace("trace line", nil)
	adapter.Error("publish failed", errors.New("boom"), watermill.LogFields{"topic": "link.deleted"})
	adapter.With(watermill.LogFields{"consumer_group": "audit"}).Info("with fields", nil)

	entries := logs.All()
	require.Len(t, entries, 5)

	assert.Equal(t, "subscribed", entries[0].Message)
	assert.Equal(t, "watermill", entries[0].LoggerName)
	assert.Equal(t, "link.created", entries[0].ContextMap()["topic"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level, "trace maps to debug")

	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])

	assert.Equal(t, "audit", entries[4].ContextMap()["consumer_group"])
}
