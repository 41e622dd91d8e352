package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewManager_AppliesDefaults(t *testing.T) {
	m := NewManager(ManagerConfig{})

	assert.Equal(t, "logs", m.baseConfig.BaseLogDir)
	assert.Equal(t, "info", m.baseConfig.Level)
	assert.Equal(t, "json", m.baseConfig.Encoding)
	assert.Equal(t, "trace_id", m.baseConfig.TraceIDKey)
}

func TestManager_GetLogger_Cached(t *testing.T) {
	m := NewManager(ManagerConfig{EnableConsole: false})

	l1 := m.GetLogger("health")
	l2 := m.GetLogger("health")
	l3 := m.GetLogger("breaker")

	assert.Same(t, l1, l2)
	assert.NotSame(t, l1, l3)
}

func TestManagerConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := DefaultManagerConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := DefaultManagerConfig()
		cfg.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid encoding", func(t *testing.T) {
		cfg := DefaultManagerConfig()
		cfg.Encoding = "xml"
		assert.Error(t, cfg.Validate())
	})
}

func TestCtxZapLogger_With(t *testing.T) {
	m := NewManager(ManagerConfig{EnableConsole: false})
	base := m.GetLogger("health")

	derived := base.With(zap.String("provider", "jwt"))
	assert.NotSame(t, base, derived)
	assert.Equal(t, base.module, derived.module)
}

func TestTestCtxLogger(t *testing.T) {
	tl := NewTestCtxLogger()
	ctx := context.Background()

	tl.InfoCtx(ctx, "monitoring started", zap.String("provider", "jwt"))
	tl.WarnCtx(ctx, "provider failed", zap.Int("attempt", 2))

	assert.True(t, tl.HasLog("INFO", "monitoring started"))
	assert.True(t, tl.HasLog("WARN", "provider failed"))
	assert.False(t, tl.HasLog("ERROR", "anything"))
	assert.Equal(t, 2, tl.Count(""))
	assert.Equal(t, 1, tl.Count("WARN"))

	logs := tl.GetLogs()
	assert.Equal(t, "jwt", logs[0].Fields["provider"])
	assert.EqualValues(t, 2, logs[1].Fields["attempt"])

	tl.Reset()
	assert.Equal(t, 0, tl.Count(""))
}
