package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-authwatch/errcode"
	"github.com/KOMKZ/go-authwatch/provider"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(DefaultManagerConfig())
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// registerManual 注册提供者并立即执行一次探测, 调度周期拉长到不干扰测试
func registerManual(t *testing.T, m *Manager, p provider.AuthProvider, fallbacks ...string) *Monitor {
	t.Helper()
	require.NoError(t, m.RegisterProvider(p, manualConfig(), fallbacks...))
	monitor, ok := m.GetMonitor(p.Name())
	require.True(t, ok)
	monitor.PerformHealthCheck(context.Background(), p)
	return monitor
}

func TestManager_RegisterProvider(t *testing.T) {
	t.Run("register starts monitoring", func(t *testing.T) {
		m := newTestManager(t)
		p := newMockProvider("jwt")

		require.NoError(t, m.RegisterProvider(p, manualConfig()))

		monitor, ok := m.GetMonitor("jwt")
		require.True(t, ok)
		assert.True(t, monitor.IsRunning())

		got, ok := m.GetProvider("jwt")
		require.True(t, ok)
		assert.Equal(t, p, got)
	})

	t.Run("re-registration stops the previous monitor", func(t *testing.T) {
		m := newTestManager(t)
		p1 := newMockProvider("jwt")
		p2 := newMockProvider("jwt")

		require.NoError(t, m.RegisterProvider(p1, manualConfig()))
		old, _ := m.GetMonitor("jwt")

		require.NoError(t, m.RegisterProvider(p2, manualConfig()))

		assert.False(t, old.IsRunning(), "previous scheduler must be stopped")
		replaced, _ := m.GetMonitor("jwt")
		assert.NotSame(t, old, replaced)
		assert.True(t, replaced.IsRunning())
		assert.Len(t, m.ProviderNames(), 1)
	})

	t.Run("empty provider name is rejected", func(t *testing.T) {
		m := newTestManager(t)
		err := m.RegisterProvider(newMockProvider(""), manualConfig())
		assert.Error(t, err)
	})

	t.Run("invalid config yields field-level validation error", func(t *testing.T) {
		m := newTestManager(t)
		cfg := manualConfig()
		cfg.Retries = -1

		err := m.RegisterProvider(newMockProvider("jwt"), cfg)

		require.Error(t, err)
		le := errcode.FromError(err)
		require.NotNil(t, le, "validation failures surface as LayeredError")
		assert.Equal(t, 11010, le.Code())
		fields, ok := le.Data()["fields"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, fields, "Retries")

		_, registered := m.GetMonitor("jwt")
		assert.False(t, registered)
	})

	t.Run("fallbacks default to the configured chain", func(t *testing.T) {
		m := newTestManager(t)
		cfg := manualConfig()
		cfg.FallbackProviders = []string{"session", "ldap"}

		require.NoError(t, m.RegisterProvider(newMockProvider("jwt"), cfg))
		assert.Equal(t, []string{"jwt", "session", "ldap"}, m.fallbackChain("jwt"))
	})
}

func TestManager_UnregisterProvider(t *testing.T) {
	t.Run("stops monitoring and clears registry", func(t *testing.T) {
		m := newTestManager(t)
		p := newMockProvider("jwt")
		require.NoError(t, m.RegisterProvider(p, manualConfig()))
		monitor, _ := m.GetMonitor("jwt")

		m.UnregisterProvider("jwt")

		assert.False(t, monitor.IsRunning())
		_, ok := m.GetProvider("jwt")
		assert.False(t, ok)
		assert.Nil(t, m.GetProviderHealthStatus("jwt"))
	})

	t.Run("unknown name is a no-op", func(t *testing.T) {
		m := newTestManager(t)
		require.NoError(t, m.RegisterProvider(newMockProvider("jwt"), manualConfig()))

		m.UnregisterProvider("ghost")
		m.UnregisterProvider("ghost")

		// 已注册的不受影响
		assert.Len(t, m.ProviderNames(), 1)
		monitor, _ := m.GetMonitor("jwt")
		assert.True(t, monitor.IsRunning())
	})
}

func TestManager_ExecuteWithFallback(t *testing.T) {
	ctx := context.Background()

	newOp := func() (*[]string, ProviderOperation) {
		var mu sync.Mutex
		visited := []string{}
		return &visited, func(_ context.Context, p provider.AuthProvider) (interface{}, error) {
			mu.Lock()
			visited = append(visited, p.Name())
			mu.Unlock()
			return "ok:" + p.Name(), nil
		}
	}

	t.Run("healthy primary short-circuits", func(t *testing.T) {
		m := newTestManager(t)
		registerManual(t, m, newMockProvider("a"), "b")
		registerManual(t, m, newMockProvider("b"))

		visited, op := newOp()
		result, err := m.ExecuteWithFallback(ctx, "a", op)

		require.NoError(t, err)
		assert.Equal(t, "ok:a", result)
		assert.Equal(t, []string{"a"}, *visited)
	})

	t.Run("unhealthy primary is skipped, failing fallback tried, last succeeds", func(t *testing.T) {
		m := newTestManager(t)

		a := newMockProvider("a")
		a.setUnhealthy(errors.New("a down"))
		registerManual(t, m, a, "b", "c")
		registerManual(t, m, newMockProvider("b"))
		registerManual(t, m, newMockProvider("c"))

		var mu sync.Mutex
		visited := []string{}
		op := func(_ context.Context, p provider.AuthProvider) (interface{}, error) {
			mu.Lock()
			visited = append(visited, p.Name())
			mu.Unlock()
			if p.Name() == "b" {
				return nil, errors.New("b operation failed")
			}
			return "ok:" + p.Name(), nil
		}

		result, err := m.ExecuteWithFallback(ctx, "a", op)

		require.NoError(t, err)
		assert.Equal(t, "ok:c", result)
		assert.Equal(t, []string{"b", "c"}, visited, "a skipped as unhealthy, b failed, c served")
	})

	t.Run("unknown fallback names are skipped", func(t *testing.T) {
		m := newTestManager(t)
		registerManual(t, m, newMockProvider("a"), "ghost", "b")
		registerManual(t, m, newMockProvider("b"))

		a, _ := m.GetProvider("a")
		am, _ := m.GetMonitor("a")
		amp := a.(*mockProvider)
		amp.setUnhealthy(errors.New("down"))
		am.PerformHealthCheck(ctx, a)

		visited, op := newOp()
		result, err := m.ExecuteWithFallback(ctx, "a", op)

		require.NoError(t, err)
		assert.Equal(t, "ok:b", result)
		assert.Equal(t, []string{"b"}, *visited)
	})

	t.Run("degraded providers still get the benefit of the doubt", func(t *testing.T) {
		m := newTestManager(t)
		p := newMockProvider("a")
		p.setUnhealthy(errors.New("flaky"))
		monitor := registerManual(t, m, p)

		monitor.mu.Lock()
		monitor.history = nil
		monitor.mu.Unlock()
		require.Equal(t, StatusDegraded, monitor.GetHealthStatus().Status)

		visited, op := newOp()
		_, err := m.ExecuteWithFallback(ctx, "a", op)

		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, *visited)
	})

	t.Run("operation panic falls through to the next candidate", func(t *testing.T) {
		m := newTestManager(t)
		registerManual(t, m, newMockProvider("a"), "b")
		registerManual(t, m, newMockProvider("b"))

		result, err := m.ExecuteWithFallback(ctx, "a", func(_ context.Context, p provider.AuthProvider) (interface{}, error) {
			if p.Name() == "a" {
				panic("provider handle corrupted")
			}
			return "ok:" + p.Name(), nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok:b", result)
	})

	t.Run("all candidates failing yields structured error", func(t *testing.T) {
		m := newTestManager(t)
		registerManual(t, m, newMockProvider("a"), "b")
		registerManual(t, m, newMockProvider("b"))

		opErr := errors.New("backend rejected")
		_, err := m.ExecuteWithFallback(ctx, "a", func(context.Context, provider.AuthProvider) (interface{}, error) {
			return nil, opErr
		})

		require.Error(t, err)
		assert.Equal(t, ErrAllProvidersFailed.Code(), errcode.GetCode(err))
		assert.ErrorIs(t, err, opErr)
	})

	t.Run("no registered candidate at all", func(t *testing.T) {
		m := newTestManager(t)
		_, err := m.ExecuteWithFallback(ctx, "ghost", func(context.Context, provider.AuthProvider) (interface{}, error) {
			return "never", nil
		})
		require.Error(t, err)
		assert.Equal(t, ErrAllProvidersFailed.Code(), errcode.GetCode(err))
	})
}

func TestManager_Callbacks(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	p := newMockProvider("jwt")
	require.NoError(t, m.RegisterProvider(p, manualConfig()))
	monitor, _ := m.GetMonitor("jwt")

	var mu sync.Mutex
	var got []CheckResult
	id := m.AddHealthCheckCallback(func(result CheckResult) {
		mu.Lock()
		got = append(got, result)
		mu.Unlock()
	})
	panicID := m.AddHealthCheckCallback(func(CheckResult) {
		panic("callback bug")
	})

	monitor.PerformHealthCheck(ctx, p)

	mu.Lock()
	require.Len(t, got, 1)
	assert.Equal(t, "jwt", got[0].ProviderName)
	assert.Equal(t, StatusHealthy, got[0].Status)
	mu.Unlock()

	m.RemoveHealthCheckCallback(id)
	m.RemoveHealthCheckCallback(panicID)
	monitor.PerformHealthCheck(ctx, p)

	mu.Lock()
	assert.Len(t, got, 1, "removed callback must not fire")
	mu.Unlock()
}

func TestManager_HealthReport(t *testing.T) {
	m := newTestManager(t)

	// 2 个健康
	registerManual(t, m, newMockProvider("jwt"))
	registerManual(t, m, newMockProvider("oauth"))

	// 1 个不健康
	saml := newMockProvider("saml")
	saml.setUnhealthy(errors.New("idp down"))
	registerManual(t, m, saml)

	// 1 个降级: 有失败计数但无历史
	ldap := newMockProvider("ldap")
	ldap.setUnhealthy(errors.New("flaky"))
	ldapMonitor := registerManual(t, m, ldap)
	ldapMonitor.mu.Lock()
	ldapMonitor.history = nil
	ldapMonitor.mu.Unlock()

	report := m.GetHealthReport()

	assert.False(t, report.Timestamp.IsZero())
	assert.Len(t, report.Providers, 4)
	assert.Equal(t, ReportSummary{Total: 4, Healthy: 2, Degraded: 1, Unhealthy: 1}, report.Summary)
	assert.Equal(t, StatusHealthy, report.Providers["jwt"].Status)
	assert.Equal(t, StatusUnhealthy, report.Providers["saml"].Status)
	assert.Equal(t, StatusDegraded, report.Providers["ldap"].Status)
}

func TestManager_StatusQueries(t *testing.T) {
	m := newTestManager(t)
	registerManual(t, m, newMockProvider("jwt"))

	t.Run("single provider", func(t *testing.T) {
		status := m.GetProviderHealthStatus("jwt")
		require.NotNil(t, status)
		assert.Equal(t, "jwt", status.ProviderName)
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, int64(1), status.Metrics.TotalChecks)
	})

	t.Run("unknown provider returns nil", func(t *testing.T) {
		assert.Nil(t, m.GetProviderHealthStatus("ghost"))
	})

	t.Run("all providers", func(t *testing.T) {
		registerManual(t, m, newMockProvider("oauth"))
		statuses := m.GetAllHealthStatus()
		assert.Len(t, statuses, 2)
		assert.Contains(t, statuses, "jwt")
		assert.Contains(t, statuses, "oauth")
	})
}

func TestManager_StopAllMonitoring(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.RegisterProvider(newMockProvider("jwt"), fastConfig()))
	require.NoError(t, m.RegisterProvider(newMockProvider("oauth"), fastConfig()))

	m.StopAllMonitoring()

	for _, name := range m.ProviderNames() {
		monitor, _ := m.GetMonitor(name)
		assert.False(t, monitor.IsRunning())
	}

	// 注册表不受影响, 重复停止无副作用
	assert.Len(t, m.ProviderNames(), 2)
	m.StopAllMonitoring()
}

func TestManager_PeriodicChecksFeedReport(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.RegisterProvider(newMockProvider("jwt"), fastConfig()))

	assert.Eventually(t, func() bool {
		status := m.GetProviderHealthStatus("jwt")
		return status != nil && status.Metrics.TotalChecks >= 2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, StatusHealthy, m.GetProviderHealthStatus("jwt").Status)
}

func TestNewManager_InvalidConfig(t *testing.T) {
	t.Run("negative retries", func(t *testing.T) {
		cfg := DefaultManagerConfig()
		cfg.Default.Retries = -1

		_, err := NewManager(cfg)
		require.Error(t, err)
		assert.Equal(t, 11010, errcode.GetCode(err))
	})

	t.Run("negative event bus buffer", func(t *testing.T) {
		cfg := DefaultManagerConfig()
		cfg.EventBusBuffer = -1

		_, err := NewManager(cfg)
		assert.Error(t, err)
	})
}
