package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-authwatch/breaker"
	"github.com/KOMKZ/go-authwatch/logger"
	"github.com/KOMKZ/go-authwatch/provider"
	"github.com/KOMKZ/go-authwatch/validator"
)

// CheckCallback 探测结果回调
type CheckCallback func(result CheckResult)

// CallbackID 回调订阅标识
type CallbackID string

// ProviderOperation 在指定提供者上执行的业务操作
type ProviderOperation func(ctx context.Context, p provider.AuthProvider) (interface{}, error)

// Manager 认证提供者健康监控管理器
//
// 维护提供者注册表与每个提供者的 Monitor, 提供故障转移执行
// (ExecuteWithFallback) 与整体健康报告 (GetHealthReport)。
type Manager struct {
	config   ManagerConfig
	eventBus breaker.EventBus
	otel     *OTelHealthMetrics
	logger   *logger.CtxZapLogger

	mu        sync.RWMutex
	providers map[string]provider.AuthProvider
	monitors  map[string]*Monitor
	fallbacks map[string][]string
	callbacks map[CallbackID]CheckCallback
}

// NewManager 创建管理器
func NewManager(config ManagerConfig) (*Manager, error) {
	return NewManagerWithOptions(config, nil, nil)
}

// NewManagerWithOptions 创建管理器并注入日志器与指标采集器
func NewManagerWithOptions(config ManagerConfig, log *logger.CtxZapLogger, otel *OTelHealthMetrics) (*Manager, error) {
	merged := DefaultManagerConfig()
	merged.Enabled = config.Enabled
	if config.EventBusBuffer != 0 {
		merged.EventBusBuffer = config.EventBusBuffer
	}
	merged.Default = merged.Default.Merge(config.Default)
	merged.Providers = config.Providers
	merged.Metrics = config.Metrics

	// ozzo 校验错误统一转成带字段明细的 LayeredError
	if err := validator.ValidateConfig(merged); err != nil {
		return nil, fmt.Errorf("invalid health config: %w", err)
	}
	if log == nil {
		log = logger.GetLogger("authwatch")
	}

	return &Manager{
		config:    merged,
		eventBus:  breaker.NewEventBus(merged.EventBusBuffer),
		otel:      otel,
		logger:    log,
		providers: make(map[string]provider.AuthProvider),
		monitors:  make(map[string]*Monitor),
		fallbacks: make(map[string][]string),
		callbacks: make(map[CallbackID]CheckCallback),
	}, nil
}

// EventBus 返回熔断事件总线, 供调用方订阅状态变更
func (m *Manager) EventBus() breaker.EventBus {
	return m.eventBus
}

// RegisterProvider 注册提供者并启动监控
//
// 同名重复注册时, 旧的监控器会先被停止再替换, 不会遗留探测 goroutine。
// config 为零值时使用配置文件中该提供者的生效配置。
func (m *Manager) RegisterProvider(p provider.AuthProvider, config Config, fallbackProviders ...string) error {
	name := p.Name()
	if name == "" {
		return ErrProviderNotRegistered.WithMsg("provider name must not be empty")
	}

	effective := m.config.ProviderConfig(name).Merge(config)
	if err := validator.ValidateConfig(effective); err != nil {
		return fmt.Errorf("invalid config for provider %s: %w", name, err)
	}
	if len(fallbackProviders) == 0 {
		fallbackProviders = effective.FallbackProviders
	}

	monitor := NewMonitorWithOptions(name, effective, m.eventBus, m.logger)
	monitor.SetResultHook(m.dispatchResult)

	m.mu.Lock()
	if old, ok := m.monitors[name]; ok {
		old.StopMonitoring()
		m.logger.Warn("Provider re-registered, previous monitor stopped",
			zap.String("provider", name))
	}
	m.providers[name] = p
	m.monitors[name] = monitor
	m.fallbacks[name] = append([]string(nil), fallbackProviders...)
	m.mu.Unlock()

	if m.otel != nil {
		m.otel.RegisterStatusCallback(name, func() int64 {
			return statusCode(monitor.GetHealthStatus().Status)
		})
	}

	monitor.StartMonitoring(p)

	m.logger.Info("✅ Provider registered",
		zap.String("provider", name),
		zap.Strings("fallbacks", fallbackProviders),
		zap.Duration("check_interval", effective.CheckInterval))
	return nil
}

// UnregisterProvider 注销提供者并停止其监控, 未注册的名称为无副作用的空操作
func (m *Manager) UnregisterProvider(name string) {
	m.mu.Lock()
	monitor, ok := m.monitors[name]
	if ok {
		delete(m.providers, name)
		delete(m.monitors, name)
		delete(m.fallbacks, name)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	monitor.StopMonitoring()
	if m.otel != nil {
		m.otel.UnregisterStatusCallback(name)
	}

	m.logger.Info("Provider unregistered", zap.String("provider", name))
}

// GetProvider 按名称返回提供者
func (m *Manager) GetProvider(name string) (provider.AuthProvider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[name]
	return p, ok
}

// GetMonitor 按名称返回监控器
func (m *Manager) GetMonitor(name string) (*Monitor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mon, ok := m.monitors[name]
	return mon, ok
}

// ProviderNames 返回所有已注册的提供者名称
func (m *Manager) ProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}

// ExecuteWithFallback 在主提供者及其故障转移链上依次执行操作
//
// 规则:
//   - 未注册的候选直接跳过
//   - 明确 unhealthy 的候选跳过; healthy 与 degraded 都会被尝试
//   - 操作返回错误或 panic 时告警并尝试下一个候选
//   - 第一个成功的结果立即返回; 全部失败返回 ALL_PROVIDERS_FAILED
func (m *Manager) ExecuteWithFallback(ctx context.Context, primary string, op ProviderOperation) (interface{}, error) {
	chain := m.fallbackChain(primary)

	var lastErr error
	for _, name := range chain {
		m.mu.RLock()
		p, ok := m.providers[name]
		monitor := m.monitors[name]
		m.mu.RUnlock()
		if !ok {
			continue
		}

		if monitor != nil && monitor.GetHealthStatus().Status == StatusUnhealthy {
			m.logger.DebugCtx(ctx, "Skipping unhealthy provider",
				zap.String("provider", name))
			continue
		}

		result, err := invokeOperation(ctx, p, op)
		if err == nil {
			if m.otel != nil {
				m.otel.RecordFallback(ctx, primary, name, true)
			}
			if name != primary {
				m.logger.InfoCtx(ctx, "🎯 Fallback provider succeeded",
					zap.String("primary", primary),
					zap.String("provider", name))
			}
			return result, nil
		}

		lastErr = err
		m.logger.WarnCtx(ctx, "Provider operation failed, trying next",
			zap.String("provider", name),
			zap.Error(err))
	}

	if m.otel != nil {
		m.otel.RecordFallback(ctx, primary, "", false)
	}
	failed := ErrAllProvidersFailed.WithData("provider", primary)
	if lastErr != nil {
		return nil, failed.Wrap(lastErr)
	}
	return nil, failed
}

// fallbackChain 主提供者在前, 去重后的候选序列
func (m *Manager) fallbackChain(primary string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := make([]string, 0, 1+len(m.fallbacks[primary]))
	seen := make(map[string]bool)
	for _, name := range append([]string{primary}, m.fallbacks[primary]...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		chain = append(chain, name)
	}
	return chain
}

// invokeOperation 执行操作并把 panic 转成错误
func invokeOperation(ctx context.Context, p provider.AuthProvider, op ProviderOperation) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = breaker.ErrOperationFailed.Wrapf(fmt.Errorf("%v", r),
				"provider %s panicked", p.Name())
		}
	}()
	return op(ctx, p)
}

// GetProviderHealthStatus 返回指定提供者的健康快照, 未注册时返回 nil
func (m *Manager) GetProviderHealthStatus(name string) *HealthStatus {
	m.mu.RLock()
	monitor, ok := m.monitors[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return monitor.GetHealthStatus()
}

// GetAllHealthStatus 返回所有提供者的健康快照
func (m *Manager) GetAllHealthStatus() map[string]*HealthStatus {
	m.mu.RLock()
	monitors := make(map[string]*Monitor, len(m.monitors))
	for name, monitor := range m.monitors {
		monitors[name] = monitor
	}
	m.mu.RUnlock()

	statuses := make(map[string]*HealthStatus, len(monitors))
	for name, monitor := range monitors {
		statuses[name] = monitor.GetHealthStatus()
	}
	return statuses
}

// GetHealthReport 生成整体健康报告
func (m *Manager) GetHealthReport() *Report {
	statuses := m.GetAllHealthStatus()

	summary := ReportSummary{Total: len(statuses)}
	for _, status := range statuses {
		switch status.Status {
		case StatusHealthy:
			summary.Healthy++
		case StatusDegraded:
			summary.Degraded++
		case StatusUnhealthy:
			summary.Unhealthy++
		}
	}

	return &Report{
		Timestamp: time.Now(),
		Providers: statuses,
		Summary:   summary,
	}
}

// AddHealthCheckCallback 注册探测结果回调, 返回用于注销的标识
func (m *Manager) AddHealthCheckCallback(cb CheckCallback) CallbackID {
	id := CallbackID(uuid.NewString())
	m.mu.Lock()
	m.callbacks[id] = cb
	m.mu.Unlock()
	return id
}

// RemoveHealthCheckCallback 注销回调, 不存在时无副作用
func (m *Manager) RemoveHealthCheckCallback(id CallbackID) {
	m.mu.Lock()
	delete(m.callbacks, id)
	m.mu.Unlock()
}

// dispatchResult 把探测结果分发给回调与指标采集器
func (m *Manager) dispatchResult(result CheckResult) {
	if m.otel != nil {
		m.otel.RecordCheck(context.Background(), result)
	}

	m.mu.RLock()
	callbacks := make([]CheckCallback, 0, len(m.callbacks))
	for _, cb := range m.callbacks {
		callbacks = append(callbacks, cb)
	}
	m.mu.RUnlock()

	for _, cb := range callbacks {
		m.safeInvoke(cb, result)
	}
}

// safeInvoke 回调 panic 不影响探测流程
func (m *Manager) safeInvoke(cb CheckCallback, result CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Health check callback panicked",
				zap.String("provider", result.ProviderName),
				zap.Any("panic", r))
		}
	}()
	cb(result)
}

// StopAllMonitoring 停止所有提供者的监控, 注册表保持不变
func (m *Manager) StopAllMonitoring() {
	m.mu.RLock()
	monitors := make([]*Monitor, 0, len(m.monitors))
	for _, monitor := range m.monitors {
		monitors = append(monitors, monitor)
	}
	m.mu.RUnlock()

	for _, monitor := range monitors {
		monitor.StopMonitoring()
	}

	m.logger.Info("⛔ All health monitoring stopped",
		zap.Int("providers", len(monitors)))
}

// Close 停止监控并关闭事件总线
func (m *Manager) Close() {
	m.StopAllMonitoring()
	if m.eventBus != nil {
		m.eventBus.Close()
	}
}

// statusCode 状态到数值的映射 (0=healthy, 1=degraded, 2=unhealthy)
func statusCode(s Status) int64 {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}
