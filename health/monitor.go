package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-authwatch/breaker"
	"github.com/KOMKZ/go-authwatch/logger"
	"github.com/KOMKZ/go-authwatch/provider"
)

const historyLimit = 100

// ResultHook 每次探测完成后的回调 (同步调用, panic 被吞掉)
type ResultHook func(result CheckResult)

// Monitor 单个认证提供者的健康监控器
//
// 探测经由内置熔断器执行: 连续失败达到阈值后熔断器打开,
// 后续探测立即被拒绝并记为失败, 直到恢复窗口过后半开试探。
type Monitor struct {
	providerName string
	config       Config
	breaker      *breaker.CircuitBreaker
	logger       *logger.CtxZapLogger

	mu      sync.RWMutex
	metrics Metrics
	history []CheckResult
	hook    ResultHook

	runMu  sync.Mutex
	stopCh chan struct{} // nil 表示未在运行
}

// NewMonitor 创建监控器, 配置与默认值合并
func NewMonitor(providerName string, config Config) *Monitor {
	return NewMonitorWithOptions(providerName, config, nil, nil)
}

// NewMonitorWithOptions 创建监控器并注入事件总线与日志器
func NewMonitorWithOptions(providerName string, config Config, eventBus breaker.EventBus, log *logger.CtxZapLogger) *Monitor {
	if log == nil {
		log = logger.GetLogger("authwatch")
	}
	merged := DefaultConfig().Merge(config)
	return &Monitor{
		providerName: providerName,
		config:       merged,
		breaker:      breaker.NewCircuitBreakerWithOptions(providerName, merged.Breaker, eventBus, log),
		logger:       log,
		metrics:      Metrics{Uptime: 100},
	}
}

// ProviderName 监控目标名称
func (m *Monitor) ProviderName() string {
	return m.providerName
}

// Config 返回生效配置
func (m *Monitor) Config() Config {
	return m.config
}

// Breaker 返回内置熔断器
func (m *Monitor) Breaker() *breaker.CircuitBreaker {
	return m.breaker
}

// SetResultHook 设置探测结果回调, 在每次探测完成后同步触发
func (m *Monitor) SetResultHook(hook ResultHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// StartMonitoring 启动定时探测; 已在运行时先停止旧的调度再启动
func (m *Monitor) StartMonitoring(p provider.AuthProvider) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.stopCh != nil {
		close(m.stopCh)
	}
	stopCh := make(chan struct{})
	m.stopCh = stopCh

	go m.run(p, stopCh)

	m.logger.Info("🔍 Health monitoring started",
		zap.String("provider", m.providerName),
		zap.Duration("interval", m.config.CheckInterval))
}

// StopMonitoring 停止定时探测, 重复调用无副作用
func (m *Monitor) StopMonitoring() {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	m.stopCh = nil

	m.logger.Info("⛔ Health monitoring stopped",
		zap.String("provider", m.providerName))
}

// IsRunning 探测调度是否在运行
func (m *Monitor) IsRunning() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	return m.stopCh != nil
}

func (m *Monitor) run(p provider.AuthProvider, stopCh chan struct{}) {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.PerformHealthCheck(context.Background(), p)
		}
	}
}

// PerformHealthCheck 执行一次探测并更新指标, 永远不返回错误
//
// 探测逻辑: 先尝试 ValidateSession, 失败则回退到 GetCapabilities;
// 两者皆不可用时本次探测判定为失败。
func (m *Monitor) PerformHealthCheck(ctx context.Context, p provider.AuthProvider) CheckResult {
	if m.config.MinResponseTime > 0 {
		time.Sleep(m.config.MinResponseTime)
	}

	if m.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	outcome, err := m.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return m.probe(ctx, p)
	})
	elapsed := time.Since(start)

	result := CheckResult{
		ProviderName: m.providerName,
		ResponseTime: elapsed,
		Timestamp:    start,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		m.logger.WarnCtx(ctx, "❌ Health check failed",
			zap.String("provider", m.providerName),
			zap.Duration("response_time", elapsed),
			zap.Error(err))
	} else {
		result.Status = StatusHealthy
		if msg, ok := outcome.(string); ok {
			result.Details = map[string]interface{}{"message": msg}
		}
		m.logger.DebugCtx(ctx, "Health check passed",
			zap.String("provider", m.providerName),
			zap.Duration("response_time", elapsed))
	}

	hook := m.record(result)
	if hook != nil {
		invokeHook(hook, result)
	}
	return result
}

// probe 会话校验优先, 失败时回退到能力查询
func (m *Monitor) probe(ctx context.Context, p provider.AuthProvider) (interface{}, error) {
	if err := p.ValidateSession(ctx); err == nil {
		return "session validation successful", nil
	}

	caps, err := p.GetCapabilities(ctx)
	if err == nil && len(caps) > 0 {
		return "provider responsive", nil
	}

	failed := ErrHealthCheckFailed.WithData("provider", m.providerName)
	if err != nil {
		return nil, failed.Wrap(err)
	}
	return nil, failed
}

// record 更新指标与历史, 返回当前的结果回调
func (m *Monitor) record(result CheckResult) ResultHook {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.TotalChecks++
	m.metrics.LastCheckTime = result.Timestamp
	if result.Status == StatusHealthy {
		m.metrics.SuccessfulChecks++
		m.metrics.ConsecutiveFailures = 0
	} else {
		m.metrics.FailedChecks++
		m.metrics.ConsecutiveFailures++
		m.metrics.LastFailureTime = result.Timestamp
	}
	m.metrics.Uptime = float64(m.metrics.SuccessfulChecks) / float64(m.metrics.TotalChecks) * 100

	// 增量平均, 避免保存所有响应时间
	n := m.metrics.TotalChecks
	prev := m.metrics.AverageResponseTime
	m.metrics.AverageResponseTime = prev + (result.ResponseTime-prev)/time.Duration(n)

	m.history = append(m.history, result)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}

	return m.hook
}

func invokeHook(hook ResultHook, result CheckResult) {
	defer func() {
		_ = recover()
	}()
	hook(result)
}

// GetHealthStatus 返回健康状况快照
//
// 状态推导: 有历史时取最近一次结果的状态; 无历史但有失败计数时为
// degraded (指标被重置后又出现失败); 否则乐观默认为 healthy。
func (m *Monitor) GetHealthStatus() *HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := StatusHealthy
	var lastCheck *CheckResult
	if len(m.history) > 0 {
		last := m.history[len(m.history)-1].clone()
		lastCheck = &last
		status = last.Status
	} else if m.metrics.ConsecutiveFailures > 0 {
		status = StatusDegraded
	}

	return &HealthStatus{
		ProviderName: m.providerName,
		Status:       status,
		Metrics:      m.metrics,
		Breaker:      *m.breaker.GetMetrics(),
		LastCheck:    lastCheck,
	}
}

// GetMetrics 返回指标副本
func (m *Monitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// GetHealthHistory 返回最近的探测记录副本, limit <= 0 表示全部
func (m *Monitor) GetHealthHistory(limit int) []CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]CheckResult, 0, limit)
	for _, result := range m.history[n-limit:] {
		out = append(out, result.clone())
	}
	return out
}

// ResetMetrics 清空指标与历史, 同时重置熔断器
func (m *Monitor) ResetMetrics() {
	m.mu.Lock()
	m.metrics = Metrics{Uptime: 100}
	m.history = nil
	m.mu.Unlock()

	m.breaker.Reset()

	m.logger.Info("Health metrics reset",
		zap.String("provider", m.providerName))
}
