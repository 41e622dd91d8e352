package health

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/KOMKZ/go-authwatch/component"
	"github.com/KOMKZ/go-authwatch/logger"
	"github.com/KOMKZ/go-authwatch/provider"
)

const ComponentName = "health"

// Component 健康监控组件
//
// 从配置文件的 health 段加载 ManagerConfig, 持有 Manager 与
// OTel 指标采集器。提供者由应用代码在 Start 之后注册。
type Component struct {
	config  ManagerConfig
	manager *Manager
	otel    *OTelHealthMetrics
	logger  *logger.CtxZapLogger
}

// NewComponent 创建健康监控组件
func NewComponent() *Component {
	return &Component{
		logger: logger.GetLogger("authwatch"),
	}
}

// Name 组件名称
func (c *Component) Name() string {
	return ComponentName
}

// DependsOn 依赖组件
func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
	}
}

// Init 初始化组件
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	c.config = DefaultManagerConfig()
	if loader.IsSet("health") {
		if err := loader.Unmarshal("health", &c.config); err != nil {
			c.logger.WarnCtx(ctx, "Failed to unmarshal health config, using default", zap.Error(err))
		}
	}

	if !c.config.Enabled {
		c.logger.InfoCtx(ctx, "Health monitoring is disabled")
		return nil
	}

	c.otel = NewOTelHealthMetrics(c.config.Metrics)

	manager, err := NewManagerWithOptions(c.config, c.logger, c.otel)
	if err != nil {
		return err
	}
	c.manager = manager

	c.logger.InfoCtx(ctx, "✅ Health monitoring component initialized",
		zap.Duration("default_check_interval", c.config.Default.CheckInterval),
		zap.Int("configured_providers", len(c.config.Providers)))
	return nil
}

// Start 启动组件; 各提供者的监控在注册时启动
func (c *Component) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}
	c.logger.InfoCtx(ctx, "✅ Health monitoring component started")
	return nil
}

// Stop 停止所有监控并关闭事件总线
func (c *Component) Stop(ctx context.Context) error {
	if c.manager == nil {
		return nil
	}
	c.manager.Close()
	c.logger.InfoCtx(ctx, "⛔ Health monitoring component stopped")
	return nil
}

// GetManager 返回健康监控管理器, 组件未启用时为 nil
func (c *Component) GetManager() *Manager {
	return c.manager
}

// RegisterProvider 使用配置文件中该提供者的生效配置注册
func (c *Component) RegisterProvider(p provider.AuthProvider, fallbackProviders ...string) error {
	if c.manager == nil {
		return ErrProviderNotRegistered.WithMsg("health monitoring is disabled")
	}
	return c.manager.RegisterProvider(p, Config{}, fallbackProviders...)
}

// MetricsName implements component.MetricsProvider.
func (c *Component) MetricsName() string {
	return ComponentName
}

// RegisterMetrics implements component.MetricsProvider.
func (c *Component) RegisterMetrics(meter metric.Meter) error {
	if c.otel == nil {
		return nil
	}
	return c.otel.RegisterMetrics(meter)
}

// IsMetricsEnabled implements component.MetricsProvider.
func (c *Component) IsMetricsEnabled() bool {
	return c.otel != nil && c.otel.IsMetricsEnabled()
}
