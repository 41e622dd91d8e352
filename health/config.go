package health

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/KOMKZ/go-authwatch/breaker"
)

// Config 单个提供者的监控配置
type Config struct {
	// CheckInterval 定时探测周期
	CheckInterval time.Duration `mapstructure:"check_interval"`
	// Timeout 期望的探测超时 (附加到 context, 提供者自行遵守)
	Timeout time.Duration `mapstructure:"timeout"`
	// Retries 记录在快照中的重试配置, 探测本身不重试
	Retries int `mapstructure:"retries"`
	// MinResponseTime 探测前的固定延迟, 用于测试中构造确定的时序
	MinResponseTime time.Duration `mapstructure:"min_response_time"`
	// FallbackProviders 故障转移候选, 按优先级排列
	FallbackProviders []string `mapstructure:"fallback_providers"`
	// Breaker 熔断器配置
	Breaker breaker.Config `mapstructure:"breaker"`
}

// DefaultConfig 默认监控配置
func DefaultConfig() Config {
	return Config{
		CheckInterval: 30 * time.Second,
		Timeout:       5 * time.Second,
		Retries:       3,
		Breaker:       breaker.DefaultConfig(),
	}
}

// Merge 非零值覆盖, 返回合并后的副本
// 非法值（如负数）不在这里过滤, 留给 Validate 统一报错
func (c Config) Merge(override Config) Config {
	merged := c
	if override.CheckInterval != 0 {
		merged.CheckInterval = override.CheckInterval
	}
	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.Retries != 0 {
		merged.Retries = override.Retries
	}
	if override.MinResponseTime != 0 {
		merged.MinResponseTime = override.MinResponseTime
	}
	if len(override.FallbackProviders) > 0 {
		merged.FallbackProviders = override.FallbackProviders
	}
	merged.Breaker = merged.Breaker.Merge(override.Breaker)
	return merged
}

// Validate 校验配置合法性
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.CheckInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Retries, validation.Min(0)),
	); err != nil {
		return err
	}
	return c.Breaker.Validate()
}

// ManagerConfig 健康监控组件配置
type ManagerConfig struct {
	// Enabled 是否启用健康监控
	Enabled bool `mapstructure:"enabled"`
	// EventBusBuffer 熔断事件总线缓冲区大小
	EventBusBuffer int `mapstructure:"event_bus_buffer"`
	// Default 所有提供者的基准配置
	Default Config `mapstructure:"default"`
	// Providers 按提供者名称的覆盖配置
	Providers map[string]Config `mapstructure:"providers"`
	// Metrics OpenTelemetry 指标配置
	Metrics HealthMetricsConfig `mapstructure:"metrics"`
}

// DefaultManagerConfig 默认组件配置
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Enabled:        true,
		EventBusBuffer: 500,
		Default:        DefaultConfig(),
	}
}

// ProviderConfig 返回指定提供者的生效配置 (Default 叠加同名覆盖)
func (c ManagerConfig) ProviderConfig(name string) Config {
	base := DefaultConfig().Merge(c.Default)
	if override, ok := c.Providers[name]; ok {
		return base.Merge(override)
	}
	return base
}

// Validate 校验组件配置
func (c ManagerConfig) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.EventBusBuffer, validation.Min(0)),
	); err != nil {
		return err
	}
	if err := c.Default.Validate(); err != nil {
		return err
	}
	for name := range c.Providers {
		// 覆盖项允许留空字段, 校验合并结果
		if err := c.ProviderConfig(name).Validate(); err != nil {
			return err
		}
	}
	return nil
}
