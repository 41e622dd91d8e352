package breaker

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config 熔断器配置
type Config struct {
	// FailureThreshold 连续失败次数阈值（达到后熔断）
	FailureThreshold int `mapstructure:"failure_threshold"`

	// RecoveryTimeout 熔断恢复等待时间（Open 状态持续时间）
	RecoveryTimeout time.Duration `mapstructure:"recovery_timeout"`

	// MonitoringPeriod 失败统计的观察窗口（仅用于上报，阈值本身已约束行为）
	MonitoringPeriod time.Duration `mapstructure:"monitoring_period"`

	// ExpectedRecoveryTime 预期恢复时间（仅用于上报）
	ExpectedRecoveryTime time.Duration `mapstructure:"expected_recovery_time"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		FailureThreshold:     5,
		RecoveryTimeout:      30 * time.Second,
		MonitoringPeriod:     60 * time.Second,
		ExpectedRecoveryTime: 30 * time.Second,
	}
}

// Merge 合并配置（override 覆盖默认值，只覆盖非零值）
// 非法值（如负数）会保留下来，由 Validate 统一报错，避免静默吞掉配置错误
func (c Config) Merge(override Config) Config {
	result := c

	if override.FailureThreshold != 0 {
		result.FailureThreshold = override.FailureThreshold
	}
	if override.RecoveryTimeout != 0 {
		result.RecoveryTimeout = override.RecoveryTimeout
	}
	if override.MonitoringPeriod != 0 {
		result.MonitoringPeriod = override.MonitoringPeriod
	}
	if override.ExpectedRecoveryTime != 0 {
		result.ExpectedRecoveryTime = override.ExpectedRecoveryTime
	}

	return result
}

// Validate 验证配置
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FailureThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.RecoveryTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.MonitoringPeriod, validation.Min(time.Duration(0))),
		validation.Field(&c.ExpectedRecoveryTime, validation.Min(time.Duration(0))),
	)
}
