// Package health 认证提供者健康监控
//
// 提供两层能力:
//   - Monitor: 单个认证提供者的定时探测、指标统计与历史记录
//   - Manager: 提供者注册表、故障转移执行与整体健康报告
//
// 每个 Monitor 内置一个熔断器 (breaker 包), 探测调用经由熔断器执行,
// 连续失败会使熔断器打开, 后续探测被直接拒绝并计为失败。
package health

import (
	"time"

	"github.com/KOMKZ/go-authwatch/breaker"
)

// Status 提供者健康状态
type Status string

const (
	// StatusHealthy 最近一次探测成功
	StatusHealthy Status = "healthy"
	// StatusDegraded 尚无探测历史但已有失败记录 (指标被重置后出现失败)
	StatusDegraded Status = "degraded"
	// StatusUnhealthy 最近一次探测失败
	StatusUnhealthy Status = "unhealthy"
)

// String returns the status as a plain string.
func (s Status) String() string {
	return string(s)
}

// IsHealthy reports whether the status is healthy.
func (s Status) IsHealthy() bool {
	return s == StatusHealthy
}

// CheckResult 单次健康探测的结果
type CheckResult struct {
	ProviderName string                 `json:"provider_name"`
	Status       Status                 `json:"status"`
	ResponseTime time.Duration          `json:"response_time"`
	Timestamp    time.Time              `json:"timestamp"`
	Error        string                 `json:"error,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// clone 返回深拷贝, 调用方改 Details 不会影响留存的历史记录
func (r CheckResult) clone() CheckResult {
	if r.Details != nil {
		details := make(map[string]interface{}, len(r.Details))
		for k, v := range r.Details {
			details[k] = v
		}
		r.Details = details
	}
	return r
}

// Metrics 提供者的累计探测指标
type Metrics struct {
	TotalChecks         int64         `json:"total_checks"`
	SuccessfulChecks    int64         `json:"successful_checks"`
	FailedChecks        int64         `json:"failed_checks"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	Uptime              float64       `json:"uptime"` // successful/total percentage, 100 when no checks yet
	LastCheckTime       time.Time     `json:"last_check_time"`
	LastFailureTime     time.Time     `json:"last_failure_time"`
}

// HealthStatus 提供者健康状况快照
type HealthStatus struct {
	ProviderName string          `json:"provider_name"`
	Status       Status          `json:"status"`
	Metrics      Metrics         `json:"metrics"`
	Breaker      breaker.Metrics `json:"breaker"`
	LastCheck    *CheckResult    `json:"last_check,omitempty"` // nil when no check has run yet
}

// ReportSummary 健康报告汇总计数
type ReportSummary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Degraded  int `json:"degraded"`
	Unhealthy int `json:"unhealthy"`
}

// Report 所有已注册提供者的健康报告
type Report struct {
	Timestamp time.Time                `json:"timestamp"`
	Providers map[string]*HealthStatus `json:"providers"`
	Summary   ReportSummary            `json:"summary"`
}
