package health

import (
	"net/http"

	"github.com/KOMKZ/go-authwatch/errcode"
)

// 健康监控模块错误码 (模块 22)
var (
	// ErrHealthCheckFailed 探测失败: 会话校验与能力查询均未通过
	ErrHealthCheckFailed = errcode.New(22, 1, "health", "health.check_failed",
		"Health check failed", http.StatusServiceUnavailable)

	// ErrAllProvidersFailed 故障转移链耗尽, 没有提供者成功
	ErrAllProvidersFailed = errcode.New(22, 2, "health", "health.all_providers_failed",
		"All providers failed", http.StatusServiceUnavailable)

	// ErrProviderNotRegistered 操作引用了未注册的提供者
	ErrProviderNotRegistered = errcode.New(22, 3, "health", "health.provider_not_registered",
		"Provider not registered", http.StatusNotFound)
)

func init() {
	errcode.Register(ErrHealthCheckFailed)
	errcode.Register(ErrAllProvidersFailed)
	errcode.Register(ErrProviderNotRegistered)
}
