package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KOMKZ/go-authwatch/health"
)

// HealthCheckHandler 健康检查 HTTP Handler
// 基于 health.Manager 的报告暴露统一的健康检查端点
type HealthCheckHandler struct {
	manager *health.Manager
}

// NewHealthCheckHandler 创建健康检查 Handler
func NewHealthCheckHandler(manager *health.Manager) *HealthCheckHandler {
	return &HealthCheckHandler{
		manager: manager,
	}
}

// Handle 处理健康检查请求
// GET /health - 完整健康报告（所有提供者）
func (h *HealthCheckHandler) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.manager.GetHealthReport()

		// 有任一提供者不健康即返回 503, 降级仍返回 200 并在响应体中标识
		statusCode := http.StatusOK
		if report.Summary.Unhealthy > 0 {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, report)
	}
}

// HandleLiveness K8s Liveness Probe
// 只检查进程是否存活, 不检查提供者
func (h *HealthCheckHandler) HandleLiveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
		})
	}
}

// HandleReadiness K8s Readiness Probe
// 所有提供者都健康才算就绪
func (h *HealthCheckHandler) HandleReadiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.manager.GetHealthReport()

		statusCode := http.StatusOK
		status := health.StatusHealthy
		if report.Summary.Healthy < report.Summary.Total {
			statusCode = http.StatusServiceUnavailable
			status = health.StatusUnhealthy
		}

		c.JSON(statusCode, gin.H{
			"status": status,
		})
	}
}

// HandleProvider 单个提供者的健康快照
// GET /health/providers/:name
func (h *HealthCheckHandler) HandleProvider() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		status := h.manager.GetProviderHealthStatus(name)
		if status == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error":    "provider not registered",
				"provider": name,
			})
			return
		}

		statusCode := http.StatusOK
		if status.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, status)
	}
}

// RegisterHealthRoutes 注册健康检查路由
// 便捷方法，自动注册所有健康检查端点
func RegisterHealthRoutes(router gin.IRouter, manager *health.Manager) {
	if manager == nil {
		return
	}

	handler := NewHealthCheckHandler(manager)

	router.GET("/health", handler.Handle())
	router.GET("/health/liveness", handler.HandleLiveness())
	router.GET("/health/readiness", handler.HandleReadiness())
	router.GET("/health/providers/:name", handler.HandleProvider())
}
