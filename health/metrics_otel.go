package health

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelHealthMetrics implements component.MetricsProvider for OpenTelemetry integration.
type OTelHealthMetrics struct {
	config     HealthMetricsConfig
	registered bool
	mu         sync.RWMutex

	// Metrics instruments
	checksTotal    metric.Int64Counter         // Total health checks
	checkDuration  metric.Float64Histogram     // Probe latency
	fallbacksTotal metric.Int64Counter         // Fallback chain executions
	statusGauge    metric.Int64ObservableGauge // Current status (0=healthy, 1=degraded, 2=unhealthy)

	// Status tracking for gauge
	statusCallbacks map[string]func() int64
	statusMu        sync.RWMutex
}

// HealthMetricsConfig holds configuration for health metrics
type HealthMetricsConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	RecordStatus bool `mapstructure:"record_status"`
}

// NewOTelHealthMetrics creates a new OTel metrics provider for health monitoring
func NewOTelHealthMetrics(cfg HealthMetricsConfig) *OTelHealthMetrics {
	return &OTelHealthMetrics{
		config:          cfg,
		statusCallbacks: make(map[string]func() int64),
	}
}

// MetricsName returns the metrics group name
func (m *OTelHealthMetrics) MetricsName() string {
	return "health"
}

// IsMetricsEnabled returns whether metrics collection is enabled
func (m *OTelHealthMetrics) IsMetricsEnabled() bool {
	return m.config.Enabled
}

// RegisterMetrics registers all health metrics with the provided Meter
func (m *OTelHealthMetrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error

	m.checksTotal, err = meter.Int64Counter(
		"health_checks_total",
		metric.WithDescription("Total number of provider health checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return err
	}

	m.checkDuration, err = meter.Float64Histogram(
		"health_check_duration_seconds",
		metric.WithDescription("Health check probe latency distribution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.fallbacksTotal, err = meter.Int64Counter(
		"health_fallbacks_total",
		metric.WithDescription("Total number of fallback chain executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return err
	}

	// Optional: status gauge
	if m.config.RecordStatus {
		m.statusGauge, err = meter.Int64ObservableGauge(
			"health_provider_status",
			metric.WithDescription("Current provider health status (0=healthy, 1=degraded, 2=unhealthy)"),
			metric.WithInt64Callback(m.collectStatus),
		)
		if err != nil {
			return err
		}
	}

	m.registered = true
	return nil
}

// collectStatus is the callback for the observable gauge
func (m *OTelHealthMetrics) collectStatus(_ context.Context, observer metric.Int64Observer) error {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()

	for name, callback := range m.statusCallbacks {
		observer.Observe(callback(),
			metric.WithAttributes(attribute.String("provider", name)),
		)
	}
	return nil
}

// RegisterStatusCallback registers a callback for a provider's status
func (m *OTelHealthMetrics) RegisterStatusCallback(provider string, callback func() int64) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.statusCallbacks[provider] = callback
}

// UnregisterStatusCallback removes a provider's status callback
func (m *OTelHealthMetrics) UnregisterStatusCallback(provider string) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	delete(m.statusCallbacks, provider)
}

// RecordCheck records a completed health check
func (m *OTelHealthMetrics) RecordCheck(ctx context.Context, result CheckResult) {
	m.mu.RLock()
	registered := m.registered
	m.mu.RUnlock()
	if !registered {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", result.ProviderName),
		attribute.String("status", result.Status.String()),
	}

	m.checksTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.checkDuration.Record(ctx, result.ResponseTime.Seconds(),
		metric.WithAttributes(attribute.String("provider", result.ProviderName)))
}

// RecordFallback records a fallback chain execution outcome
func (m *OTelHealthMetrics) RecordFallback(ctx context.Context, primary, served string, success bool) {
	m.mu.RLock()
	registered := m.registered
	m.mu.RUnlock()
	if !registered {
		return
	}

	result := "failure"
	if success {
		result = "success"
	}
	attrs := []attribute.KeyValue{
		attribute.String("primary", primary),
		attribute.String("result", result),
	}
	if served != "" {
		attrs = append(attrs, attribute.String("provider", served))
	}

	m.fallbacksTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IsRegistered returns whether metrics have been registered
func (m *OTelHealthMetrics) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}
