// Package component provides component interface definitions
package component

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider defines the interface for components that provide metrics.
// Components can optionally implement this interface to register their metrics
// with a centralized metrics registry owned by the host application.
//
// Example implementation:
//
//	func (c *Component) MetricsName() string {
//	    return "health"
//	}
//
//	func (c *Component) RegisterMetrics(meter metric.Meter) error {
//	    counter, err := meter.Int64Counter("health_checks_total")
//	    if err != nil {
//	        return err
//	    }
//	    c.checksCounter = counter
//	    return nil
//	}
//
//	func (c *Component) IsMetricsEnabled() bool {
//	    return c.config.Metrics.Enabled
//	}
type MetricsProvider interface {
	// MetricsName returns the metrics group name (used for Meter naming).
	// Should be a short, lowercase identifier like "health", "breaker".
	MetricsName() string

	// RegisterMetrics registers all metrics for this component.
	// Called by the host registry after component Init.
	RegisterMetrics(meter metric.Meter) error

	// IsMetricsEnabled returns whether metrics collection is enabled for this component.
	IsMetricsEnabled() bool
}

// MetricsCollector defines the interface for a centralized metrics registry.
// Implemented by the host application's telemetry layer.
type MetricsCollector interface {
	// Register registers a MetricsProvider with the registry.
	Register(provider MetricsProvider) error

	// GetMeter returns a Meter for the given component name.
	GetMeter(name string) metric.Meter

	// GetBaseLabels returns the global base labels (service_name, env, etc.).
	GetBaseLabels() []attribute.KeyValue

	// IsEnabled returns whether metrics collection is globally enabled.
	IsEnabled() bool
}
