// Package breaker 提供熔断器功能
//
// 设计理念：
//   - 独立包，不依赖其他 authwatch 组件（除 logger、errcode）
//   - 事件驱动，应用层可订阅所有事件
//   - 可选注入事件总线与日志，未注入时静默
package breaker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KOMKZ/go-authwatch/logger"
)

// Operation 受保护的调用
type Operation func(ctx context.Context) (interface{}, error)

// Metrics 指标快照（应用层可访问）
type Metrics struct {
	State           State
	Failures        int
	LastFailureTime time.Time // zero when no failure recorded
	NextAttempt     time.Time // zero when not open
}

// CircuitBreaker circuit breaker implementation
//
// Gates a single fallible operation on accumulated consecutive failures:
// Closed passes calls through, Open rejects immediately until the recovery
// timeout elapses, HalfOpen lets one trial call decide recovery.
type CircuitBreaker struct {
	name     string
	config   Config
	stateMgr *stateManager
	eventBus EventBus
	logger   *logger.CtxZapLogger
}

// NewCircuitBreaker Create circuit breaker instance
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	return NewCircuitBreakerWithOptions(name, config, nil, nil)
}

// NewCircuitBreakerWithOptions Create circuit breaker with event bus and logger
func NewCircuitBreakerWithOptions(name string, config Config, eventBus EventBus, log *logger.CtxZapLogger) *CircuitBreaker {
	config = DefaultConfig().Merge(config)

	return &CircuitBreaker{
		name:     name,
		config:   config,
		stateMgr: newStateManager(),
		eventBus: eventBus,
		logger:   log,
	}
}

// Name returns the resource name the breaker protects
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute the protected operation
//
// When the breaker is open and the recovery timeout has not elapsed the
// operation is NOT invoked and ErrCircuitOpen is returned immediately.
// A panic inside the operation is recovered and surfaced as
// ErrOperationFailed; callers never see a raw panic.
// Operation errors are returned as-is (they already carry the operation's
// own failure signaling) but still count toward the threshold.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	allowed, changed, fromState, toState := cb.stateMgr.CanAttempt()
	if changed {
		cb.publishStateChangedEvent(ctx, fromState, toState, "recovery timeout elapsed")
	}

	if !allowed {
		if cb.logger != nil {
			cb.logger.WarnCtx(ctx, "⛔ [CircuitBreaker] Request rejected",
				zap.String("resource", cb.name),
				zap.String("state", cb.stateMgr.GetState().String()))
		}

		if cb.eventBus != nil {
			cb.eventBus.Publish(&RejectedEvent{
				BaseEvent:    NewBaseEvent(EventCallRejected, cb.name, ctx),
				CurrentState: cb.stateMgr.GetState(),
			})
		}

		return nil, ErrCircuitOpen.WithData("resource", cb.name)
	}

	// Perform the actual operation
	start := time.Now()
	result, err := cb.invoke(ctx, op)
	duration := time.Since(start)

	if err != nil {
		cb.handleFailure(ctx, duration, err)
		return nil, err
	}

	cb.handleSuccess(ctx, duration)
	return result, nil
}

// invoke runs the operation, converting panics into structured errors
func (cb *CircuitBreaker) invoke(ctx context.Context, op Operation) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrOperationFailed.Wrapf(fmt.Errorf("%v", r), "panic during execution")
			result = nil
		}
	}()

	return op(ctx)
}

// handle success
func (cb *CircuitBreaker) handleSuccess(ctx context.Context, duration time.Duration) {
	if cb.logger != nil {
		cb.logger.DebugCtx(ctx, "✅ [CircuitBreaker] Call succeeded",
			zap.String("resource", cb.name),
			zap.Duration("duration", duration))
	}

	if cb.eventBus != nil {
		cb.eventBus.Publish(&CallEvent{
			BaseEvent: NewBaseEvent(EventCallSuccess, cb.name, ctx),
			Success:   true,
			Duration:  duration,
		})
	}

	changed, fromState, toState := cb.stateMgr.RecordSuccess()
	if changed {
		cb.publishStateChangedEvent(ctx, fromState, toState, "trial call succeeded")
	}
}

// handleFailure Handle failure
func (cb *CircuitBreaker) handleFailure(ctx context.Context, duration time.Duration, err error) {
	if cb.logger != nil {
		cb.logger.DebugCtx(ctx, "❌ [CircuitBreaker] Call failed",
			zap.String("resource", cb.name),
			zap.Duration("duration", duration),
			zap.Error(err))
	}

	if cb.eventBus != nil {
		cb.eventBus.Publish(&CallEvent{
			BaseEvent: NewBaseEvent(EventCallFailure, cb.name, ctx),
			Success:   false,
			Duration:  duration,
			Error:     err,
		})
	}

	changed, fromState, toState := cb.stateMgr.RecordFailure(cb.config)
	if changed {
		if cb.logger != nil {
			cb.logger.WarnCtx(ctx, "⛔ [CircuitBreaker] Circuit breaker triggered!",
				zap.String("resource", cb.name),
				zap.Int("failures", cb.stateMgr.GetFailureCount()))
		}
		cb.publishStateChangedEvent(ctx, fromState, toState, "failure threshold exceeded")
	}
}

// publishStateChangedEvent Publish state change event
func (cb *CircuitBreaker) publishStateChangedEvent(ctx context.Context, fromState, toState State, reason string) {
	if cb.eventBus != nil {
		cb.eventBus.Publish(&StateChangedEvent{
			BaseEvent: NewBaseEvent(EventStateChanged, cb.name, ctx),
			FromState: fromState,
			ToState:   toState,
			Reason:    reason,
			Metrics:   cb.GetMetrics(),
		})
	}
}

// GetState Retrieve circuit breaker status
func (cb *CircuitBreaker) GetState() State {
	return cb.stateMgr.GetState()
}

// GetMetrics Retrieve metric snapshot
func (cb *CircuitBreaker) GetMetrics() *Metrics {
	return &Metrics{
		State:           cb.stateMgr.GetState(),
		Failures:        cb.stateMgr.GetFailureCount(),
		LastFailureTime: cb.stateMgr.GetLastFailureTime(),
		NextAttempt:     cb.stateMgr.GetNextAttempt(),
	}
}

// Reset 手动重置熔断器状态（不影响被保护的操作）
func (cb *CircuitBreaker) Reset() {
	changed, fromState, toState := cb.stateMgr.Reset()
	if changed {
		cb.publishStateChangedEvent(context.Background(), fromState, toState, "manual reset")
	}
}
