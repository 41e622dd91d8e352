package breaker

import (
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	// StateClosed 关闭（正常）
	StateClosed State = iota

	// StateOpen 打开（熔断）
	StateOpen

	// StateHalfOpen 半开（试探恢复）
	StateHalfOpen
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateOpen:
		return "Open"
	case StateHalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

// IsOpen 是否处于熔断状态
func (s State) IsOpen() bool {
	return s == StateOpen
}

// IsClosed 是否处于正常状态
func (s State) IsClosed() bool {
	return s == StateClosed
}

// IsHalfOpen 是否处于半开状态
func (s State) IsHalfOpen() bool {
	return s == StateHalfOpen
}

// stateManager state manager
type stateManager struct {
	state           State
	failureCount    int
	lastFailureTime time.Time
	nextAttempt     time.Time
	trialInFlight   bool // half-open admits exactly one trial at a time
	mu              sync.RWMutex
}

// create state manager
func newStateManager() *stateManager {
	return &stateManager{
		state: StateClosed,
	}
}

// GetState Get current state (thread-safe)
func (sm *stateManager) GetState() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.state
}

// CanAttempt checks if attempting is allowed (based on current state and configuration)
// An Open breaker whose recovery timeout has elapsed switches to half-open and allows one trial
func (sm *stateManager) CanAttempt() (allowed bool, stateChanged bool, fromState, toState State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	switch sm.state {
	case StateClosed:
		// closed state, allow all requests
		return true, false, sm.state, sm.state

	case StateOpen:
		// Open state, check for recovery timeout (can switch to half-open)
		if !time.Now().Before(sm.nextAttempt) {
			fromState = sm.state
			sm.state = StateHalfOpen
			sm.trialInFlight = true
			return true, true, fromState, sm.state
		}
		// recovery timeout has not elapsed, reject request
		return false, false, sm.state, sm.state

	case StateHalfOpen:
		// half-open state, only one trial call may be in flight
		if sm.trialInFlight {
			return false, false, sm.state, sm.state
		}
		sm.trialInFlight = true
		return true, false, sm.state, sm.state

	default:
		return false, false, sm.state, sm.state
	}
}

// RecordSuccess Recording successful
// Any success fully resets the breaker: no partial credit
func (sm *stateManager) RecordSuccess() (stateChanged bool, fromState, toState State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	fromState = sm.state
	sm.failureCount = 0
	sm.lastFailureTime = time.Time{}
	sm.nextAttempt = time.Time{}
	sm.state = StateClosed
	sm.trialInFlight = false

	return fromState != StateClosed, fromState, sm.state
}

// RecordFailure record failure
// Returns the new state; the threshold and half-open failures both trigger Open
func (sm *stateManager) RecordFailure(config Config) (stateChanged bool, fromState, toState State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	fromState = sm.state
	sm.failureCount++
	sm.lastFailureTime = time.Now()
	sm.trialInFlight = false

	// Half-open trial failure or threshold reached: open with a fresh recovery window
	if sm.state == StateHalfOpen || sm.failureCount >= config.FailureThreshold {
		sm.state = StateOpen
		sm.nextAttempt = time.Now().Add(config.RecoveryTimeout)
	}

	return fromState != sm.state, fromState, sm.state
}

// Reset reset status
func (sm *stateManager) Reset() (stateChanged bool, fromState, toState State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	fromState = sm.state
	sm.state = StateClosed
	sm.failureCount = 0
	sm.lastFailureTime = time.Time{}
	sm.nextAttempt = time.Time{}
	sm.trialInFlight = false

	return fromState != StateClosed, fromState, sm.state
}

// GetFailureCount gets the failure count
func (sm *stateManager) GetFailureCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.failureCount
}

// GetLastFailureTime gets the last failure time (zero when none)
func (sm *stateManager) GetLastFailureTime() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastFailureTime
}

// GetNextAttempt gets the next trial time (zero when not open)
func (sm *stateManager) GetNextAttempt() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.nextAttempt
}
