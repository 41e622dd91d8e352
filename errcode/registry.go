// Package errcode provides the basic types and functionalities for hierarchical error codes
package errcode

import (
	"fmt"
	"sync"
)

// Registry error code registry (prevents code conflicts)
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool           // once locked, no new codes can be registered
}

// globalRegistry global error code registry
var globalRegistry = &Registry{
	codes: make(map[int]string),
}

// Register registers an error code (conflict-checked)
// Panics if the code is already registered with a different msgKey
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register registers an error code into the registry
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("registry is locked, cannot register error code: %d", err.Code()))
	}

	code := err.Code()
	key := fmt.Sprintf("%s:%s", err.Module(), err.MsgKey())

	if existingKey, exists := r.codes[code]; exists {
		if existingKey != key {
			panic(fmt.Sprintf(
				"error code conflict: code %d is already registered as %s, cannot register as %s",
				code, existingKey, key,
			))
		}
		// Same code and key, idempotent re-registration allowed
		return err
	}

	r.codes[code] = key
	return err
}

// Lock locks the registry, preventing new code registration
// Usually called after application startup completes
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// Unlock unlocks the registry
func (r *Registry) Unlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
}

// IsLocked checks whether the registry is locked
func (r *Registry) IsLocked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// IsRegistered checks whether a code has been registered
func (r *Registry) IsRegistered(code int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.codes[code]
	return exists
}

// Len returns the number of registered codes
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// GlobalRegistry returns the global registry (for test/diagnostic use)
func GlobalRegistry() *Registry {
	return globalRegistry
}
