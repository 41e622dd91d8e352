package breaker

import (
	"net/http"

	"github.com/KOMKZ/go-authwatch/errcode"
)

// Module code 20: circuit breaker errors
var (
	// ErrCircuitOpen breaker is open and the recovery timeout has not elapsed
	// The wrapped operation was not invoked
	ErrCircuitOpen = errcode.Register(errcode.New(
		20, 1, "breaker",
		"error.breaker.circuit_breaker_open",
		"circuit breaker is open",
		http.StatusServiceUnavailable,
	))

	// ErrOperationFailed the wrapped operation panicked; original message embedded
	ErrOperationFailed = errcode.Register(errcode.New(
		20, 2, "breaker",
		"error.breaker.operation_failed",
		"operation failed",
		http.StatusInternalServerError,
	))
)
