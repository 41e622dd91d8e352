package provider

import "errors"

// Authentication related errors
var (
	// Login error
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionNotFound    = errors.New("session not found")

	// Authentication provider error
	ErrProviderNotEnabled   = errors.New("authentication provider not enabled")
	ErrProviderNotSupported = errors.New("unsupported authentication provider")
	ErrProviderUnavailable  = errors.New("authentication provider unavailable")
)
