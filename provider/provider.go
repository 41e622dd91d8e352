// Package provider 定义认证提供方的能力接口
//
// 健康检查内核只依赖此抽象接口，不关心具体提供方（JWT、OAuth、SAML、LDAP）的实现
package provider

import (
	"context"
)

// AuthProvider authentication provider capability interface
//
// Implemented by each concrete provider; the health core depends only on
// this contract. Implementations must be safe for concurrent invocation:
// ValidateSession may be called by the health probe loop while callers
// invoke operations against the same handle.
type AuthProvider interface {
	// Name Authentication method name (jwt, oauth, saml, ldap, session)
	// Used as the registry key, must be unique and stable
	Name() string

	// Authenticate execution authorization
	Authenticate(ctx context.Context, credentials Credentials) (*AuthResult, error)

	// ValidateSession checks that the provider can validate the current session
	// Used as the primary health probe signal
	ValidateSession(ctx context.Context) error

	// GetCapabilities lists the capabilities the provider supports
	// A non-empty list is used as the secondary health probe signal
	GetCapabilities(ctx context.Context) ([]string, error)
}

// Credentials (generic structure)
type Credentials struct {
	// username/password authentication
	Username string
	Password string

	// Token based authentication (JWT, session)
	Token string

	// OAuth 2.0 authentication
	AuthCode string
	Provider string // google, github, wechat

	// SAML assertion payload
	SAMLResponse string

	// API key authentication
	APIKey string
}

// AuthResult authentication result
type AuthResult struct {
	UserID   string                 // User ID
	Username string                 // Username
	Email    string                 // email address
	Roles    []string               // role list
	Extra    map[string]interface{} // Additional information
}
