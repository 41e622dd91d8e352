package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-authwatch/health"
	"github.com/KOMKZ/go-authwatch/provider"
)

// mockAuthProvider 可切换健康状态的认证提供者桩
type mockAuthProvider struct {
	name string

	mu         sync.Mutex
	sessionErr error
}

func (p *mockAuthProvider) Name() string {
	return p.name
}

func (p *mockAuthProvider) Authenticate(_ context.Context, _ provider.Credentials) (*provider.AuthResult, error) {
	return &provider.AuthResult{UserID: "u-1"}, nil
}

func (p *mockAuthProvider) ValidateSession(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionErr
}

func (p *mockAuthProvider) GetCapabilities(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	return []string{"authenticate"}, nil
}

func newHealthManager(t *testing.T, providers ...*mockAuthProvider) *health.Manager {
	t.Helper()

	manager, err := health.NewManager(health.DefaultManagerConfig())
	require.NoError(t, err)
	t.Cleanup(manager.Close)

	cfg := health.Config{CheckInterval: time.Hour}
	for _, p := range providers {
		require.NoError(t, manager.RegisterProvider(p, cfg))
		monitor, ok := manager.GetMonitor(p.Name())
		require.True(t, ok)
		monitor.PerformHealthCheck(context.Background(), p)
	}
	return manager
}

func newRouter(manager *health.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterHealthRoutes(router, manager)
	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthCheckHandler_Handle(t *testing.T) {
	t.Run("all providers healthy", func(t *testing.T) {
		manager := newHealthManager(t, &mockAuthProvider{name: "jwt"})
		router := newRouter(manager)

		resp := doGet(router, "/health")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "jwt")
		assert.Contains(t, resp.Body.String(), "healthy")
	})

	t.Run("any unhealthy provider yields 503", func(t *testing.T) {
		bad := &mockAuthProvider{name: "saml", sessionErr: errors.New("idp down")}
		manager := newHealthManager(t, &mockAuthProvider{name: "jwt"}, bad)
		router := newRouter(manager)

		resp := doGet(router, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Contains(t, resp.Body.String(), "unhealthy")
	})
}

func TestHealthCheckHandler_Liveness(t *testing.T) {
	bad := &mockAuthProvider{name: "saml", sessionErr: errors.New("idp down")}
	router := newRouter(newHealthManager(t, bad))

	resp := doGet(router, "/health/liveness")

	// 存活探针与提供者状态无关
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "alive")
}

func TestHealthCheckHandler_Readiness(t *testing.T) {
	t.Run("ready when all healthy", func(t *testing.T) {
		router := newRouter(newHealthManager(t, &mockAuthProvider{name: "jwt"}))

		resp := doGet(router, "/health/readiness")
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("not ready when any provider is not healthy", func(t *testing.T) {
		bad := &mockAuthProvider{name: "saml", sessionErr: errors.New("idp down")}
		router := newRouter(newHealthManager(t, &mockAuthProvider{name: "jwt"}, bad))

		resp := doGet(router, "/health/readiness")
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})
}

func TestHealthCheckHandler_Provider(t *testing.T) {
	bad := &mockAuthProvider{name: "saml", sessionErr: errors.New("idp down")}
	router := newRouter(newHealthManager(t, &mockAuthProvider{name: "jwt"}, bad))

	t.Run("healthy provider", func(t *testing.T) {
		resp := doGet(router, "/health/providers/jwt")
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "jwt")
	})

	t.Run("unhealthy provider yields 503", func(t *testing.T) {
		resp := doGet(router, "/health/providers/saml")
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("unknown provider yields 404", func(t *testing.T) {
		resp := doGet(router, "/health/providers/ghost")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestRegisterHealthRoutes_NilManager(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterHealthRoutes(router, nil)

	resp := doGet(router, "/health")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
