package health

import (
	"context"
	"sync"
	"time"

	"github.com/KOMKZ/go-authwatch/breaker"
	"github.com/KOMKZ/go-authwatch/provider"
)

// mockProvider 可切换健康状态的认证提供者桩
type mockProvider struct {
	name string

	mu            sync.Mutex
	sessionErr    error
	capsErr       error
	caps          []string
	validateCalls int
	capsCalls     int
}

func newMockProvider(name string) *mockProvider {
	return &mockProvider{
		name: name,
		caps: []string{"authenticate", "validate_session"},
	}
}

func (p *mockProvider) Name() string {
	return p.name
}

func (p *mockProvider) Authenticate(_ context.Context, _ provider.Credentials) (*provider.AuthResult, error) {
	return &provider.AuthResult{UserID: "u-1", Username: "tester"}, nil
}

func (p *mockProvider) ValidateSession(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validateCalls++
	return p.sessionErr
}

func (p *mockProvider) GetCapabilities(_ context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.capsCalls++
	if p.capsErr != nil {
		return nil, p.capsErr
	}
	return p.caps, nil
}

func (p *mockProvider) setHealthy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionErr = nil
	p.capsErr = nil
	p.caps = []string{"authenticate", "validate_session"}
}

func (p *mockProvider) setUnhealthy(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionErr = err
	p.capsErr = err
}

func (p *mockProvider) calls() (validate, caps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validateCalls, p.capsCalls
}

// fastConfig 短周期配置, 探测调度不干扰手动测试
func fastConfig() Config {
	return Config{
		CheckInterval: 20 * time.Millisecond,
		Timeout:       time.Second,
		Breaker: breaker.Config{
			FailureThreshold: 3,
			RecoveryTimeout:  50 * time.Millisecond,
		},
	}
}

// manualConfig 探测周期拉长到不会自动触发, 只走手动 PerformHealthCheck
func manualConfig() Config {
	cfg := fastConfig()
	cfg.CheckInterval = time.Hour
	return cfg
}
