package health

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/KOMKZ/go-authwatch/config"
)

// ProvideManager 创建 Manager Provider, 配置来自注入的 config.Loader 的 health 段
//
// 使用示例：
//
//	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{...}))
//	do.Provide(injector, health.ProvideManager())
//	manager := do.MustInvoke[*health.Manager](injector)
func ProvideManager() func(do.Injector) (*Manager, error) {
	return func(i do.Injector) (*Manager, error) {
		loader := do.MustInvoke[*config.Loader](i)

		cfg := DefaultManagerConfig()
		if loader.IsSet("health") {
			if err := loader.Unmarshal("health", &cfg); err != nil {
				return nil, fmt.Errorf("unmarshal health config failed: %w", err)
			}
		}

		manager, err := NewManager(cfg)
		if err != nil {
			return nil, fmt.Errorf("health manager build failed: %w", err)
		}
		return manager, nil
	}
}

// ProvideManagerValue 直接注册已创建的 Manager（用于测试或特殊场景）
func ProvideManagerValue(manager *Manager) func(do.Injector) (*Manager, error) {
	return func(i do.Injector) (*Manager, error) {
		return manager, nil
	}
}
