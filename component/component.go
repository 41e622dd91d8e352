// Package component 提供组件接口定义
// 这是最底层的包，不依赖任何业务包，避免循环依赖
package component

import "context"

// Component 组件接口（统一生命周期管理）
//
// 所有组件都必须实现此接口
// 组件生命周期：Init → Start → Stop
type Component interface {
	// Name 组件名称（唯一标识）
	Name() string

	// DependsOn 声明依赖的组件名称
	//
	// 支持可选依赖：
	//   - 强制依赖：直接返回组件名，如 "config", "logger"
	//   - 可选依赖：使用 "optional:" 前缀，如 "optional:telemetry"
	DependsOn() []string

	// Init 初始化组件（创建资源，不启动后台任务）
	//
	// 组件通过 loader 自行读取配置，不依赖其他组件实例
	Init(ctx context.Context, loader ConfigLoader) error

	// Start 启动组件（开始后台任务或对外提供服务）
	Start(ctx context.Context) error

	// Stop 停止组件（释放资源，允许重复调用）
	Stop(ctx context.Context) error
}
