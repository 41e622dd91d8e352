package component

// 组件名称常量
const (
	ComponentConfig = "config"
	ComponentLogger = "logger"
	ComponentHealth = "health" // 🎯 提供方健康检查组件
)
