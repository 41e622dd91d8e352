// Package config 提供配置加载能力（文件 + 环境变量）
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader configuration loader
// Merges YAML configuration files with environment variable overrides
// Implements component.ConfigLoader
type Loader struct {
	v           *viper.Viper
	configPath  string
	configName  string
	envPrefix   string
	loadedFiles []string
}

// Options Loader 构建选项
type Options struct {
	ConfigPath string // 配置目录路径（默认 "configs"）
	ConfigName string // 配置文件名，不含扩展名（默认 "app"）
	EnvPrefix  string // 环境变量前缀（如 "AUTHWATCH"）
}

// NewLoader creates a configuration loader
func NewLoader(opts Options) (*Loader, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = "configs"
	}
	if opts.ConfigName == "" {
		opts.ConfigName = "app"
	}

	v := viper.New()
	v.SetConfigName(opts.ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(opts.ConfigPath)

	// 环境变量覆盖：AUTHWATCH_HEALTH_ENABLED -> health.enabled
	if opts.EnvPrefix != "" {
		v.SetEnvPrefix(opts.EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	loader := &Loader{
		v:          v,
		configPath: opts.ConfigPath,
		configName: opts.ConfigName,
		envPrefix:  opts.EnvPrefix,
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}

	return loader, nil
}

// NewLoaderFromViper wraps an existing viper instance (for tests or embedding)
func NewLoaderFromViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads the configuration file
// Missing file is not an error: environment variables and defaults still apply
func (l *Loader) Load() error {
	err := l.v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config failed: %w", err)
	}

	l.loadedFiles = append(l.loadedFiles, l.v.ConfigFileUsed())
	return nil
}

// Reload re-reads the configuration file
func (l *Loader) Reload() error {
	l.loadedFiles = nil
	return l.Load()
}

// Get 获取配置项
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// Unmarshal 将配置反序列化到结构体
func (l *Loader) Unmarshal(key string, out interface{}) error {
	if key == "" {
		return l.v.Unmarshal(out)
	}
	return l.v.UnmarshalKey(key, out)
}

// GetString 获取字符串配置
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt 获取整数配置
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool 获取布尔配置
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet 检查配置项是否存在
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// GetLoadedFiles returns the list of loaded files (for logging)
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// GetViper returns the underlying viper instance (compatibility escape hatch)
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}
