package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager Logger manager (manages multiple Logger instances)
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger        // module name -> CtxZapLogger instance
	zapLoggers map[string]*zap.Logger          // module name -> underlying zap.Logger instance
	writers    map[string][]*lumberjack.Logger // module name -> file writers (for closing)
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates an independent Manager instance (for multi-instance scenarios)
// Zero-valued fields in cfg are automatically filled with defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
		zapLoggers: make(map[string]*zap.Logger),
		writers:    make(map[string][]*lumberjack.Logger),
	}
}

// InitManager initializes the global Logger manager (call once)
func InitManager(cfg ManagerConfig) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// GetLogger gets the CtxZapLogger for a module (thread-safe, created on demand)
// The returned Logger already carries the module field
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	// fast path
	m.mu.RLock()
	if logger, exists := m.loggers[moduleName]; exists {
		m.mu.RUnlock()
		return logger
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// double check
	if logger, exists := m.loggers[moduleName]; exists {
		return logger
	}

	cfg := m.buildModuleConfig(moduleName)
	zapLogger := m.createLogger(cfg)
	zapLoggerWithModule := zapLogger.With(zap.String("module", moduleName))

	// CallerSkip skips the CtxZapLogger wrapper layer
	zapLoggerWithSkip := zapLoggerWithModule.WithOptions(zap.AddCallerSkip(1))

	ctxLogger := &CtxZapLogger{
		base:   zapLoggerWithSkip,
		module: moduleName,
		config: &m.baseConfig,
	}

	m.loggers[moduleName] = ctxLogger
	m.zapLoggers[moduleName] = zapLoggerWithModule

	return ctxLogger
}

// buildModuleConfig builds the configuration for a module
func (m *Manager) buildModuleConfig(moduleName string) Config {
	return Config{
		Level:         m.baseConfig.Level,
		Encoding:      m.baseConfig.Encoding,
		moduleName:    moduleName,
		logDir:        m.baseConfig.BaseLogDir,
		EnableFile:    m.baseConfig.EnableFile,
		EnableConsole: m.baseConfig.EnableConsole,
		MaxSize:       m.baseConfig.MaxSize,
		MaxBackups:    m.baseConfig.MaxBackups,
		MaxAge:        m.baseConfig.MaxAge,
		Compress:      m.baseConfig.Compress,
		EnableCaller:  m.baseConfig.EnableCaller,
	}
}

// createLogger creates a zap.Logger instance
func (m *Manager) createLogger(cfg Config) *zap.Logger {
	encoder := createEncoder(cfg)
	var cores []zapcore.Core
	var writers []*lumberjack.Logger

	if cfg.EnableConsole {
		consoleCore := zapcore.NewCore(
			encoder,
			zapcore.AddSync(os.Stdout),
			ParseLevel(cfg.Level),
		)
		cores = append(cores, consoleCore)
	}

	if cfg.EnableFile {
		configuredLevel := ParseLevel(cfg.Level)

		infoWriter, infoLumber := createFileWriter(cfg.getInfoFilePath(), cfg)
		writers = append(writers, infoLumber)
		infoCore := zapcore.NewCore(
			encoder,
			infoWriter,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= configuredLevel && lvl < zapcore.ErrorLevel
			}),
		)
		cores = append(cores, infoCore)

		errorWriter, errorLumber := createFileWriter(cfg.getErrorFilePath(), cfg)
		writers = append(writers, errorLumber)
		errorCore := zapcore.NewCore(
			encoder,
			errorWriter,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			}),
		)
		cores = append(cores, errorCore)
	}

	core := zapcore.NewTee(cores...)

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	if len(writers) > 0 {
		m.writers[cfg.moduleName] = writers
	}

	return zap.New(core, opts...)
}

// CloseAll closes all loggers (call on application exit)
// Flushes buffers and closes all file handles
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, logger := range m.zapLoggers {
		_ = logger.Sync()
	}

	for _, writers := range m.writers {
		for _, w := range writers {
			_ = w.Close()
		}
	}

	m.loggers = make(map[string]*CtxZapLogger)
	m.zapLoggers = make(map[string]*zap.Logger)
	m.writers = make(map[string][]*lumberjack.Logger)
}

// createEncoder creates the encoder
func createEncoder(cfg Config) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch cfg.Encoding {
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return zapcore.NewJSONEncoder(encoderConfig)
	}
}

// createFileWriter creates a file writer (with rotation support)
func createFileWriter(filename string, cfg Config) (zapcore.WriteSyncer, *lumberjack.Logger) {
	dir := filepath.Dir(filename)
	os.MkdirAll(dir, 0755)

	lumberLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}

	return zapcore.AddSync(lumberLogger), lumberLogger
}

// ============================================
// Package-level convenience functions (use globalManager)
// ============================================

// GetLogger gets the CtxZapLogger for a module (thread-safe, created on demand)
func GetLogger(moduleName string) *CtxZapLogger {
	if globalManager == nil {
		// Not initialized, use default configuration
		InitManager(DefaultManagerConfig())
	}
	return globalManager.GetLogger(moduleName)
}

// CloseAll closes all loggers (call on application exit)
func CloseAll() {
	if globalManager == nil {
		return
	}
	globalManager.CloseAll()
}
