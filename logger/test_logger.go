package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestCtxLogger test-only Context-Aware Logger
// Records logs in memory for assertions in unit tests
type TestCtxLogger struct {
	logs []LogEntry
	mu   sync.RWMutex
}

// LogEntry a recorded log line
type LogEntry struct {
	Level   string
	Message string
	TraceID string
	Fields  map[string]interface{}
}

// NewTestCtxLogger creates a test Logger (records to memory)
// Usage:
//
//	testLogger := logger.NewTestCtxLogger()
//	...
//	assert.True(t, testLogger.HasLog("WARN", "provider failed"))
func NewTestCtxLogger() *TestCtxLogger {
	return &TestCtxLogger{
		logs: make([]LogEntry, 0),
	}
}

// InfoCtx records an Info level log (to memory)
func (t *TestCtxLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "INFO", msg, fields)
}

// WarnCtx records a Warn level log (to memory)
func (t *TestCtxLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "WARN", msg, fields)
}

// ErrorCtx records an Error level log (to memory)
func (t *TestCtxLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "ERROR", msg, fields)
}

// DebugCtx records a Debug level log (to memory)
func (t *TestCtxLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	t.record(ctx, "DEBUG", msg, fields)
}

func (t *TestCtxLogger) record(ctx context.Context, level, msg string, fields []zap.Field) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logs = append(t.logs, LogEntry{
		Level:   level,
		Message: msg,
		TraceID: extractTraceIDFromContext(ctx, nil),
		Fields:  extractFieldsMap(fields),
	})
}

// GetLogs returns a copy of all recorded entries
func (t *TestCtxLogger) GetLogs() []LogEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	logs := make([]LogEntry, len(t.logs))
	copy(logs, t.logs)
	return logs
}

// HasLog checks whether an entry with the given level and message substring exists
func (t *TestCtxLogger) HasLog(level, msgContains string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, entry := range t.logs {
		if entry.Level == level && strings.Contains(entry.Message, msgContains) {
			return true
		}
	}
	return false
}

// Count returns the number of entries at the given level ("" counts all)
func (t *TestCtxLogger) Count(level string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if level == "" {
		return len(t.logs)
	}
	n := 0
	for _, entry := range t.logs {
		if entry.Level == level {
			n++
		}
	}
	return n
}

// Reset clears all recorded entries
func (t *TestCtxLogger) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = t.logs[:0]
}

// extractFieldsMap converts zap fields into a plain map
func extractFieldsMap(fields []zap.Field) map[string]interface{} {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return enc.Fields
}
