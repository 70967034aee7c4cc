package csv233

import (
	"github.com/go-logr/logr"
)

// Logger 日志接口，基于 logr
// 用户可以注入不同的日志实现（如 zap, zerolog 等）
type Logger = logr.Logger

var globalLogger Logger

// SetLogger 设置全局日志实现
// 例如: SetLogger(zapr.NewLogger(zapLogger))
func SetLogger(logger Logger) {
	globalLogger = logger
}

// GetLogger 获取当前日志实现，子包共用同一个日志实例
// 如果未设置，使用 logr.Discard()（不输出日志）
func GetLogger() Logger {
	if globalLogger.IsZero() {
		return logr.Discard()
	}
	return globalLogger
}

func getLogger() Logger {
	return GetLogger()
}
