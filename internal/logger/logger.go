// Package logger is the JSON integration log. Field evaluation diagnostics
// go here so the loan-origination integrations can follow them apart from
// the service's own slog output.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func NewDefaultLogger() Logger {
	config := zap.NewProductionConfig()
	config.Level = level
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Named("field_catalog").Sugar()
}

// SetLevel changes the level of the default logger. Unknown levels keep
// the current one.
func SetLevel(name string) {
	parsed, err := zapcore.ParseLevel(name)
	if err != nil {
		return
	}
	level.SetLevel(parsed)
}

var (
	mu            sync.RWMutex
	defaultLogger Logger
)

func getDefaultLogger() Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewDefaultLogger()
	}
	return defaultLogger
}

// SetDefault replaces the package logger and returns the previous one.
func SetDefault(l Logger) Logger {
	mu.Lock()
	defer mu.Unlock()
	previous := defaultLogger
	defaultLogger = l
	return previous
}

func Debug(msg string, keysAndValues ...any) {
	getDefaultLogger().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	getDefaultLogger().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	getDefaultLogger().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	getDefaultLogger().Errorw(msg, keysAndValues...)
}
