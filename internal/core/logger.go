package core

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init initializes zap's global logger at the given minimum level
// ("debug", "info", "warn", "error"; empty defaults to info).
// After calling this, we use zap.L() directly.
func Init(pretty bool, level string) error {
	var config zap.Config

	if pretty {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(parsed)
	}

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return nil
}

// LogRequest logs an HTTP request outcome using zap's global logger
func LogRequest(route string, caller CallerIdentity, status int, err error) {
	fields := []zap.Field{
		zap.String("route", route),
		zap.String("caller", caller.Handle),
		zap.Int("status", status),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		zap.L().Warn("Request failed", fields...)
		return
	}

	zap.L().Info("Request completed", fields...)
}

// LogDeferredError logs an error returned by a deferred call, typically a Close.
func LogDeferredError(fn func() error) {
	if err := fn(); err != nil {
		zap.L().Error("Deferred call failed", zap.Error(err))
	}
}

// LogPanicRecovery logs a recovered panic with its origin for post-mortem debugging.
func LogPanicRecovery(origin string, recovered any) {
	zap.L().Error("Panic recovered",
		zap.String("origin", origin),
		zap.Any("panic", recovered),
		zap.Stack("stack"))
}
