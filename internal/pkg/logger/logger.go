package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder and minimum level.
type Config struct {
	// Env is "dev" (console) or "prod" (JSON). Default: "dev".
	Env string
	// Level is one of debug, info, warn, error. Default: "info".
	Level string
	// KeepPII disables masking of e-mail addresses in logged values.
	KeepPII bool
	// ServiceName is attached to every entry when set.
	ServiceName string
}

var (
	mu        sync.RWMutex
	base      = zap.NewNop()
	redactPII = true
)

// Init builds the process-wide logger. It is safe to call more than once.
func Init(cfg Config) error {
	l, err := build(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	base = l
	redactPII = !cfg.KeepPII
	mu.Unlock()
	return nil
}

// Set replaces the process-wide logger, mainly for tests (zaptest/observer).
func Set(l *zap.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

// L returns the process-wide zap logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() { _ = L().Sync() }

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { write(zapcore.DebugLevel, msg, fields) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { write(zapcore.InfoLevel, msg, fields) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { write(zapcore.WarnLevel, msg, fields) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { write(zapcore.ErrorLevel, msg, fields) }

func write(level zapcore.Level, msg string, kv []interface{}) {
	l := L()
	ce := l.Check(level, msg)
	if ce == nil {
		return
	}
	mu.RLock()
	redact := redactPII
	mu.RUnlock()

	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i < len(kv)-1; i += 2 {
		key := fmt.Sprintf("%v", kv[i])
		if err, ok := kv[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		val := fmt.Sprintf("%v", kv[i+1])
		if redact {
			val = redactPIIValue(val)
		}
		fields = append(fields, zap.String(key, val))
	}
	ce.Write(fields...)
}

func build(cfg Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if strings.ToLower(cfg.Env) == "prod" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := zcfg.Build(zap.AddCaller(), zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	return l, nil
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
