package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/mediasearch/internal/version"
)

// ServiceName tags every entry written by NewLogger.
const ServiceName = "mediasearch"

// NewLogger creates a zap logger for env.
// prod writes JSON with ISO 8601 timestamps; local, dev and docker write
// colored console output. A non-empty level (debug, info, warn, error)
// overrides the environment default.
func NewLogger(env string, level ...string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "prod":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case "local", "dev", "docker":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if len(level) > 0 && level[0] != "" {
		lvl, err := zap.ParseAtomicLevel(level[0])
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level[0], err)
		}
		cfg.Level = lvl
	}

	l, err := cfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(serviceFields(env)...),
	)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

func serviceFields(env string) []zap.Field {
	return []zap.Field{
		zap.String("service", ServiceName),
		zap.String("env", env),
		zap.String("version", version.Version),
	}
}
