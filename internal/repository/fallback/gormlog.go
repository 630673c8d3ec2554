package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kailas-cloud/mediasearch/internal/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// zapLogger routes gorm's SQL tracing through zap, preferring the
// request-scoped logger of the query context.
type zapLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(l *zap.Logger) *zapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{log: l.Named("fallback"), level: gormlogger.Warn, slow: defaultSlowQuery}
}

// LogMode implements gormlogger.Interface.
func (z *zapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *z
	c.level = level
	return &c
}

// Info implements gormlogger.Interface.
func (z *zapLogger) Info(ctx context.Context, msg string, args ...any) {
	if z.level >= gormlogger.Info {
		z.from(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

// Warn implements gormlogger.Interface.
func (z *zapLogger) Warn(ctx context.Context, msg string, args ...any) {
	if z.level >= gormlogger.Warn {
		z.from(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

// Error implements gormlogger.Interface.
func (z *zapLogger) Error(ctx context.Context, msg string, args ...any) {
	if z.level >= gormlogger.Error {
		z.from(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

// Trace implements gormlogger.Interface.
func (z *zapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && z.level >= gormlogger.Error:
		sql, rows := fc()
		z.from(ctx).Error("Fallback query failed",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed), zap.Error(err))
	case z.slow > 0 && elapsed > z.slow && z.level >= gormlogger.Warn:
		sql, rows := fc()
		z.from(ctx).Warn("Slow fallback query",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case z.level >= gormlogger.Info:
		sql, rows := fc()
		z.from(ctx).Debug("Fallback query",
			zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}

func (z *zapLogger) from(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, z.log)
}
