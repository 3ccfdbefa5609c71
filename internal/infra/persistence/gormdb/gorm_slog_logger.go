package gormdb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"placemap/config"
	deliverycontext "placemap/internal/delivery/context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultGormSlowThreshold = 200 * time.Millisecond

// gormSlogLogger routes GORM output through the request-scoped logger so that
// place queries carry the request ID of the API call that issued them.
type gormSlogLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
	now           func() time.Time
}

func newGormSlogLogger(baseLogger *slog.Logger, cfg *config.Config) logger.Interface {
	level := logger.Warn
	if cfg != nil && cfg.Env.Debug {
		level = logger.Info
	}

	threshold := defaultGormSlowThreshold
	if cfg != nil && cfg.Database != nil && cfg.Database.SlowQueryThreshold > 0 {
		threshold = cfg.Database.SlowQueryThreshold
	}

	return &gormSlogLogger{
		logger:        baseLogger,
		level:         level,
		slowThreshold: threshold,
		now:           time.Now,
	}
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logf(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logf(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logf(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *gormSlogLogger) logf(ctx context.Context, atLeast logger.LogLevel, level slog.Level, msg string, args ...any) {
	if l.level < atLeast || l.logger == nil {
		return
	}

	l.loggerFor(ctx).LogAttrs(ctx, level, "GORM "+level.String(),
		slog.String("message", fmt.Sprintf(msg, args...)),
	)
}

// Trace classifies each finished statement. Lookups that find nothing and
// constraint violations are answered to the caller as domain errors by the
// place repository, so they are not logged as failures here.
func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := l.now().Sub(begin)
	log := l.loggerFor(ctx)

	switch {
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if l.level >= logger.Info {
			attrs := append(queryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))
			log.LogAttrs(ctx, slog.LevelDebug, "GORM query abandoned", attrs...)
		}

		return
	case isUniqueConstraintViolation(err) || isNotNullConstraintViolation(err) || isCheckConstraintViolation(err):
		if l.level >= logger.Warn {
			attrs := append(queryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))
			log.LogAttrs(ctx, slog.LevelWarn, "GORM place constraint violated", attrs...)
		}

		return
	default:
		if l.level >= logger.Error {
			attrs := append(queryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))
			log.LogAttrs(ctx, slog.LevelError, "GORM query failed", attrs...)
		}

		return
	}

	if l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn {
		attrs := append(queryAttrs(sqlAndRowsFn, elapsed), slog.Duration("slowThreshold", l.slowThreshold))
		log.LogAttrs(ctx, slog.LevelWarn, "GORM slow query", attrs...)

		return
	}

	if l.level >= logger.Info {
		log.LogAttrs(ctx, slog.LevelInfo, "GORM query", queryAttrs(sqlAndRowsFn, elapsed)...)
	}
}

func (l *gormSlogLogger) loggerFor(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, l.logger)
}

func queryAttrs(sqlAndRowsFn func() (string, int64), elapsed time.Duration) []slog.Attr {
	sql, rows := sqlAndRowsFn()

	return []slog.Attr{
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}
}
