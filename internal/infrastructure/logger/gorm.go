package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM statements through zap, tagged with the request's
// org, actor and trace fields.
type GormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration after which a statement is reported as
// slow. Zero disables slow-query warnings.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{base: base.Named("gorm"), level: level, slow: defaultSlowQuery}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, data []any) {
	if l.level < at {
		return
	}
	sugar := For(ctx, l.base).Sugar()
	switch at {
	case gormlogger.Error:
		sugar.Errorf(msg, data...)
	case gormlogger.Warn:
		sugar.Warnf(msg, data...)
	default:
		sugar.Infof(msg, data...)
	}
}

// Trace implements gormlogger.Interface. Lost races on the conditional writes
// and partial unique indexes surface as unique violations; they are reported
// at debug level because the caller maps them to a domain error.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	lvl, msg, ok := l.classify(err, elapsed)
	if !ok {
		return
	}

	stmt, rows := fc()
	fields := []zap.Field{
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if l.slow > 0 && elapsed > l.slow {
		fields = append(fields, zap.Duration("slow_threshold", l.slow))
	}
	if ce := For(ctx, l.base).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

// classify decides whether a statement is logged and at which zap level
func (l *GormLogger) classify(err error, elapsed time.Duration) (zapcore.Level, string, bool) {
	switch {
	case err != nil:
		if l.level < gormlogger.Error || errors.Is(err, gormlogger.ErrRecordNotFound) {
			return 0, "", false
		}
		if isConstraintViolation(err) {
			return zapcore.DebugLevel, "sql constraint violation", true
		}
		return zapcore.ErrorLevel, "sql error", true
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		return zapcore.WarnLevel, "slow sql", true
	case l.level >= gormlogger.Info:
		return zapcore.DebugLevel, "sql", true
	}
	return 0, "", false
}

// MapGormLogLevel maps the application log level onto GORM's. Anything
// unrecognised keeps warnings and errors.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	levels := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"error":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"info":   gormlogger.Info,
		"debug":  gormlogger.Info,
	}
	if lvl, ok := levels[level]; ok {
		return lvl
	}
	return gormlogger.Warn
}
