package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing settings
type DBTracingConfig struct {
	Enabled bool
	// SlowQueryThresh flags spans of statements slower than this
	SlowQueryThresh time.Duration
	DBName          string
	// WithVariables includes bind values in span statements (development only)
	WithVariables bool
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm plus a callback pair that marks slow
// statements and failed statements on the current span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(db *gorm.DB) { annotateStatement(db, cfg.SlowQueryThresh) }

	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("db_timing:before_create", before),
		cb.Query().Before("gorm:query").Register("db_timing:before_query", before),
		cb.Update().Before("gorm:update").Register("db_timing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("db_timing:before_delete", before),
		cb.Row().Before("gorm:row").Register("db_timing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("db_timing:before_raw", before),
		cb.Create().After("gorm:create").Register("db_timing:after_create", after),
		cb.Query().After("gorm:query").Register("db_timing:after_query", after),
		cb.Update().After("gorm:update").Register("db_timing:after_update", after),
		cb.Delete().After("gorm:delete").Register("db_timing:after_delete", after),
		cb.Row().After("gorm:row").Register("db_timing:after_row", after),
		cb.Raw().After("gorm:raw").Register("db_timing:after_raw", after),
	} {
		if err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
		zap.Bool("with_variables", cfg.WithVariables),
	)
	return nil
}

func annotateStatement(db *gorm.DB, slow time.Duration) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
