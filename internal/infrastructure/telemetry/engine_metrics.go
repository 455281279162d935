package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/propcore/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
	outcomeRetry    = "retry"
	outcomeDead     = "dead"
)

// EngineMetrics records chain and outbox outcomes. It observes the chain
// runner and the outbox processor.
type EngineMetrics struct {
	chainRuns      metric.Int64Counter
	chainDuration  metric.Float64Histogram
	deliveries     metric.Int64Counter
	batchItems     metric.Int64Counter
	sweepProcessed metric.Int64Counter
}

// NewEngineMetrics creates the engine instruments on meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	var err error
	if m.chainRuns, err = meter.Int64Counter("engine.chain.runs",
		metric.WithDescription("Atomic chain runs by event and outcome"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.chainDuration, err = meter.Float64Histogram("engine.chain.duration",
		metric.WithDescription("Duration of atomic chain runs"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000),
	); err != nil {
		return nil, err
	}
	if m.deliveries, err = meter.Int64Counter("engine.outbox.deliveries",
		metric.WithDescription("Fan-out task delivery attempts by task and outcome"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, err
	}
	if m.batchItems, err = meter.Int64Counter("engine.batch.items",
		metric.WithDescription("Bulk payment batch items by outcome"),
		metric.WithUnit("{item}"),
	); err != nil {
		return nil, err
	}
	if m.sweepProcessed, err = meter.Int64Counter("engine.sweep.processed",
		metric.WithDescription("Records handled by scheduled sweeps"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// ChainCompleted records one atomic chain run. Domain rejections are counted
// apart from infrastructure failures.
func (m *EngineMetrics) ChainCompleted(ctx context.Context, event string, duration time.Duration, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFailed
		var de *shared.DomainError
		if errors.As(err, &de) {
			outcome = outcomeRejected
		}
	}
	attrs := metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	)
	m.chainRuns.Add(ctx, 1, attrs)
	m.chainDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// TaskDelivered records one outbox delivery attempt
func (m *EngineMetrics) TaskDelivered(ctx context.Context, task string, err error, dead bool) {
	outcome := outcomeOK
	switch {
	case dead:
		outcome = outcomeDead
	case err != nil:
		outcome = outcomeRetry
	}
	m.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", task),
		attribute.String("outcome", outcome),
	))
}

// BatchProcessed records the item outcomes of one bulk payment batch
func (m *EngineMetrics) BatchProcessed(ctx context.Context, succeeded, failed int) {
	m.batchItems.Add(ctx, int64(succeeded), metric.WithAttributes(attribute.String("outcome", outcomeOK)))
	m.batchItems.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("outcome", outcomeFailed)))
}

// SweepCompleted records how many records a scheduled sweep changed
func (m *EngineMetrics) SweepCompleted(ctx context.Context, job string, processed int) {
	m.sweepProcessed.Add(ctx, int64(processed), metric.WithAttributes(attribute.String("job", job)))
}
