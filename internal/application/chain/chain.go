// Package chain runs the fixed, ordered step lists that follow each mutating
// domain event. The atomic steps of a chain share one transaction; the
// best-effort fan-out is written to the outbox in that same transaction and
// delivered later by the outbox worker.
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// Step is one ordered action of an atomic phase
type Step struct {
	Name string
	Run  func(ctx context.Context, tx *Tx) error
}

// Tx is the unit of work handed to each step
type Tx struct {
	Repositories
	Actor uuid.UUID
	Now   time.Time
	// LateWindow is how far back a PAID payment keeps a tenant Active
	LateWindow time.Duration
}

// Emit enqueues the pending events of the given aggregates and clears them
func (tx *Tx) Emit(ctx context.Context, aggs ...shared.AggregateRoot) error {
	for _, agg := range aggs {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if err := tx.EmitEvents(ctx, events...); err != nil {
			return err
		}
		agg.ClearDomainEvents()
	}
	return nil
}

// EmitEvents stamps the acting user on events and enqueues their fan-out tasks
func (tx *Tx) EmitEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	shared.StampActor(tx.Actor, events...)
	return tx.Outbox().Enqueue(ctx, events...)
}

// Record appends history records attributed to the acting user
func (tx *Tx) Record(ctx context.Context, units []*history.UnitHistory, movements []*history.TenantMovement) error {
	history.Attribute(tx.Actor, units, movements)
	if len(units) > 0 {
		if err := tx.History().AppendUnitHistory(ctx, units...); err != nil {
			return err
		}
	}
	if len(movements) > 0 {
		if err := tx.History().AppendMovements(ctx, movements...); err != nil {
			return err
		}
	}
	return nil
}

// Observer is notified of every chain outcome
type Observer interface {
	ChainCompleted(ctx context.Context, event string, duration time.Duration, err error)
}

// Config holds runner settings
type Config struct {
	// Timeout bounds an atomic phase. Zero leaves the caller's deadline in charge.
	Timeout time.Duration
	// LateWindow overrides the tenant late window. Zero uses tenancy.LatePaymentWindow.
	LateWindow time.Duration
}

// Runner executes chains inside a transaction scope
type Runner struct {
	scope    TransactionScope
	config   Config
	logger   *zap.Logger
	observer Observer
}

// NewRunner creates a chain runner
func NewRunner(scope TransactionScope, config Config, logger *zap.Logger) *Runner {
	if config.LateWindow <= 0 {
		config.LateWindow = tenancy.LatePaymentWindow
	}
	return &Runner{scope: scope, config: config, logger: logger}
}

// WithObserver attaches an observer (metrics) to the runner
func (r *Runner) WithObserver(o Observer) *Runner {
	r.observer = o
	return r
}

// Run executes steps in order inside one transaction. The first failing step
// aborts the chain and rolls back everything before it.
func (r *Runner) Run(ctx context.Context, event string, actor uuid.UUID, steps ...Step) error {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := r.scope.Execute(ctx, func(repos Repositories) error {
		tx := &Tx{Repositories: repos, Actor: actor, Now: shared.Now(), LateWindow: r.config.LateWindow}
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s aborted before %s: %w", event, step.Name, err)
			}
			if err := step.Run(ctx, tx); err != nil {
				r.logger.Debug("chain step failed",
					zap.String("event", event),
					zap.String("step", step.Name),
					zap.Error(err),
				)
				return err
			}
		}
		return nil
	})

	if r.observer != nil {
		r.observer.ChainCompleted(ctx, event, time.Since(start), err)
	}
	if err != nil && !isDomainError(err) {
		r.logger.Error("chain failed",
			zap.String("event", event),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}
	return err
}

func isDomainError(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de)
}
