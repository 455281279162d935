package tenancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

const lateSweepPageSize = 200

// LateSweeper moves Active tenants to Late once their last Paid payment falls
// outside the late window. It runs from the scheduler across all organizations.
type LateSweeper struct {
	runner  *chain.Runner
	tenants tenancy.TenantRepository
	logger  *zap.Logger
}

// NewLateSweeper creates a new LateSweeper
func NewLateSweeper(runner *chain.Runner, tenants tenancy.TenantRepository, logger *zap.Logger) *LateSweeper {
	return &LateSweeper{
		runner:  runner,
		tenants: tenants,
		logger:  logger,
	}
}

// Sweep recomputes the status of every live Active tenant, each in its own
// transaction. A failure on one tenant is logged and does not stop the sweep.
func (s *LateSweeper) Sweep(ctx context.Context) (LateSweepResult, error) {
	var result LateSweepResult

	// Collect first: recomputing changes the status being paged on.
	var ids []uuid.UUID
	for offset := 0; ; offset += lateSweepPageSize {
		page, err := s.tenants.FindLiveByStatuses(ctx, []tenancy.TenantStatus{tenancy.TenantStatusActive}, lateSweepPageSize, offset)
		if err != nil {
			return result, err
		}
		for i := range page {
			ids = append(ids, page[i].ID)
		}
		if len(page) < lateSweepPageSize {
			break
		}
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++
		late := false
		err := s.runner.Run(ctx, tenancy.EventTypeTenantStatusChanged, uuid.Nil,
			chain.RecomputeTenantStatus(id),
			chain.Do("observe_status", func(ctx context.Context, tx *chain.Tx) error {
				t, err := tx.Tenants().FindByID(ctx, id)
				if err != nil {
					return err
				}
				late = t.Status == tenancy.TenantStatusLate
				return nil
			}),
		)
		if err != nil {
			result.Failed++
			s.logger.Warn("late sweep failed for tenant",
				zap.String("tenant_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		if late {
			result.MadeLate++
		}
	}

	if result.Checked > 0 {
		s.logger.Info("late sweep completed",
			zap.Int("checked", result.Checked),
			zap.Int("made_late", result.MadeLate),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}
