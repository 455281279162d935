package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaintenanceService opens and closes maintenance requests. A request that blocks
// occupancy takes an available unit out of service until it is closed.
type MaintenanceService struct {
	runner      *chain.Runner
	maintenance property.MaintenanceRepository
	logger      *zap.Logger
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(runner *chain.Runner, maintenance property.MaintenanceRepository, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		runner:      runner,
		maintenance: maintenance,
		logger:      logger,
	}
}

// Create opens a maintenance request on a unit
func (s *MaintenanceService) Create(ctx context.Context, orgID, actorID uuid.UUID, req CreateMaintenanceRequest) (*MaintenanceResponse, error) {
	var m *property.MaintenanceRequest
	err := s.runner.Run(ctx, property.EventTypeMaintenanceCreated, actorID,
		chain.Do("persist_request", func(ctx context.Context, tx *chain.Tx) error {
			u, err := tx.Units().FindByIDForOrg(ctx, orgID, req.UnitID)
			if err != nil {
				return err
			}
			if u.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "unit is archived").WithField("unit_id")
			}
			m, err = property.NewMaintenanceRequest(orgID, u.PropertyID, u.ID, req.Title, req.Description,
				property.MaintenancePriority(req.Priority), req.BlocksOccupancy, req.EstimatedCost)
			if err != nil {
				return err
			}
			m.TenantID = u.TenantID
			m.SetCreatedBy(actorID)

			if req.BlocksOccupancy && u.Status == property.UnitStatusAvailable {
				before := u.Snapshot()
				if err := u.ChangeStatus(property.UnitStatusMaintenance); err != nil {
					return err
				}
				if err := tx.Units().SaveWithLock(ctx, u); err != nil {
					return err
				}
				m.UnitBlocked = true
				record := history.NewUnitHistory(u, history.UnitActionStatusChanged, before, nil, "maintenance: "+m.Title, tx.Now)
				if err := tx.Record(ctx, []*history.UnitHistory{record}, nil); err != nil {
					return err
				}
			}
			if err := tx.Maintenance().Save(ctx, m); err != nil {
				return err
			}
			return tx.EmitEvents(ctx, property.NewMaintenanceCreatedEvent(m))
		}),
		chain.Do("recompute_occupancy", func(ctx context.Context, tx *chain.Tx) error {
			return chain.RecomputeProperty(ctx, tx, m.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("maintenance request created",
		zap.String("request_id", m.ID.String()),
		zap.String("unit_id", m.UnitID.String()),
		zap.Bool("unit_blocked", m.UnitBlocked),
	)
	response := ToMaintenanceResponse(m)
	return &response, nil
}

// Complete closes a request. A unit it blocked returns to Available, and a
// positive actual cost is booked as a maintenance expense.
func (s *MaintenanceService) Complete(ctx context.Context, orgID, actorID, requestID uuid.UUID, req CompleteMaintenanceRequest) (*MaintenanceResponse, error) {
	var m *property.MaintenanceRequest
	err := s.runner.Run(ctx, property.EventTypeMaintenanceCompleted, actorID,
		chain.Do("complete_request", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			m, err = tx.Maintenance().FindByIDForOrg(ctx, orgID, requestID)
			if err != nil {
				return err
			}
			if err := m.Complete(req.ActualCost, tx.Now); err != nil {
				return err
			}
			if err := tx.Maintenance().Save(ctx, m); err != nil {
				return err
			}
			if err := s.unblockUnit(ctx, tx, m); err != nil {
				return err
			}
			if m.ActualCost.IsPositive() {
				expense, err := property.NewExpense(orgID, m.PropertyID, property.ExpenseCategoryMaintenance,
					m.ActualCost, tx.Now, m.Title)
				if err != nil {
					return err
				}
				unitID, requestID := m.UnitID, m.ID
				expense.UnitID = &unitID
				expense.MaintenanceRequestID = &requestID
				expense.SetCreatedBy(actorID)
				if err := tx.Expenses().Save(ctx, expense); err != nil {
					return err
				}
				if err := tx.Emit(ctx, expense); err != nil {
					return err
				}
			}
			if err := tx.Emit(ctx, m); err != nil {
				return err
			}
			return chain.RecomputeProperty(ctx, tx, m.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToMaintenanceResponse(m)
	return &response, nil
}

// Cancel closes a request without cost, releasing a unit it blocked
func (s *MaintenanceService) Cancel(ctx context.Context, orgID, actorID, requestID uuid.UUID) (*MaintenanceResponse, error) {
	var m *property.MaintenanceRequest
	err := s.runner.Run(ctx, "maintenance.cancelled", actorID,
		chain.Do("cancel_request", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			m, err = tx.Maintenance().FindByIDForOrg(ctx, orgID, requestID)
			if err != nil {
				return err
			}
			if err := m.Cancel(); err != nil {
				return err
			}
			if err := tx.Maintenance().Save(ctx, m); err != nil {
				return err
			}
			if err := s.unblockUnit(ctx, tx, m); err != nil {
				return err
			}
			return chain.RecomputeProperty(ctx, tx, m.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToMaintenanceResponse(m)
	return &response, nil
}

// GetByID returns a maintenance request
func (s *MaintenanceService) GetByID(ctx context.Context, orgID, requestID uuid.UUID) (*MaintenanceResponse, error) {
	m, err := s.maintenance.FindByIDForOrg(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}
	response := ToMaintenanceResponse(m)
	return &response, nil
}

// unblockUnit returns the request's unit to Available when this request put it in
// Maintenance and no other open request still blocks it
func (s *MaintenanceService) unblockUnit(ctx context.Context, tx *chain.Tx, m *property.MaintenanceRequest) error {
	if !m.UnitBlocked {
		return nil
	}
	u, err := tx.Units().FindByID(ctx, m.UnitID)
	if err != nil {
		return err
	}
	if u.Status != property.UnitStatusMaintenance {
		return nil
	}
	open, err := tx.Maintenance().FindOpenByUnit(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, other := range open {
		if other.ID != m.ID && other.BlocksOccupancy {
			return nil
		}
	}
	before := u.Snapshot()
	if err := u.ChangeStatus(property.UnitStatusAvailable); err != nil {
		return err
	}
	if err := tx.Units().SaveWithLock(ctx, u); err != nil {
		return err
	}
	record := history.NewUnitHistory(u, history.UnitActionStatusChanged, before, nil, "maintenance closed: "+m.Title, tx.Now)
	return tx.Record(ctx, []*history.UnitHistory{record}, nil)
}

// ListOpen returns the requests of a unit that are not yet closed
func (s *MaintenanceService) ListOpen(ctx context.Context, orgID, unitID uuid.UUID) ([]MaintenanceResponse, error) {
	requests, err := s.maintenance.FindOpenByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	responses := make([]MaintenanceResponse, 0, len(requests))
	for i := range requests {
		if !requests[i].BelongsTo(orgID) {
			continue
		}
		responses = append(responses, ToMaintenanceResponse(&requests[i]))
	}
	return responses, nil
}
