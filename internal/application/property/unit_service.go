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

// UnitService handles manual unit changes. Tenant occupancy changes go through
// the tenant lifecycle instead.
type UnitService struct {
	runner  *chain.Runner
	units   property.UnitRepository
	history history.Repository
	logger  *zap.Logger
}

// NewUnitService creates a new UnitService
func NewUnitService(
	runner *chain.Runner,
	units property.UnitRepository,
	historyRepo history.Repository,
	logger *zap.Logger,
) *UnitService {
	return &UnitService{
		runner:  runner,
		units:   units,
		history: historyRepo,
		logger:  logger,
	}
}

// GetByID returns a unit
func (s *UnitService) GetByID(ctx context.Context, orgID, unitID uuid.UUID) (*UnitResponse, error) {
	u, err := s.units.FindByIDForOrg(ctx, orgID, unitID)
	if err != nil {
		return nil, err
	}
	response := ToUnitResponse(u)
	return &response, nil
}

// ChangeStatus moves a unit through the status table. Occupied cannot be set by hand.
func (s *UnitService) ChangeStatus(ctx context.Context, orgID, actorID, unitID uuid.UUID, req ChangeUnitStatusRequest) (*UnitResponse, error) {
	var result *property.Unit
	err := s.runner.Run(ctx, property.EventTypeUnitStatusChanged, actorID,
		chain.Do("change_unit_status", func(ctx context.Context, tx *chain.Tx) error {
			u, err := tx.Units().FindByIDForOrg(ctx, orgID, unitID)
			if err != nil {
				return err
			}
			before := u.Snapshot()
			old := u.Status
			if err := u.ChangeStatus(property.UnitStatus(req.Status)); err != nil {
				return err
			}
			if err := tx.Units().SaveWithLock(ctx, u); err != nil {
				return err
			}
			action := history.UnitActionStatusChanged
			if u.IsArchived() {
				action = history.UnitActionArchived
			}
			record := history.NewUnitHistory(u, action, before, nil, req.Reason, tx.Now)
			if err := tx.Record(ctx, []*history.UnitHistory{record}, nil); err != nil {
				return err
			}
			if err := tx.EmitEvents(ctx, property.NewUnitStatusChangedEvent(u, old)); err != nil {
				return err
			}
			result = u
			return chain.RecomputeProperty(ctx, tx, u.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToUnitResponse(result)
	return &response, nil
}

// ChangeRent sets a unit's asking rent and appends a rent history entry
func (s *UnitService) ChangeRent(ctx context.Context, orgID, actorID, unitID uuid.UUID, req ChangeUnitRentRequest) (*UnitResponse, error) {
	var result *property.Unit
	err := s.runner.Run(ctx, property.EventTypeUnitRentChanged, actorID,
		chain.Do("change_unit_rent", func(ctx context.Context, tx *chain.Tx) error {
			u, err := tx.Units().FindByIDForOrg(ctx, orgID, unitID)
			if err != nil {
				return err
			}
			result = u
			before := u.Snapshot()
			old := u.RentAmount
			if err := u.ChangeRent(req.RentAmount, tx.Now, req.Reason); err != nil {
				return err
			}
			if u.RentAmount.Equal(old) {
				return nil
			}
			if err := tx.Units().SaveWithLock(ctx, u); err != nil {
				return err
			}
			record := history.NewUnitHistory(u, history.UnitActionRentChanged, before, u.TenantID, req.Reason, tx.Now)
			if err := tx.Record(ctx, []*history.UnitHistory{record}, nil); err != nil {
				return err
			}
			return tx.EmitEvents(ctx, property.NewUnitRentChangedEvent(u, old))
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToUnitResponse(result)
	return &response, nil
}

// Remove deletes a unit that never held a tenant and archives any other.
// A unit with a current tenant cannot be removed.
func (s *UnitService) Remove(ctx context.Context, orgID, actorID, unitID uuid.UUID) (*RemoveUnitResponse, error) {
	response := &RemoveUnitResponse{UnitID: unitID}
	err := s.runner.Run(ctx, "unit.removed", actorID,
		chain.Do("remove_unit", func(ctx context.Context, tx *chain.Tx) error {
			u, err := tx.Units().FindByIDForOrg(ctx, orgID, unitID)
			if err != nil {
				return err
			}
			if u.TenantID != nil {
				return shared.NewActiveTenantsExistError(1)
			}
			if u.CanBeDeleted() {
				if err := tx.Units().Delete(ctx, u.ID); err != nil {
					return err
				}
				return chain.RecomputeProperty(ctx, tx, u.PropertyID)
			}

			before := u.Snapshot()
			old := u.Status
			if !u.IsArchived() {
				if err := u.Archive(); err != nil {
					return err
				}
				if err := tx.Units().SaveWithLock(ctx, u); err != nil {
					return err
				}
				record := history.NewUnitHistory(u, history.UnitActionArchived, before, nil, "unit removed", tx.Now)
				if err := tx.Record(ctx, []*history.UnitHistory{record}, nil); err != nil {
					return err
				}
				if err := tx.EmitEvents(ctx, property.NewUnitStatusChangedEvent(u, old)); err != nil {
					return err
				}
			}
			response.Archived = true
			return chain.RecomputeProperty(ctx, tx, u.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("unit removed",
		zap.String("unit_id", unitID.String()),
		zap.Bool("archived", response.Archived),
	)
	return response, nil
}

// History returns a unit's history log, newest first
func (s *UnitService) History(ctx context.Context, orgID, unitID uuid.UUID, filter shared.Filter) (shared.Paginated[UnitHistoryResponse], error) {
	filter = filter.Normalize()
	if _, err := s.units.FindByIDForOrg(ctx, orgID, unitID); err != nil {
		return shared.Paginated[UnitHistoryResponse]{}, err
	}
	records, total, err := s.history.ListUnitHistory(ctx, orgID, unitID, filter)
	if err != nil {
		return shared.Paginated[UnitHistoryResponse]{}, err
	}
	items := make([]UnitHistoryResponse, len(records))
	for i := range records {
		items[i] = ToUnitHistoryResponse(&records[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
