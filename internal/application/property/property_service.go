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

// PropertyService handles property creation, growth and archival
type PropertyService struct {
	runner     *chain.Runner
	properties property.PropertyRepository
	units      property.UnitRepository
	logger     *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(
	runner *chain.Runner,
	properties property.PropertyRepository,
	units property.UnitRepository,
	logger *zap.Logger,
) *PropertyService {
	return &PropertyService{
		runner:     runner,
		properties: properties,
		units:      units,
		logger:     logger,
	}
}

// Create creates a property and materializes its initial units in one transaction
func (s *PropertyService) Create(ctx context.Context, orgID, actorID uuid.UUID, req CreatePropertyRequest) (*PropertyResponse, error) {
	ownerID := actorID
	if req.OwnerID != nil {
		ownerID = *req.OwnerID
	}
	p, err := property.NewProperty(orgID, ownerID, req.Name, req.Address.toDomain())
	if err != nil {
		return nil, err
	}
	if req.DefaultRent.IsNegative() {
		return nil, shared.NewValidationError("default_rent", "rent cannot be negative")
	}
	units, err := p.MaterializeUnits(req.NumberOfUnits, 0, req.DefaultRent)
	if err != nil {
		return nil, err
	}

	err = s.runner.Run(ctx, property.EventTypePropertyAdded, actorID,
		chain.Do("persist_property", func(ctx context.Context, tx *chain.Tx) error {
			return tx.Properties().Save(ctx, p)
		}),
		chain.Do("materialize_units", func(ctx context.Context, tx *chain.Tx) error {
			return tx.Units().Create(ctx, units...)
		}),
		chain.RecomputePropertyAggregates(p.ID),
		chain.Do("emit_property_added", func(ctx context.Context, tx *chain.Tx) error {
			p.NumberOfUnits = len(units)
			return tx.EmitEvents(ctx, property.NewPropertyAddedEvent(p))
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("property created",
		zap.String("property_id", p.ID.String()),
		zap.String("org_id", orgID.String()),
		zap.Int("units", len(units)),
	)
	return s.GetByID(ctx, orgID, p.ID)
}

// GetByID returns a property with all of its units
func (s *PropertyService) GetByID(ctx context.Context, orgID, propertyID uuid.UUID) (*PropertyResponse, error) {
	p, err := s.properties.FindByIDForOrg(ctx, orgID, propertyID)
	if err != nil {
		return nil, err
	}
	units, err := s.units.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	response := ToPropertyResponse(p)
	response.Units = make([]UnitResponse, len(units))
	for i := range units {
		response.Units[i] = ToUnitResponse(&units[i])
	}
	return &response, nil
}

// List returns the live properties of an organization
func (s *PropertyService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[PropertyResponse], error) {
	filter = filter.Normalize()
	properties, total, err := s.properties.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return shared.Paginated[PropertyResponse]{}, err
	}
	items := make([]PropertyResponse, len(properties))
	for i := range properties {
		items[i] = ToPropertyResponse(&properties[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetCashFlow returns the stored cash flow of a property
func (s *PropertyService) GetCashFlow(ctx context.Context, orgID, propertyID uuid.UUID) (*CashFlowResponse, error) {
	p, err := s.properties.FindByIDForOrg(ctx, orgID, propertyID)
	if err != nil {
		return nil, err
	}
	response := ToCashFlowResponse(p.CashFlow)
	return &response, nil
}

// AddUnits grows a property by req.Count units numbered after every unit it ever had
func (s *PropertyService) AddUnits(ctx context.Context, orgID, actorID, propertyID uuid.UUID, req AddUnitsRequest) (*PropertyResponse, error) {
	if req.RentAmount.IsNegative() {
		return nil, shared.NewValidationError("rent_amount", "rent cannot be negative")
	}
	err := s.runner.Run(ctx, property.EventTypeUnitsAdded, actorID,
		chain.Do("add_units", func(ctx context.Context, tx *chain.Tx) error {
			p, err := tx.Properties().FindByIDForUpdate(ctx, propertyID)
			if err != nil {
				return err
			}
			if !p.BelongsTo(orgID) {
				return shared.NewNotFoundError("property")
			}
			if p.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "property is archived")
			}
			existing, err := tx.Units().FindByProperty(ctx, propertyID)
			if err != nil {
				return err
			}
			live := 0
			for _, u := range existing {
				if !u.IsArchived() {
					live++
				}
			}
			if live+req.Count > property.MaxUnitsPerProperty {
				return shared.NewValidationError("count", "property cannot have more than 1000 units")
			}
			units, err := p.MaterializeUnits(req.Count, len(existing), req.RentAmount)
			if err != nil {
				return err
			}
			if err := tx.Units().Create(ctx, units...); err != nil {
				return err
			}
			return tx.EmitEvents(ctx, property.NewUnitsAddedEvent(p, units))
		}),
		chain.RecomputePropertyAggregates(propertyID),
	)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, orgID, propertyID)
}

// Archive retires a property and cascades to its units. Live tenants block archival.
func (s *PropertyService) Archive(ctx context.Context, orgID, actorID, propertyID uuid.UUID) (*PropertyResponse, error) {
	err := s.runner.Run(ctx, property.EventTypePropertyArchived, actorID,
		chain.Do("archive_property", func(ctx context.Context, tx *chain.Tx) error {
			p, err := tx.Properties().FindByIDForUpdate(ctx, propertyID)
			if err != nil {
				return err
			}
			if !p.BelongsTo(orgID) {
				return shared.NewNotFoundError("property")
			}
			liveTenants, err := tx.Tenants().CountLiveByProperty(ctx, propertyID)
			if err != nil {
				return err
			}
			if err := p.Archive(liveTenants); err != nil {
				return err
			}

			units, err := tx.Units().FindByProperty(ctx, propertyID)
			if err != nil {
				return err
			}
			var records []*history.UnitHistory
			for i := range units {
				u := &units[i]
				if u.IsArchived() {
					continue
				}
				before := u.Snapshot()
				if err := u.Archive(); err != nil {
					return err
				}
				if err := tx.Units().SaveWithLock(ctx, u); err != nil {
					return err
				}
				records = append(records, history.NewUnitHistory(u, history.UnitActionArchived, before, nil, "property archived", tx.Now))
			}
			if err := tx.Record(ctx, records, nil); err != nil {
				return err
			}
			if err := tx.Properties().Save(ctx, p); err != nil {
				return err
			}
			return tx.Emit(ctx, p)
		}),
		chain.RecomputePropertyAggregates(propertyID),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("property archived",
		zap.String("property_id", propertyID.String()),
		zap.String("org_id", orgID.String()),
	)
	p, err := s.properties.FindByIDForOrg(ctx, orgID, propertyID)
	if err != nil {
		return nil, err
	}
	response := ToPropertyResponse(p)
	return &response, nil
}
