package tenancy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/history"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// TenantService manages the tenant lifecycle. Every operation that touches a unit
// keeps the unit, the tenant, the history log and the property aggregates
// consistent inside a single chain transaction.
type TenantService struct {
	runner  *chain.Runner
	tenants tenancy.TenantRepository
	history history.Repository
	logger  *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(
	runner *chain.Runner,
	tenants tenancy.TenantRepository,
	historyRepo history.Repository,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		runner:  runner,
		tenants: tenants,
		history: historyRepo,
		logger:  logger,
	}
}

// Create places a new tenant into a vacant unit
func (s *TenantService) Create(ctx context.Context, orgID, actorID uuid.UUID, req CreateTenantRequest) (*TenantResponse, error) {
	var t *tenancy.Tenant
	err := s.runner.Run(ctx, tenancy.EventTypeTenantAdded, actorID,
		chain.Do("occupy_unit", func(ctx context.Context, tx *chain.Tx) error {
			p, err := tx.Properties().FindByIDForOrg(ctx, orgID, req.PropertyID)
			if err != nil {
				return err
			}
			if p.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "property is archived").WithField("property_id")
			}
			u, err := tx.Units().FindByIDForOrg(ctx, orgID, req.UnitID)
			if err != nil {
				return err
			}
			if err := checkVacant(u, p.ID); err != nil {
				return err
			}
			if err := ensureEmailFree(ctx, tx, orgID, req.Email); err != nil {
				return err
			}

			rent := req.RentAmount
			if rent.IsZero() {
				rent = u.RentAmount
			}
			var leaseStart time.Time
			if req.LeaseStartDate != nil {
				leaseStart = *req.LeaseStartDate
			}
			t, err = tenancy.NewTenant(orgID, tenancy.NewTenantInput{
				PropertyID:          p.ID,
				UnitID:              u.ID,
				UnitNumber:          u.UnitNumber,
				Name:                req.Name,
				Email:               req.Email,
				Phone:               req.Phone,
				RentAmount:          rent,
				LeaseStartDate:      leaseStart,
				LeaseEndDate:        req.LeaseEndDate,
				LeaseDurationMonths: req.LeaseDurationMonths,
			})
			if err != nil {
				return err
			}
			if req.DiscountAmount.IsPositive() {
				if err := t.ApplyDiscount(req.DiscountAmount, req.DiscountExpiresAt); err != nil {
					return err
				}
			}
			t.SetCreatedBy(actorID)
			if err := tx.Tenants().Create(ctx, t); err != nil {
				return err
			}

			moveIn, err := chain.OccupyUnit(ctx, tx, u, t.ID, rent, "tenant added")
			if err != nil {
				return err
			}
			movement := history.NewTenantMovement(history.MovementInput{
				OrgID:         orgID,
				TenantID:      t.ID,
				Kind:          history.MovementKindMoveIn,
				ToPropertyID:  &p.ID,
				ToUnitID:      &u.ID,
				NewRent:       rent,
				Reason:        "tenant added",
				EffectiveDate: t.LeaseStartDate,
			})
			if err := tx.Record(ctx, chain.UnitRecords(moveIn), []*history.TenantMovement{movement}); err != nil {
				return err
			}
			return tx.Emit(ctx, t)
		}),
		chain.RecomputePropertyAggregates(req.PropertyID),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant added",
		zap.String("tenant_id", t.ID.String()),
		zap.String("property_id", t.PropertyID.String()),
		zap.String("unit_id", req.UnitID.String()),
	)
	response := ToTenantResponse(t, shared.Now())
	return &response, nil
}

// GetByID returns a tenant
func (s *TenantService) GetByID(ctx context.Context, orgID, tenantID uuid.UUID) (*TenantResponse, error) {
	t, err := s.tenants.FindByIDForOrg(ctx, orgID, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToTenantResponse(t, shared.Now())
	return &response, nil
}

// List returns the tenants of an organization
func (s *TenantService) List(ctx context.Context, orgID uuid.UUID, req ListTenantsRequest) (shared.Paginated[TenantResponse], error) {
	filter := tenancy.TenantFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.SortBy,
			OrderDir: req.SortOrder,
		}.Normalize(),
		PropertyID:      req.PropertyID,
		IncludeArchived: req.IncludeArchived,
	}
	for _, st := range req.Statuses {
		filter.Statuses = append(filter.Statuses, tenancy.TenantStatus(st))
	}
	tenants, total, err := s.tenants.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return shared.Paginated[TenantResponse]{}, err
	}
	now := shared.Now()
	items := make([]TenantResponse, len(tenants))
	for i := range tenants {
		items[i] = ToTenantResponse(&tenants[i], now)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Transfer moves a tenant to another unit, possibly in another property of the
// same organization. The tenant takes the destination's rent unless it is zero.
func (s *TenantService) Transfer(ctx context.Context, orgID, actorID, tenantID uuid.UUID, req TransferTenantRequest) (*TenantMovementResponse, error) {
	var (
		t        *tenancy.Tenant
		movement *history.TenantMovement
	)
	err := s.runner.Run(ctx, tenancy.EventTypeTenantTransferred, actorID,
		chain.Do("transfer_tenant", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			t, err = tx.Tenants().FindByIDForOrg(ctx, orgID, tenantID)
			if err != nil {
				return err
			}
			if t.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "tenant is archived")
			}
			if t.Status == tenancy.TenantStatusTerminated {
				return shared.NewDomainError(shared.CodeInvalidTransition, "terminated tenants cannot be transferred")
			}
			if req.FromUnitID != nil && (t.UnitID == nil || *t.UnitID != *req.FromUnitID) {
				return shared.NewDomainError(shared.CodeConsistency, "tenant does not hold the source unit").WithField("from_unit_id")
			}
			if t.UnitID != nil && *t.UnitID == req.UnitID {
				return shared.NewValidationError("unit_id", "tenant already occupies this unit")
			}
			effective, err := transferDate(req.TransferDate, t.MoveInDate, tx.Now)
			if err != nil {
				return err
			}

			dest, err := tx.Properties().FindByIDForOrg(ctx, orgID, req.PropertyID)
			if err != nil {
				return err
			}
			if dest.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "property is archived").WithField("property_id")
			}
			destUnit, err := tx.Units().FindByIDForOrg(ctx, orgID, req.UnitID)
			if err != nil {
				return err
			}
			if err := checkVacant(destUnit, dest.ID); err != nil {
				return err
			}

			fromProperty := t.PropertyID
			var fromUnit uuid.UUID
			var moveOut *history.UnitHistory
			if t.UnitID != nil {
				fromUnit = *t.UnitID
				if _, moveOut, err = chain.ReleaseUnitAt(ctx, tx, fromUnit, t.ID, property.UnitStatusAvailable, transferReason(req.Reason), effective); err != nil {
					return err
				}
			}

			oldRent := t.RentAmount
			newRent := destUnit.RentAmount
			if newRent.IsZero() {
				newRent = oldRent
			}
			moveIn, err := chain.OccupyUnitAt(ctx, tx, destUnit, t.ID, newRent, transferReason(req.Reason), effective)
			if err != nil {
				return err
			}

			t.MoveTo(dest.ID, destUnit.ID, destUnit.UnitNumber, newRent, effective)
			if !t.Status.HoldsUnit() {
				if _, err := t.ChangeStatus(tenancy.TenantStatusPending, "transferred into a unit"); err != nil {
					return err
				}
			}
			in := history.MovementInput{
				OrgID:          orgID,
				TenantID:       t.ID,
				Kind:           history.MovementKindTransfer,
				FromPropertyID: &fromProperty,
				ToPropertyID:   &dest.ID,
				ToUnitID:       &destUnit.ID,
				OldRent:        oldRent,
				NewRent:        newRent,
				Reason:         req.Reason,
				EffectiveDate:  effective,
			}
			if fromUnit != uuid.Nil {
				in.FromUnitID = &fromUnit
			}
			movement = history.NewTenantMovement(in)
			t.AddDomainEvent(tenancy.NewTenantTransferredEvent(t, movement.ID, fromProperty, fromUnit, oldRent, req.Reason))

			if err := tx.Tenants().SaveWithLock(ctx, t); err != nil {
				return err
			}
			if err := tx.Record(ctx, chain.UnitRecords(moveOut, moveIn), []*history.TenantMovement{movement}); err != nil {
				return err
			}
			if err := tx.Emit(ctx, t); err != nil {
				return err
			}
			if err := chain.RecomputeProperty(ctx, tx, fromProperty); err != nil {
				return err
			}
			if dest.ID != fromProperty {
				return chain.RecomputeProperty(ctx, tx, dest.ID)
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant transferred",
		zap.String("tenant_id", t.ID.String()),
		zap.String("to_unit_id", req.UnitID.String()),
		zap.String("rent_change", movement.RentChange.ChangeAmount.StringFixed(2)),
	)
	return &TenantMovementResponse{
		Tenant:   ToTenantResponse(t, shared.Now()),
		Movement: ToMovementResponse(movement),
	}, nil
}

// ChangeStatus applies a manual status change. Moving to a status that does not
// hold a unit releases the unit and cancels the tenant's reminders.
func (s *TenantService) ChangeStatus(ctx context.Context, orgID, actorID, tenantID uuid.UUID, req ChangeTenantStatusRequest) (*TenantResponse, error) {
	var t *tenancy.Tenant
	err := s.runner.Run(ctx, tenancy.EventTypeTenantStatusChanged, actorID,
		chain.Do("change_tenant_status", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			t, err = tx.Tenants().FindByIDForOrg(ctx, orgID, tenantID)
			if err != nil {
				return err
			}
			releases, err := t.ChangeStatus(tenancy.TenantStatus(req.Status), req.Reason)
			if err != nil {
				return err
			}
			if releases && t.UnitID != nil {
				if err := s.release(ctx, tx, t, statusReason(req)); err != nil {
					return err
				}
				t.VacateUnit(tx.Now)
			}
			if err := tx.Tenants().SaveWithLock(ctx, t); err != nil {
				return err
			}
			if err := tx.Emit(ctx, t); err != nil {
				return err
			}
			return chain.RecomputeProperty(ctx, tx, t.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToTenantResponse(t, shared.Now())
	return &response, nil
}

// ChangeRent sets a tenant's base rent and, optionally, its discount and the
// asking rent of the unit it holds
func (s *TenantService) ChangeRent(ctx context.Context, orgID, actorID, tenantID uuid.UUID, req ChangeTenantRentRequest) (*TenantMovementResponse, error) {
	var (
		t        *tenancy.Tenant
		movement *history.TenantMovement
	)
	err := s.runner.Run(ctx, tenancy.EventTypeTenantRentChanged, actorID,
		chain.Do("change_tenant_rent", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			t, err = tx.Tenants().FindByIDForOrg(ctx, orgID, tenantID)
			if err != nil {
				return err
			}
			oldRent, err := t.ChangeRent(req.RentAmount)
			if err != nil {
				return err
			}
			if req.DiscountAmount != nil {
				if err := t.ApplyDiscount(*req.DiscountAmount, req.DiscountExpiresAt); err != nil {
					return err
				}
			}

			movement = history.NewTenantMovement(history.MovementInput{
				OrgID:         orgID,
				TenantID:      t.ID,
				Kind:          history.MovementKindRentChange,
				ToPropertyID:  &t.PropertyID,
				ToUnitID:      t.UnitID,
				OldRent:       oldRent,
				NewRent:       t.RentAmount,
				Reason:        req.Reason,
				EffectiveDate: tx.Now,
			})
			t.AddDomainEvent(tenancy.NewTenantRentChangedEvent(t, movement.ID, oldRent))
			if err := tx.Tenants().SaveWithLock(ctx, t); err != nil {
				return err
			}

			var records []*history.UnitHistory
			if req.UpdateUnitRent && t.HoldsUnit() {
				u, err := tx.Units().FindByID(ctx, *t.UnitID)
				if err != nil {
					return err
				}
				before := u.Snapshot()
				oldUnitRent := u.RentAmount
				if err := u.ChangeRent(t.RentAmount, tx.Now, req.Reason); err != nil {
					return err
				}
				if !u.RentAmount.Equal(oldUnitRent) {
					if err := tx.Units().SaveWithLock(ctx, u); err != nil {
						return err
					}
					records = append(records, history.NewUnitHistory(u, history.UnitActionRentChanged, before, &t.ID, req.Reason, tx.Now))
					if err := tx.EmitEvents(ctx, property.NewUnitRentChangedEvent(u, oldUnitRent)); err != nil {
						return err
					}
				}
			}
			if err := tx.Record(ctx, records, []*history.TenantMovement{movement}); err != nil {
				return err
			}
			return tx.Emit(ctx, t)
		}),
	)
	if err != nil {
		return nil, err
	}
	return &TenantMovementResponse{
		Tenant:   ToTenantResponse(t, shared.Now()),
		Movement: ToMovementResponse(movement),
	}, nil
}

// Archive soft-removes a tenant and frees its unit. Tenants with outstanding
// (Pending or Partial) payments cannot be archived.
func (s *TenantService) Archive(ctx context.Context, orgID, actorID, tenantID uuid.UUID) (*TenantResponse, error) {
	var t *tenancy.Tenant
	err := s.runner.Run(ctx, tenancy.EventTypeTenantArchived, actorID,
		chain.Do("archive_tenant", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			t, err = tx.Tenants().FindByIDForOrg(ctx, orgID, tenantID)
			if err != nil {
				return err
			}
			if t.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "tenant is already archived")
			}
			outstanding, err := tx.Payments().CountOutstanding(ctx, t.ID)
			if err != nil {
				return err
			}
			if outstanding > 0 {
				return shared.NewActivePaymentsExistError(outstanding)
			}
			if t.UnitID != nil {
				if err := s.release(ctx, tx, t, "tenant archived"); err != nil {
					return err
				}
			} else if _, err := tx.Reminders().CancelAllForTenant(ctx, t.ID, "tenant archived", tx.Now); err != nil {
				return err
			}
			if err := t.Archive(tx.Now); err != nil {
				return err
			}
			if err := tx.Tenants().SaveWithLock(ctx, t); err != nil {
				return err
			}
			if err := tx.Emit(ctx, t); err != nil {
				return err
			}
			return chain.RecomputeProperty(ctx, tx, t.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant archived",
		zap.String("tenant_id", tenantID.String()),
		zap.String("org_id", orgID.String()),
	)
	response := ToTenantResponse(t, shared.Now())
	return &response, nil
}

// Movements returns a tenant's movement log, newest first
func (s *TenantService) Movements(ctx context.Context, orgID, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[MovementResponse], error) {
	filter = filter.Normalize()
	if _, err := s.tenants.FindByIDForOrg(ctx, orgID, tenantID); err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	movements, total, err := s.history.ListMovements(ctx, orgID, tenantID, filter)
	if err != nil {
		return shared.Paginated[MovementResponse]{}, err
	}
	items := make([]MovementResponse, len(movements))
	for i := range movements {
		items[i] = ToMovementResponse(&movements[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// release frees the tenant's unit, records a MOVE_OUT movement and cancels the
// tenant's reminders. The caller clears the tenant's unit reference.
func (s *TenantService) release(ctx context.Context, tx *chain.Tx, t *tenancy.Tenant, reason string) error {
	unitID := *t.UnitID
	_, moveOut, err := chain.ReleaseUnit(ctx, tx, unitID, t.ID, property.UnitStatusAvailable, reason)
	if err != nil {
		return err
	}
	movement := history.NewTenantMovement(history.MovementInput{
		OrgID:          t.OrgID,
		TenantID:       t.ID,
		Kind:           history.MovementKindMoveOut,
		FromPropertyID: &t.PropertyID,
		FromUnitID:     &unitID,
		OldRent:        t.RentAmount,
		NewRent:        t.RentAmount,
		Reason:         reason,
		EffectiveDate:  tx.Now,
	})
	if err := tx.Record(ctx, chain.UnitRecords(moveOut), []*history.TenantMovement{movement}); err != nil {
		return err
	}
	_, err = tx.Reminders().CancelAllForTenant(ctx, t.ID, reason, tx.Now)
	return err
}

// checkVacant verifies that u belongs to propertyID and can take a tenant
func checkVacant(u *property.Unit, propertyID uuid.UUID) error {
	if u.PropertyID != propertyID {
		return shared.NewValidationError("unit_id", "unit does not belong to the property")
	}
	if u.IsArchived() || u.IsOccupied() || u.TenantID != nil {
		return shared.NewDomainError(shared.CodeUnitUnavailable, "unit is not available").WithField("unit_id")
	}
	return nil
}

// ensureEmailFree rejects an email already used by a live tenant of the organization
func ensureEmailFree(ctx context.Context, tx *chain.Tx, orgID uuid.UUID, email string) error {
	existing, err := tx.Tenants().FindLiveByEmail(ctx, orgID, tenancy.NormalizeEmail(email))
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing != nil {
		return shared.NewDomainError(shared.CodeDuplicateTenant, "a live tenant with this email already exists").WithField("email")
	}
	return nil
}

// transferDate resolves the effective date of a transfer. It defaults to now and
// must fall between the tenant's current move-in and now.
func transferDate(requested, movedIn *time.Time, now time.Time) (time.Time, error) {
	if requested == nil || requested.IsZero() {
		return now, nil
	}
	at := requested.UTC()
	if at.After(now) {
		return time.Time{}, shared.NewValidationError("transfer_date", "transfer date cannot be in the future")
	}
	if movedIn != nil && at.Before(*movedIn) {
		return time.Time{}, shared.NewValidationError("transfer_date", "transfer date cannot precede the current move-in")
	}
	return at, nil
}

func transferReason(reason string) string {
	if reason == "" {
		return "tenant transferred"
	}
	return reason
}

func statusReason(req ChangeTenantStatusRequest) string {
	if req.Reason != "" {
		return req.Reason
	}
	return "tenant status changed to " + req.Status
}
