package property

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/property"
	"github.com/propcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpenseService books and voids property expenses. Both keep the property's
// cash flow in step within the same transaction.
type ExpenseService struct {
	runner   *chain.Runner
	expenses property.ExpenseRepository
	logger   *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(runner *chain.Runner, expenses property.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		runner:   runner,
		expenses: expenses,
		logger:   logger,
	}
}

// Record books an expense against a property and, optionally, one of its units
func (s *ExpenseService) Record(ctx context.Context, orgID, actorID uuid.UUID, req RecordExpenseRequest) (*ExpenseResponse, error) {
	var incurredOn time.Time
	if req.IncurredOn != nil {
		incurredOn = *req.IncurredOn
	}
	e, err := property.NewExpense(orgID, req.PropertyID, property.ExpenseCategory(req.Category), req.Amount, incurredOn, req.Description)
	if err != nil {
		return nil, err
	}
	e.UnitID = req.UnitID
	e.SetCreatedBy(actorID)

	err = s.runner.Run(ctx, property.EventTypeExpenseRecorded, actorID,
		chain.Do("persist_expense", func(ctx context.Context, tx *chain.Tx) error {
			p, err := tx.Properties().FindByIDForOrg(ctx, orgID, req.PropertyID)
			if err != nil {
				return err
			}
			if p.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "property is archived").WithField("property_id")
			}
			if req.UnitID != nil {
				u, err := tx.Units().FindByIDForOrg(ctx, orgID, *req.UnitID)
				if err != nil {
					return err
				}
				if u.PropertyID != p.ID {
					return shared.NewValidationError("unit_id", "unit does not belong to the property")
				}
			}
			if err := tx.Expenses().Save(ctx, e); err != nil {
				return err
			}
			return tx.Emit(ctx, e)
		}),
		chain.RecomputePropertyAggregates(req.PropertyID),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("expense recorded",
		zap.String("expense_id", e.ID.String()),
		zap.String("property_id", e.PropertyID.String()),
		zap.String("amount", e.Amount.StringFixed(2)),
	)
	response := ToExpenseResponse(e)
	return &response, nil
}

// Void cancels an expense; it stops counting towards cash flow
func (s *ExpenseService) Void(ctx context.Context, orgID, actorID, expenseID uuid.UUID, req VoidExpenseRequest) (*ExpenseResponse, error) {
	var e *property.Expense
	err := s.runner.Run(ctx, property.EventTypeExpenseVoided, actorID,
		chain.Do("void_expense", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			e, err = tx.Expenses().FindByIDForOrg(ctx, orgID, expenseID)
			if err != nil {
				return err
			}
			if err := e.Void(req.Reason); err != nil {
				return err
			}
			if err := tx.Expenses().Save(ctx, e); err != nil {
				return err
			}
			if err := tx.Emit(ctx, e); err != nil {
				return err
			}
			return chain.RecomputeProperty(ctx, tx, e.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(e)
	return &response, nil
}

// GetByID returns an expense
func (s *ExpenseService) GetByID(ctx context.Context, orgID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.expenses.FindByIDForOrg(ctx, orgID, expenseID)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(e)
	return &response, nil
}
