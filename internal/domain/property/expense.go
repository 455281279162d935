package property

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the status of an expense
type ExpenseStatus string

const (
	ExpenseStatusActive ExpenseStatus = "ACTIVE"
	ExpenseStatusVoid   ExpenseStatus = "VOID"
)

// ExpenseCategory classifies property expenses
type ExpenseCategory string

const (
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategoryInsurance   ExpenseCategory = "INSURANCE"
	ExpenseCategoryTax         ExpenseCategory = "TAX"
	ExpenseCategoryManagement  ExpenseCategory = "MANAGEMENT"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// IsValid checks if the category is valid
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryMaintenance, ExpenseCategoryUtilities, ExpenseCategoryInsurance,
		ExpenseCategoryTax, ExpenseCategoryManagement, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is money spent on a property. Only ACTIVE expenses count towards cash flow.
type Expense struct {
	shared.OrgAggregateRoot
	PropertyID           uuid.UUID
	UnitID               *uuid.UUID
	MaintenanceRequestID *uuid.UUID
	Category             ExpenseCategory
	Amount               decimal.Decimal
	IncurredOn           time.Time
	Description          string
	Status               ExpenseStatus
	VoidReason           string
}

// NewExpense creates an active expense
func NewExpense(orgID, propertyID uuid.UUID, category ExpenseCategory, amount decimal.Decimal, incurredOn time.Time, description string) (*Expense, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("property_id", "property is required")
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("category", "invalid expense category")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "expense amount must be positive")
	}
	if incurredOn.IsZero() {
		incurredOn = shared.Now()
	}
	if incurredOn.After(shared.Now()) {
		return nil, shared.NewValidationError("incurred_on", "expense date cannot be in the future")
	}
	e := &Expense{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PropertyID:       propertyID,
		Category:         category,
		Amount:           amount,
		IncurredOn:       incurredOn.UTC(),
		Description:      strings.TrimSpace(description),
		Status:           ExpenseStatusActive,
	}
	e.AddDomainEvent(NewExpenseRecordedEvent(e))
	return e, nil
}

// Void cancels the expense so it no longer counts towards cash flow
func (e *Expense) Void(reason string) error {
	if e.Status == ExpenseStatusVoid {
		return shared.NewDomainError(shared.CodeInvalidState, "expense is already void")
	}
	e.Status = ExpenseStatusVoid
	e.VoidReason = strings.TrimSpace(reason)
	e.Touch()
	e.IncrementVersion()
	e.AddDomainEvent(NewExpenseVoidedEvent(e))
	return nil
}
