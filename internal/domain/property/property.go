package property

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxUnitsPerProperty bounds unit materialization per request
const MaxUnitsPerProperty = 1000

// Address is the postal address of a property
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Validate checks the required address parts
func (a Address) Validate() error {
	if strings.TrimSpace(a.Line1) == "" {
		return shared.NewValidationError("address.line1", "address line cannot be empty")
	}
	if strings.TrimSpace(a.City) == "" {
		return shared.NewValidationError("address.city", "city cannot be empty")
	}
	return nil
}

// Value implements driver.Valuer for JSONB storage
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB retrieval
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Address: unsupported type")
	}
	return json.Unmarshal(bytes, a)
}

// CashFlow holds the derived financial totals of a property
type CashFlow struct {
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetIncome    decimal.Decimal `json:"net_income"`
	PaymentCount int64           `json:"payment_count"`
	ExpenseCount int64           `json:"expense_count"`
	CalculatedAt *time.Time      `json:"calculated_at,omitempty"`
}

// NewCashFlow builds a cash flow whose NetIncome is always Income - Expenses
func NewCashFlow(income decimal.Decimal, paymentCount int64, expenses decimal.Decimal, expenseCount int64, at time.Time) CashFlow {
	return CashFlow{
		Income:       income,
		Expenses:     expenses,
		NetIncome:    income.Sub(expenses),
		PaymentCount: paymentCount,
		ExpenseCount: expenseCount,
		CalculatedAt: &at,
	}
}

// OccupancyRate returns round(occupied/total*100), 0 when there are no units
func OccupancyRate(occupied, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(occupied) / float64(total) * 100))
}

// Property is a managed building or complex and owns its derived aggregates
type Property struct {
	shared.OrgAggregateRoot
	Name          string
	Address       Address
	OwnerID       uuid.UUID
	NumberOfUnits int
	OccupiedUnits int
	OccupancyRate int
	CashFlow      CashFlow
	Lifecycle     shared.Lifecycle
	ArchivedAt    *time.Time
}

// NewProperty creates a new live property. Units are materialized separately via
// MaterializeUnits so that both can be written in the same unit of work.
func NewProperty(orgID, ownerID uuid.UUID, name string, address Address) (*Property, error) {
	name = strings.TrimSpace(name)
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id", "organization is required")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "property name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("name", "property name cannot exceed 200 characters")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	p := &Property{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Address:          address,
		OwnerID:          ownerID,
		CashFlow:         NewCashFlow(decimal.Zero, 0, decimal.Zero, 0, shared.Now()),
		Lifecycle:        shared.LifecycleLive,
	}
	p.SetCreatedBy(ownerID)
	return p, nil
}

// MaterializeUnits creates count new units numbered after the existing ones
func (p *Property) MaterializeUnits(count, existing int, rent decimal.Decimal) ([]*Unit, error) {
	if count < 0 {
		return nil, shared.NewValidationError("number_of_units", "unit count cannot be negative")
	}
	if existing+count > MaxUnitsPerProperty {
		return nil, shared.NewValidationError("number_of_units", "property cannot have more than 1000 units")
	}
	units := make([]*Unit, 0, count)
	for i := 1; i <= count; i++ {
		u, err := NewUnit(p.OrgID, p.ID, UnitNumberFor(existing+i), rent)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// IsArchived reports whether the property has been archived
func (p *Property) IsArchived() bool {
	return p.Lifecycle == shared.LifecycleArchived
}

// ApplyOccupancy stores freshly counted unit totals
func (p *Property) ApplyOccupancy(total, occupied int) {
	p.NumberOfUnits = total
	p.OccupiedUnits = occupied
	p.OccupancyRate = OccupancyRate(occupied, total)
	p.Touch()
}

// ApplyCashFlow stores freshly aggregated cash flow totals
func (p *Property) ApplyCashFlow(cf CashFlow) {
	p.CashFlow = cf
	p.Touch()
}

// Archive retires the property. Live tenants block archival.
func (p *Property) Archive(liveTenants int64) error {
	if p.IsArchived() {
		return shared.NewDomainError(shared.CodeInvalidState, "property is already archived")
	}
	if liveTenants > 0 {
		return shared.NewActiveTenantsExistError(liveTenants)
	}
	now := shared.Now()
	p.Lifecycle = shared.LifecycleArchived
	p.ArchivedAt = &now
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPropertyArchivedEvent(p))
	return nil
}

// Rename changes the display name
func (p *Property) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("name", "property name cannot be empty")
	}
	p.Name = name
	p.Touch()
	p.IncrementVersion()
	return nil
}
