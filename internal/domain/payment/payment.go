package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a rent payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
)

// IsValid checks if the status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusCancelled, PaymentStatusRefunded, PaymentStatusPartial:
		return true
	}
	return false
}

// IsOutstanding reports whether money is still expected for the payment
func (s PaymentStatus) IsOutstanding() bool {
	return s == PaymentStatusPending || s == PaymentStatusPartial
}

// OutstandingStatuses lists the non-terminal statuses
func OutstandingStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusPending, PaymentStatusPartial}
}

// statusCorrections whitelists status changes after a payment was recorded
var statusCorrections = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusPartial, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusPartial: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusFailed:  {PaymentStatusPending},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodCheck, PaymentMethodMobileMoney, PaymentMethodOther:
		return true
	}
	return false
}

// RentMonth is the YYYY-MM period a payment settles
type RentMonth string

// ParseRentMonth validates a YYYY-MM string
func ParseRentMonth(s string) (RentMonth, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", shared.NewValidationError("rent_month", "rent month must be formatted as YYYY-MM")
	}
	return RentMonth(s), nil
}

// RentMonthOf returns the rent month containing t
func RentMonthOf(t time.Time) RentMonth {
	return RentMonth(t.UTC().Format("2006-01"))
}

// Fees are the charges added on top of rent
type Fees struct {
	LateFee       decimal.Decimal `json:"late_fee"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	OtherFees     decimal.Decimal `json:"other_fees"`
	TotalFees     decimal.Decimal `json:"total_fees"`
}

// NewFees validates the fee components and computes their total
func NewFees(late, processing, other decimal.Decimal) (Fees, error) {
	components := []struct {
		field string
		value decimal.Decimal
	}{
		{"fees.late_fee", late},
		{"fees.processing_fee", processing},
		{"fees.other_fees", other},
	}
	for _, c := range components {
		if c.value.IsNegative() {
			return Fees{}, shared.NewValidationError(c.field, "fees cannot be negative")
		}
	}
	return Fees{
		LateFee:       late,
		ProcessingFee: processing,
		OtherFees:     other,
		TotalFees:     late.Add(processing).Add(other),
	}, nil
}

// Value implements driver.Valuer for JSONB storage
func (f Fees) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for JSONB storage
func (f *Fees) Scan(value any) error {
	if value == nil {
		*f = Fees{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("fees: unsupported scan type")
	}
	return json.Unmarshal(b, f)
}

// DiscountType is how a discount value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// Discount reduces the gross payment amount
type Discount struct {
	Type   DiscountType    `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// resolve validates the discount against gross and fills Amount
func (d *Discount) resolve(gross decimal.Decimal) error {
	if d.Value.IsNegative() {
		return shared.NewValidationError("discount.value", "discount cannot be negative")
	}
	switch d.Type {
	case DiscountTypePercentage:
		if d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewValidationError("discount.value", "percentage discount must be between 0 and 100")
		}
		d.Amount = gross.Mul(d.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeFixed:
		if d.Value.GreaterThan(gross) {
			return shared.NewValidationError("discount.value", "fixed discount cannot exceed the payment amount")
		}
		d.Amount = d.Value
	default:
		return shared.NewValidationError("discount.type", fmt.Sprintf("invalid discount type: %s", d.Type))
	}
	return nil
}

// Payment is a rent payment by a tenant for one rent month
type Payment struct {
	shared.OrgAggregateRoot
	TenantID       uuid.UUID
	PropertyID     uuid.UUID
	UnitID         *uuid.UUID
	BatchID        *uuid.UUID
	Amount         decimal.Decimal
	OriginalAmount decimal.Decimal
	Discount       *Discount
	Fees           Fees
	Status         PaymentStatus
	Method         PaymentMethod
	PaymentDate    time.Time
	RentMonth      RentMonth
	Reference      string
	Notes          string
	StatusReason   string
}

// NewPaymentInput carries the fields of a payment to record
type NewPaymentInput struct {
	TenantID    uuid.UUID
	PropertyID  uuid.UUID
	UnitID      *uuid.UUID
	BatchID     *uuid.UUID
	Amount      decimal.Decimal
	Discount    *Discount
	Fees        Fees
	Status      PaymentStatus
	Method      PaymentMethod
	PaymentDate time.Time
	RentMonth   RentMonth
	Reference   string
	Notes       string
}

// NewPayment validates and creates a payment as of now. Amount is the gross amount;
// when a discount is given it is kept as OriginalAmount and Amount becomes the net.
func NewPayment(orgID uuid.UUID, in NewPaymentInput, now time.Time) (*Payment, error) {
	if in.TenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "tenant is required")
	}
	if in.PropertyID == uuid.Nil {
		return nil, shared.NewValidationError("property_id", "property is required")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "amount must be positive")
	}
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}
	paymentDate = paymentDate.UTC()
	if paymentDate.After(now) {
		return nil, shared.NewValidationError("payment_date", "payment date cannot be in the future")
	}
	rentMonth := in.RentMonth
	if rentMonth == "" {
		rentMonth = RentMonthOf(paymentDate)
	} else if _, err := ParseRentMonth(string(rentMonth)); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = PaymentStatusPaid
	}
	if status != PaymentStatusPaid && status != PaymentStatusPending && status != PaymentStatusPartial {
		return nil, shared.NewValidationError("status", fmt.Sprintf("a payment cannot be recorded as %s", status))
	}
	method := in.Method
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("payment_method", fmt.Sprintf("invalid payment method: %s", method))
	}
	fees, err := NewFees(in.Fees.LateFee, in.Fees.ProcessingFee, in.Fees.OtherFees)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		TenantID:         in.TenantID,
		PropertyID:       in.PropertyID,
		UnitID:           in.UnitID,
		BatchID:          in.BatchID,
		Amount:           in.Amount,
		OriginalAmount:   in.Amount,
		Fees:             fees,
		Status:           status,
		Method:           method,
		PaymentDate:      paymentDate,
		RentMonth:        rentMonth,
		Reference:        strings.TrimSpace(in.Reference),
		Notes:            in.Notes,
	}
	if in.Discount != nil {
		d := *in.Discount
		if err := d.resolve(in.Amount); err != nil {
			return nil, err
		}
		p.Discount = &d
		p.Amount = in.Amount.Sub(d.Amount)
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// IsPaid reports whether the payment settled its rent month
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// ChangeStatus applies a status correction
func (p *Payment) ChangeStatus(target PaymentStatus, reason string) error {
	if !target.IsValid() {
		return shared.NewValidationError("status", fmt.Sprintf("invalid payment status: %s", target))
	}
	allowed := false
	for _, s := range statusCorrections[p.Status] {
		if s == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("cannot change payment status from %s to %s", p.Status, target)).WithField("status")
	}
	old := p.Status
	p.Status = target
	p.StatusReason = reason
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentStatusChangedEvent(p, old))
	return nil
}
