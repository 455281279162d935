package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate types
const (
	AggregateTypePayment = "Payment"
	AggregateTypeBatch   = "BulkPaymentBatch"
)

// Event type constants
const (
	EventTypePaymentRecorded      = "payment.recorded"
	EventTypePaymentStatusChanged = "payment.status_changed"
	EventTypeBatchCompleted       = "payment_batch.completed"
)

// PaymentRecordedEvent is raised when a payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	Amount      decimal.Decimal `json:"amount"`
	TotalFees   decimal.Decimal `json:"total_fees"`
	Status      PaymentStatus   `json:"status"`
	PaymentDate time.Time       `json:"payment_date"`
	RentMonth   RentMonth       `json:"rent_month"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.OrgID),
		PaymentID:       p.ID,
		TenantID:        p.TenantID,
		PropertyID:      p.PropertyID,
		Amount:          p.Amount,
		TotalFees:       p.Fees.TotalFees,
		Status:          p.Status,
		PaymentDate:     p.PaymentDate,
		RentMonth:       p.RentMonth,
	}
}

// PaymentStatusChangedEvent is raised when a payment status is corrected
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID     `json:"payment_id"`
	TenantID   uuid.UUID     `json:"tenant_id"`
	PropertyID uuid.UUID     `json:"property_id"`
	OldStatus  PaymentStatus `json:"old_status"`
	NewStatus  PaymentStatus `json:"new_status"`
	RentMonth  RentMonth     `json:"rent_month"`
	Reason     string        `json:"reason,omitempty"`
}

// NewPaymentStatusChangedEvent creates a new PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(p *Payment, old PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, AggregateTypePayment, p.ID, p.OrgID),
		PaymentID:       p.ID,
		TenantID:        p.TenantID,
		PropertyID:      p.PropertyID,
		OldStatus:       old,
		NewStatus:       p.Status,
		RentMonth:       p.RentMonth,
		Reason:          p.StatusReason,
	}
}

// BatchCompletedEvent is raised when a bulk batch finished processing
type BatchCompletedEvent struct {
	shared.BaseDomainEvent
	BatchID            uuid.UUID    `json:"batch_id"`
	Status             BatchStatus  `json:"status"`
	TotalPayments      int          `json:"total_payments"`
	SuccessfulPayments int          `json:"successful_payments"`
	FailedPayments     int          `json:"failed_payments"`
	Summary            BatchSummary `json:"summary"`
}

// NewBatchCompletedEvent creates a new BatchCompletedEvent
func NewBatchCompletedEvent(b *BulkPaymentBatch) *BatchCompletedEvent {
	return &BatchCompletedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeBatchCompleted, AggregateTypeBatch, b.ID, b.OrgID),
		BatchID:            b.ID,
		Status:             b.Status,
		TotalPayments:      b.TotalPayments,
		SuccessfulPayments: b.SuccessfulPayments,
		FailedPayments:     b.FailedPayments,
		Summary:            b.Summary,
	}
}
