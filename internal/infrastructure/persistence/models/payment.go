package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate root.
// uq_payments_tenant_month_paid allows a single PAID payment per tenant and rent month.
type PaymentModel struct {
	OrgAggregateModel
	TenantID       uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:uq_payments_tenant_month_paid,where:status = 'PAID'"`
	PropertyID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_payments_property_status,priority:1"`
	UnitID         *uuid.UUID            `gorm:"type:uuid"`
	BatchID        *uuid.UUID            `gorm:"type:uuid;index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	OriginalAmount decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Discount       *payment.Discount     `gorm:"type:jsonb;serializer:json"`
	Fees           payment.Fees          `gorm:"type:jsonb;not null"`
	TotalFees      decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Status         payment.PaymentStatus `gorm:"type:varchar(20);not null;index:idx_payments_property_status,priority:2"`
	Method         payment.PaymentMethod `gorm:"type:varchar(30);not null"`
	PaymentDate    time.Time             `gorm:"not null;index"`
	RentMonth      string                `gorm:"type:varchar(7);not null;uniqueIndex:uq_payments_tenant_month_paid"`
	Reference      string                `gorm:"type:varchar(100)"`
	Notes          string                `gorm:"type:text"`
	StatusReason   string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *payment.Payment {
	return &payment.Payment{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		TenantID:         m.TenantID,
		PropertyID:       m.PropertyID,
		UnitID:           m.UnitID,
		BatchID:          m.BatchID,
		Amount:           m.Amount,
		OriginalAmount:   m.OriginalAmount,
		Discount:         m.Discount,
		Fees:             m.Fees,
		Status:           m.Status,
		Method:           m.Method,
		PaymentDate:      m.PaymentDate,
		RentMonth:        payment.RentMonth(m.RentMonth),
		Reference:        m.Reference,
		Notes:            m.Notes,
		StatusReason:     m.StatusReason,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *payment.Payment) *PaymentModel {
	m := &PaymentModel{
		TenantID:       p.TenantID,
		PropertyID:     p.PropertyID,
		UnitID:         p.UnitID,
		BatchID:        p.BatchID,
		Amount:         p.Amount,
		OriginalAmount: p.OriginalAmount,
		Discount:       p.Discount,
		Fees:           p.Fees,
		TotalFees:      p.Fees.TotalFees,
		Status:         p.Status,
		Method:         p.Method,
		PaymentDate:    p.PaymentDate,
		RentMonth:      string(p.RentMonth),
		Reference:      p.Reference,
		Notes:          p.Notes,
		StatusReason:   p.StatusReason,
	}
	m.FromDomainOrgAggregateRoot(p.OrgAggregateRoot)
	return m
}

// ReminderModel is the persistence model for rent reminders
type ReminderModel struct {
	OrgAggregateModel
	TenantID        uuid.UUID              `gorm:"type:uuid;not null;index:idx_reminders_tenant_status,priority:1"`
	PropertyID      uuid.UUID              `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	RentMonth       string                 `gorm:"type:varchar(7);not null"`
	NextRunDate     time.Time              `gorm:"not null;index:idx_reminders_status_next_run,priority:2"`
	Status          payment.ReminderStatus `gorm:"type:varchar(20);not null;index:idx_reminders_tenant_status,priority:2;index:idx_reminders_status_next_run,priority:1"`
	SentAt          *time.Time
	CancelledAt     *time.Time
	CancelledReason string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ReminderModel) TableName() string {
	return "rent_reminders"
}

// ToDomain converts the persistence model to a domain Reminder
func (m *ReminderModel) ToDomain() *payment.Reminder {
	return &payment.Reminder{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		TenantID:         m.TenantID,
		PropertyID:       m.PropertyID,
		Amount:           m.Amount,
		RentMonth:        payment.RentMonth(m.RentMonth),
		NextRunDate:      m.NextRunDate,
		Status:           m.Status,
		SentAt:           m.SentAt,
		CancelledAt:      m.CancelledAt,
		CancelledReason:  m.CancelledReason,
	}
}

// ReminderModelFromDomain creates a persistence model from a domain Reminder
func ReminderModelFromDomain(r *payment.Reminder) *ReminderModel {
	m := &ReminderModel{
		TenantID:        r.TenantID,
		PropertyID:      r.PropertyID,
		Amount:          r.Amount,
		RentMonth:       string(r.RentMonth),
		NextRunDate:     r.NextRunDate,
		Status:          r.Status,
		SentAt:          r.SentAt,
		CancelledAt:     r.CancelledAt,
		CancelledReason: r.CancelledReason,
	}
	m.FromDomainOrgAggregateRoot(r.OrgAggregateRoot)
	return m
}

// BulkPaymentBatchModel is the persistence model for bulk payment batches.
// Items are kept inline as JSONB in submission order.
type BulkPaymentBatchModel struct {
	OrgAggregateModel
	Name               string                           `gorm:"type:varchar(200)"`
	RentMonth          string                           `gorm:"type:varchar(7);not null"`
	PaymentDate        time.Time                        `gorm:"not null"`
	Method             payment.PaymentMethod            `gorm:"type:varchar(30);not null"`
	Items              payment.BatchItems               `gorm:"type:jsonb;not null"`
	Status             payment.BatchStatus              `gorm:"type:varchar(20);not null;index"`
	TotalPayments      int                              `gorm:"not null"`
	SuccessfulPayments int                              `gorm:"not null;default:0"`
	FailedPayments     int                              `gorm:"not null;default:0"`
	Summary            JSONColumn[payment.BatchSummary] `gorm:"type:jsonb;not null"`
	StartedAt          *time.Time
	CompletedAt        *time.Time
}

// TableName returns the table name for GORM
func (BulkPaymentBatchModel) TableName() string {
	return "bulk_payment_batches"
}

// ToDomain converts the persistence model to a domain BulkPaymentBatch
func (m *BulkPaymentBatchModel) ToDomain() *payment.BulkPaymentBatch {
	return &payment.BulkPaymentBatch{
		OrgAggregateRoot:   m.ToDomainOrgAggregateRoot(),
		Name:               m.Name,
		RentMonth:          payment.RentMonth(m.RentMonth),
		PaymentDate:        m.PaymentDate,
		Method:             m.Method,
		Items:              m.Items,
		Status:             m.Status,
		TotalPayments:      m.TotalPayments,
		SuccessfulPayments: m.SuccessfulPayments,
		FailedPayments:     m.FailedPayments,
		Summary:            m.Summary.Data,
		StartedAt:          m.StartedAt,
		CompletedAt:        m.CompletedAt,
	}
}

// BulkPaymentBatchModelFromDomain creates a persistence model from a domain batch
func BulkPaymentBatchModelFromDomain(b *payment.BulkPaymentBatch) *BulkPaymentBatchModel {
	m := &BulkPaymentBatchModel{
		Name:               b.Name,
		RentMonth:          string(b.RentMonth),
		PaymentDate:        b.PaymentDate,
		Method:             b.Method,
		Items:              b.Items,
		Status:             b.Status,
		TotalPayments:      b.TotalPayments,
		SuccessfulPayments: b.SuccessfulPayments,
		FailedPayments:     b.FailedPayments,
		Summary:            NewJSONColumn(b.Summary),
		StartedAt:          b.StartedAt,
		CompletedAt:        b.CompletedAt,
	}
	m.FromDomainOrgAggregateRoot(b.OrgAggregateRoot)
	return m
}
