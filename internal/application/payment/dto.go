package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Payment DTOs
// =============================================================================

// DiscountRequest describes a discount applied to a payment
type DiscountRequest struct {
	Type   string          `json:"type" binding:"required,oneof=PERCENTAGE FIXED"`
	Value  decimal.Decimal `json:"value"`
	Reason string          `json:"reason" binding:"max=200"`
}

// FeesRequest carries the fees added on top of rent
type FeesRequest struct {
	LateFee       decimal.Decimal `json:"late_fee"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	OtherFees     decimal.Decimal `json:"other_fees"`
}

// RecordPaymentRequest represents a request to record a rent payment.
// Amount is the gross amount before any discount.
type RecordPaymentRequest struct {
	TenantID    uuid.UUID        `json:"tenant_id" binding:"required"`
	PropertyID  *uuid.UUID       `json:"property_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Discount    *DiscountRequest `json:"discount"`
	Fees        FeesRequest      `json:"fees"`
	Status      string           `json:"status" binding:"omitempty,oneof=PAID PENDING PARTIAL"`
	Method      string           `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHECK MOBILE_MONEY OTHER"`
	PaymentDate *time.Time       `json:"payment_date"`
	RentMonth   string           `json:"rent_month" binding:"omitempty,rentmonth"`
	Reference   string           `json:"reference" binding:"max=100"`
	Notes       string           `json:"notes" binding:"max=1000"`
}

// ChangePaymentStatusRequest represents a payment status correction
type ChangePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PAID FAILED CANCELLED REFUNDED PARTIAL"`
	Reason string `json:"reason" binding:"max=500"`
}

// DiscountResponse represents an applied discount
type DiscountResponse struct {
	Type   string          `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// FeesResponse represents payment fees
type FeesResponse struct {
	LateFee       decimal.Decimal `json:"late_fee"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	OtherFees     decimal.Decimal `json:"other_fees"`
	TotalFees     decimal.Decimal `json:"total_fees"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID             uuid.UUID         `json:"id"`
	OrgID          uuid.UUID         `json:"org_id"`
	TenantID       uuid.UUID         `json:"tenant_id"`
	PropertyID     uuid.UUID         `json:"property_id"`
	UnitID         *uuid.UUID        `json:"unit_id,omitempty"`
	BatchID        *uuid.UUID        `json:"batch_id,omitempty"`
	Amount         decimal.Decimal   `json:"amount"`
	OriginalAmount decimal.Decimal   `json:"original_amount"`
	Discount       *DiscountResponse `json:"discount,omitempty"`
	Fees           FeesResponse      `json:"fees"`
	Status         string            `json:"status"`
	Method         string            `json:"payment_method"`
	PaymentDate    time.Time         `json:"payment_date"`
	RentMonth      string            `json:"rent_month"`
	Reference      string            `json:"reference,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	StatusReason   string            `json:"status_reason,omitempty"`
	Version        int               `json:"version"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	response := PaymentResponse{
		ID:             p.ID,
		OrgID:          p.OrgID,
		TenantID:       p.TenantID,
		PropertyID:     p.PropertyID,
		UnitID:         p.UnitID,
		BatchID:        p.BatchID,
		Amount:         p.Amount,
		OriginalAmount: p.OriginalAmount,
		Fees: FeesResponse{
			LateFee:       p.Fees.LateFee,
			ProcessingFee: p.Fees.ProcessingFee,
			OtherFees:     p.Fees.OtherFees,
			TotalFees:     p.Fees.TotalFees,
		},
		Status:       string(p.Status),
		Method:       string(p.Method),
		PaymentDate:  p.PaymentDate,
		RentMonth:    string(p.RentMonth),
		Reference:    p.Reference,
		Notes:        p.Notes,
		StatusReason: p.StatusReason,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Discount != nil {
		response.Discount = &DiscountResponse{
			Type:   string(p.Discount.Type),
			Value:  p.Discount.Value,
			Amount: p.Discount.Amount,
			Reason: p.Discount.Reason,
		}
	}
	return response
}

// =============================================================================
// Batch DTOs
// =============================================================================

// BatchItemRequest is one (tenant, amount) pair of a batch
type BatchItemRequest struct {
	TenantID uuid.UUID       `json:"tenant_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// BatchFilterRequest builds batch items from the tenants matching it,
// each paying its effective rent
type BatchFilterRequest struct {
	PropertyID *uuid.UUID `json:"property_id"`
	Statuses   []string   `json:"statuses" binding:"omitempty,dive,oneof=ACTIVE LATE PENDING"`
}

// CreateBatchRequest represents a request to create a bulk payment batch.
// Exactly one of Items and Filter must be given.
type CreateBatchRequest struct {
	Name        string              `json:"name" binding:"max=200"`
	RentMonth   string              `json:"rent_month" binding:"required,rentmonth"`
	PaymentDate *time.Time          `json:"payment_date"`
	Method      string              `json:"payment_method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD CHECK MOBILE_MONEY OTHER"`
	Items       []BatchItemRequest  `json:"items" binding:"omitempty,max=1000,dive"`
	Filter      *BatchFilterRequest `json:"filter"`
}

// BatchItemResponse represents one batch item
type BatchItemResponse struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty"`
	ErrorCode   string          `json:"error_code,omitempty"`
	Error       string          `json:"error,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// BatchSummaryResponse aggregates the outcome of a batch
type BatchSummaryResponse struct {
	SuccessRate      float64         `json:"success_rate"`
	AvgPaymentAmount decimal.Decimal `json:"avg_payment_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// BatchResponse represents a bulk payment batch
type BatchResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Name               string               `json:"name,omitempty"`
	RentMonth          string               `json:"rent_month"`
	PaymentDate        time.Time            `json:"payment_date"`
	Method             string               `json:"payment_method"`
	Status             string               `json:"status"`
	TotalPayments      int                  `json:"total_payments"`
	SuccessfulPayments int                  `json:"successful_payments"`
	FailedPayments     int                  `json:"failed_payments"`
	Summary            BatchSummaryResponse `json:"summary"`
	Items              []BatchItemResponse  `json:"items"`
	StartedAt          *time.Time           `json:"started_at,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// ToBatchResponse converts a domain batch to a response
func ToBatchResponse(b *payment.BulkPaymentBatch) BatchResponse {
	items := make([]BatchItemResponse, len(b.Items))
	for i, it := range b.Items {
		items[i] = BatchItemResponse{
			TenantID:    it.TenantID,
			Amount:      it.Amount,
			Status:      string(it.Status),
			PaymentID:   it.PaymentID,
			ErrorCode:   it.ErrorCode,
			Error:       it.Error,
			ProcessedAt: it.ProcessedAt,
		}
	}
	return BatchResponse{
		ID:                 b.ID,
		Name:               b.Name,
		RentMonth:          string(b.RentMonth),
		PaymentDate:        b.PaymentDate,
		Method:             string(b.Method),
		Status:             string(b.Status),
		TotalPayments:      b.TotalPayments,
		SuccessfulPayments: b.SuccessfulPayments,
		FailedPayments:     b.FailedPayments,
		Summary: BatchSummaryResponse{
			SuccessRate:      b.Summary.SuccessRate,
			AvgPaymentAmount: b.Summary.AvgPaymentAmount,
			TotalAmount:      b.Summary.TotalAmount,
		},
		Items:       items,
		StartedAt:   b.StartedAt,
		CompletedAt: b.CompletedAt,
		CreatedAt:   b.CreatedAt,
	}
}

// ReminderSweepResult summarizes one reminder sweep run
type ReminderSweepResult struct {
	Due       int `json:"due"`
	Sent      int `json:"sent"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}
