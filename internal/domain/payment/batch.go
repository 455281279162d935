package payment

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

// MaxBatchItems bounds the size of a bulk payment batch
const MaxBatchItems = 1000

// BatchStatus represents the status of a bulk payment batch
type BatchStatus string

const (
	BatchStatusDraft      BatchStatus = "draft"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusPartial    BatchStatus = "partial"
)

// IsTerminal reports whether processing has finished
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed || s == BatchStatusPartial
}

// ItemStatus represents the status of one batch item
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusSuccess    ItemStatus = "success"
	ItemStatusFailed     ItemStatus = "failed"
)

// BatchItem is one payment attempt of a batch
type BatchItem struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      ItemStatus      `json:"status"`
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty"`
	ErrorCode   string          `json:"error_code,omitempty"`
	Error       string          `json:"error,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
}

// BatchItems is the ordered item list, stored as JSONB
type BatchItems []BatchItem

// Value implements driver.Valuer for JSONB storage
func (b BatchItems) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB storage
func (b *BatchItems) Scan(value any) error {
	if value == nil {
		*b = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("batch items: unsupported scan type")
	}
	return json.Unmarshal(raw, b)
}

// BatchSummary aggregates the outcome of a batch
type BatchSummary struct {
	SuccessRate      float64         `json:"success_rate"`
	AvgPaymentAmount decimal.Decimal `json:"avg_payment_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// BatchItemInput is one (tenant, amount) pair
type BatchItemInput struct {
	TenantID uuid.UUID
	Amount   decimal.Decimal
}

// BulkPaymentBatch records the same rent month for many tenants, item by item
type BulkPaymentBatch struct {
	shared.OrgAggregateRoot
	Name               string
	RentMonth          RentMonth
	PaymentDate        time.Time
	Method             PaymentMethod
	Items              BatchItems
	Status             BatchStatus
	TotalPayments      int
	SuccessfulPayments int
	FailedPayments     int
	Summary            BatchSummary
	StartedAt          *time.Time
	CompletedAt        *time.Time
}

// NewBulkPaymentBatch creates a draft batch
func NewBulkPaymentBatch(orgID uuid.UUID, name string, rentMonth RentMonth, paymentDate time.Time, method PaymentMethod, items []BatchItemInput) (*BulkPaymentBatch, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("items", "a batch needs at least one payment")
	}
	if len(items) > MaxBatchItems {
		return nil, shared.NewValidationError("items", "a batch cannot exceed 1000 payments")
	}
	if _, err := ParseRentMonth(string(rentMonth)); err != nil {
		return nil, err
	}
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("payment_method", "invalid payment method")
	}
	batchItems := make(BatchItems, 0, len(items))
	for _, in := range items {
		if in.TenantID == uuid.Nil {
			return nil, shared.NewValidationError("items.tenant_id", "tenant is required")
		}
		if !in.Amount.IsPositive() {
			return nil, shared.NewValidationError("items.amount", "amount must be positive")
		}
		batchItems = append(batchItems, BatchItem{TenantID: in.TenantID, Amount: in.Amount, Status: ItemStatusPending})
	}
	if paymentDate.IsZero() {
		paymentDate = shared.Now()
	}
	return &BulkPaymentBatch{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             strings.TrimSpace(name),
		RentMonth:        rentMonth,
		PaymentDate:      paymentDate.UTC(),
		Method:           method,
		Items:            batchItems,
		Status:           BatchStatusDraft,
		TotalPayments:    len(batchItems),
		Summary:          BatchSummary{AvgPaymentAmount: decimal.Zero, TotalAmount: decimal.Zero},
	}, nil
}

// Start moves a draft batch into processing
func (b *BulkPaymentBatch) Start(at time.Time) error {
	if b.Status != BatchStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, "only draft batches can be processed")
	}
	b.Status = BatchStatusProcessing
	b.StartedAt = &at
	b.Touch()
	b.IncrementVersion()
	return nil
}

// MarkItemProcessing flags item i as in flight
func (b *BulkPaymentBatch) MarkItemProcessing(i int) {
	b.Items[i].Status = ItemStatusProcessing
}

// MarkItemSucceeded records the payment created for item i
func (b *BulkPaymentBatch) MarkItemSucceeded(i int, paymentID uuid.UUID, at time.Time) {
	b.Items[i].Status = ItemStatusSuccess
	b.Items[i].PaymentID = &paymentID
	b.Items[i].ErrorCode = ""
	b.Items[i].Error = ""
	b.Items[i].ProcessedAt = &at
}

// MarkItemFailed captures why item i failed
func (b *BulkPaymentBatch) MarkItemFailed(i int, err error, at time.Time) {
	b.Items[i].Status = ItemStatusFailed
	b.Items[i].Error = err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		b.Items[i].ErrorCode = de.Code
	}
	b.Items[i].ProcessedAt = &at
}

// Finalize derives the batch status and summary once every item has resolved
func (b *BulkPaymentBatch) Finalize(at time.Time) {
	success, failed := 0, 0
	total := decimal.Zero
	for _, it := range b.Items {
		switch it.Status {
		case ItemStatusSuccess:
			success++
			total = total.Add(it.Amount)
		case ItemStatusFailed:
			failed++
		}
	}
	b.SuccessfulPayments = success
	b.FailedPayments = failed
	b.TotalPayments = len(b.Items)

	switch {
	case failed == 0:
		b.Status = BatchStatusCompleted
	case success == 0:
		b.Status = BatchStatusFailed
	default:
		b.Status = BatchStatusPartial
	}

	b.Summary = BatchSummary{AvgPaymentAmount: decimal.Zero, TotalAmount: total}
	if b.TotalPayments > 0 {
		rate := float64(success) / float64(b.TotalPayments) * 100
		b.Summary.SuccessRate = math.Round(rate*100) / 100
	}
	if success > 0 {
		b.Summary.AvgPaymentAmount = total.Div(decimal.NewFromInt(int64(success))).Round(2)
	}
	b.CompletedAt = &at
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBatchCompletedEvent(b))
}
