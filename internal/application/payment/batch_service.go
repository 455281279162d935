package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// BatchObserver is told about the item outcomes of every processed batch
type BatchObserver interface {
	BatchProcessed(ctx context.Context, succeeded, failed int)
}

// BatchService creates and processes bulk payment batches. Every item is
// recorded through the payment recorder in its own transaction, so one failing
// item never rolls back the others.
type BatchService struct {
	runner   *chain.Runner
	recorder *PaymentService
	batches  payment.BatchRepository
	tenants  tenancy.TenantRepository
	maxItems int
	logger   *zap.Logger
	observer BatchObserver
}

// NewBatchService creates a new BatchService. maxItems caps the items of one
// batch below payment.MaxBatchItems; zero keeps the domain limit.
func NewBatchService(
	runner *chain.Runner,
	recorder *PaymentService,
	batches payment.BatchRepository,
	tenants tenancy.TenantRepository,
	maxItems int,
	logger *zap.Logger,
) *BatchService {
	if maxItems <= 0 || maxItems > payment.MaxBatchItems {
		maxItems = payment.MaxBatchItems
	}
	return &BatchService{
		runner:   runner,
		recorder: recorder,
		batches:  batches,
		tenants:  tenants,
		maxItems: maxItems,
		logger:   logger,
	}
}

// WithObserver attaches an observer (metrics) to the service
func (s *BatchService) WithObserver(o BatchObserver) *BatchService {
	s.observer = o
	return s
}

// Create builds a draft batch from explicit items or from the tenants matching a filter
func (s *BatchService) Create(ctx context.Context, orgID, actorID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error) {
	month, err := payment.ParseRentMonth(req.RentMonth)
	if err != nil {
		return nil, err
	}

	var items []payment.BatchItemInput
	switch {
	case len(req.Items) > 0 && req.Filter != nil:
		return nil, shared.NewValidationError("items", "give either items or a filter, not both")
	case len(req.Items) > 0:
		items = make([]payment.BatchItemInput, len(req.Items))
		for i, it := range req.Items {
			items[i] = payment.BatchItemInput{TenantID: it.TenantID, Amount: it.Amount}
		}
	case req.Filter != nil:
		items, err = s.itemsFromFilter(ctx, orgID, *req.Filter)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, shared.NewValidationError("filter", "no tenants with rent due match the filter")
		}
	default:
		return nil, shared.NewValidationError("items", "a batch needs items or a filter")
	}
	if len(items) > s.maxItems {
		return nil, shared.NewValidationError("items", fmt.Sprintf("a batch cannot exceed %d payments", s.maxItems))
	}

	var paymentDate time.Time
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	b, err := payment.NewBulkPaymentBatch(orgID, req.Name, month, paymentDate, payment.PaymentMethod(req.Method), items)
	if err != nil {
		return nil, err
	}
	b.SetCreatedBy(actorID)

	err = s.runner.Run(ctx, "payment_batch.created", actorID,
		chain.Do("persist_batch", func(ctx context.Context, tx *chain.Tx) error {
			return tx.Batches().Save(ctx, b)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment batch created",
		zap.String("batch_id", b.ID.String()),
		zap.String("rent_month", string(b.RentMonth)),
		zap.Int("items", len(b.Items)),
	)
	response := ToBatchResponse(b)
	return &response, nil
}

// Process records every item of a draft batch and finalizes it. Item failures
// are captured on the item; the batch ends completed, partial or failed.
func (s *BatchService) Process(ctx context.Context, orgID, actorID, batchID uuid.UUID) (*BatchResponse, error) {
	b, err := s.batches.FindByIDForOrg(ctx, orgID, batchID)
	if err != nil {
		return nil, err
	}
	if err := b.Start(shared.Now()); err != nil {
		return nil, err
	}
	err = s.runner.Run(ctx, "payment_batch.started", actorID,
		chain.Do("start_batch", func(ctx context.Context, tx *chain.Tx) error {
			return tx.Batches().Save(ctx, b)
		}),
	)
	if err != nil {
		return nil, err
	}

	for i := range b.Items {
		item := b.Items[i]
		b.MarkItemProcessing(i)
		p, err := s.recorder.record(ctx, orgID, actorID, payment.NewPaymentInput{
			TenantID:    item.TenantID,
			BatchID:     &b.ID,
			Amount:      item.Amount,
			Status:      payment.PaymentStatusPaid,
			Method:      b.Method,
			PaymentDate: b.PaymentDate,
			RentMonth:   b.RentMonth,
		})
		if err != nil {
			b.MarkItemFailed(i, err, shared.Now())
			s.logger.Debug("batch item failed",
				zap.String("batch_id", b.ID.String()),
				zap.String("tenant_id", item.TenantID.String()),
				zap.Error(err),
			)
			continue
		}
		b.MarkItemSucceeded(i, p.ID, shared.Now())
	}

	b.Finalize(shared.Now())
	// The outcome is persisted even when the caller went away mid-batch.
	err = s.runner.Run(context.WithoutCancel(ctx), payment.EventTypeBatchCompleted, actorID,
		chain.Do("finalize_batch", func(ctx context.Context, tx *chain.Tx) error {
			if err := tx.Batches().Save(ctx, b); err != nil {
				return err
			}
			return tx.Emit(ctx, b)
		}),
	)
	if err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.BatchProcessed(ctx, b.SuccessfulPayments, b.FailedPayments)
	}
	s.logger.Info("payment batch processed",
		zap.String("batch_id", b.ID.String()),
		zap.String("status", string(b.Status)),
		zap.Int("successful", b.SuccessfulPayments),
		zap.Int("failed", b.FailedPayments),
	)
	response := ToBatchResponse(b)
	return &response, nil
}

// GetByID returns a batch
func (s *BatchService) GetByID(ctx context.Context, orgID, batchID uuid.UUID) (*BatchResponse, error) {
	b, err := s.batches.FindByIDForOrg(ctx, orgID, batchID)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(b)
	return &response, nil
}

// itemsFromFilter pays each matching tenant's effective rent. Tenants with
// nothing due are skipped.
func (s *BatchService) itemsFromFilter(ctx context.Context, orgID uuid.UUID, f BatchFilterRequest) ([]payment.BatchItemInput, error) {
	filter := tenancy.TenantFilter{
		Filter:     shared.Filter{Page: 1, PageSize: 200},
		PropertyID: f.PropertyID,
	}
	for _, st := range f.Statuses {
		filter.Statuses = append(filter.Statuses, tenancy.TenantStatus(st))
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = tenancy.OccupyingStatuses()
	}

	now := shared.Now()
	var items []payment.BatchItemInput
	for {
		tenants, total, err := s.tenants.FindAllForOrg(ctx, orgID, filter)
		if err != nil {
			return nil, err
		}
		for i := range tenants {
			rent := tenants[i].EffectiveRent(now)
			if !rent.IsPositive() {
				continue
			}
			items = append(items, payment.BatchItemInput{TenantID: tenants[i].ID, Amount: rent})
		}
		if len(tenants) < filter.PageSize || int64(filter.Page*filter.PageSize) >= total {
			break
		}
		if len(items) > s.maxItems {
			break
		}
		filter.Page++
	}
	return items, nil
}
