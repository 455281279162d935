package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/application/chain"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// PaymentService records rent payments and applies status corrections.
// Recording a payment runs the payment.recorded chain: tenant status, due
// reminders and property cash flow all change in the payment's transaction.
type PaymentService struct {
	runner   *chain.Runner
	payments payment.PaymentRepository
	tenants  tenancy.TenantRepository
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	runner *chain.Runner,
	payments payment.PaymentRepository,
	tenants tenancy.TenantRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		runner:   runner,
		payments: payments,
		tenants:  tenants,
		logger:   logger,
	}
}

// Record validates and records a payment
func (s *PaymentService) Record(ctx context.Context, orgID, actorID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	in, err := req.toInput()
	if err != nil {
		return nil, err
	}
	p, err := s.record(ctx, orgID, actorID, in)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// record runs the payment.recorded chain for one payment. A zero PropertyID
// defaults to the tenant's property.
func (s *PaymentService) record(ctx context.Context, orgID, actorID uuid.UUID, in payment.NewPaymentInput) (*payment.Payment, error) {
	var p *payment.Payment
	err := s.runner.Run(ctx, payment.EventTypePaymentRecorded, actorID,
		chain.Do("persist_payment", func(ctx context.Context, tx *chain.Tx) error {
			t, err := tx.Tenants().FindByIDForOrg(ctx, orgID, in.TenantID)
			if err != nil {
				return err
			}
			if t.IsArchived() {
				return shared.NewDomainError(shared.CodeInvalidState, "tenant is archived").WithField("tenant_id")
			}
			if in.PropertyID == uuid.Nil {
				in.PropertyID = t.PropertyID
			} else if in.PropertyID != t.PropertyID {
				return shared.NewValidationError("property_id", "tenant does not belong to the property")
			}
			if in.UnitID == nil && t.UnitID != nil {
				unitID := *t.UnitID
				in.UnitID = &unitID
			}

			p, err = payment.NewPayment(orgID, in, tx.Now)
			if err != nil {
				return err
			}
			if p.IsPaid() {
				if err := ensureNotPaid(ctx, tx, p.TenantID, p.RentMonth); err != nil {
					return err
				}
			}
			p.SetCreatedBy(actorID)
			if err := tx.Payments().Create(ctx, p); err != nil {
				return err
			}
			return tx.Emit(ctx, p)
		}),
		chain.RecomputeTenantStatus(in.TenantID),
		chain.Do("cancel_due_reminders", func(ctx context.Context, tx *chain.Tx) error {
			if !p.IsPaid() {
				return nil
			}
			return chain.CancelDueReminders(p.TenantID, p.PaymentDate).Run(ctx, tx)
		}),
		chain.Do("recompute_cash_flow", func(ctx context.Context, tx *chain.Tx) error {
			return chain.RecomputeProperty(ctx, tx, p.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", p.ID.String()),
		zap.String("tenant_id", p.TenantID.String()),
		zap.String("rent_month", string(p.RentMonth)),
		zap.String("status", string(p.Status)),
		zap.String("amount", p.Amount.StringFixed(2)),
	)
	return p, nil
}

// ChangeStatus applies a status correction and recomputes the tenant status and
// the property cash flow
func (s *PaymentService) ChangeStatus(ctx context.Context, orgID, actorID, paymentID uuid.UUID, req ChangePaymentStatusRequest) (*PaymentResponse, error) {
	var p *payment.Payment
	err := s.runner.Run(ctx, payment.EventTypePaymentStatusChanged, actorID,
		chain.Do("change_payment_status", func(ctx context.Context, tx *chain.Tx) error {
			var err error
			p, err = tx.Payments().FindByIDForOrg(ctx, orgID, paymentID)
			if err != nil {
				return err
			}
			target := payment.PaymentStatus(req.Status)
			if target == payment.PaymentStatusPaid && !p.IsPaid() {
				if err := ensureNotPaid(ctx, tx, p.TenantID, p.RentMonth); err != nil {
					return err
				}
			}
			if err := p.ChangeStatus(target, req.Reason); err != nil {
				return err
			}
			if err := tx.Payments().SaveWithLock(ctx, p); err != nil {
				return err
			}
			return tx.Emit(ctx, p)
		}),
		chain.Do("recompute_tenant_status", func(ctx context.Context, tx *chain.Tx) error {
			return chain.RecomputeTenantStatus(p.TenantID).Run(ctx, tx)
		}),
		chain.Do("recompute_cash_flow", func(ctx context.Context, tx *chain.Tx) error {
			return chain.RecomputeProperty(ctx, tx, p.PropertyID)
		}),
	)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// GetByID returns a payment
func (s *PaymentService) GetByID(ctx context.Context, orgID, paymentID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.payments.FindByIDForOrg(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// ListByTenant returns a tenant's payments, newest first
func (s *PaymentService) ListByTenant(ctx context.Context, orgID, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[PaymentResponse], error) {
	filter = filter.Normalize()
	if _, err := s.tenants.FindByIDForOrg(ctx, orgID, tenantID); err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	payments, total, err := s.payments.FindByTenant(ctx, orgID, tenantID, filter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}
	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ensureNotPaid rejects a second PAID payment for the same tenant and rent month.
// The partial unique index backs this check against concurrent writers.
func ensureNotPaid(ctx context.Context, tx *chain.Tx, tenantID uuid.UUID, month payment.RentMonth) error {
	exists, err := tx.Payments().ExistsPaid(ctx, tenantID, month)
	if err != nil {
		return err
	}
	if exists {
		return shared.ErrDuplicatePayment.WithField("rent_month")
	}
	return nil
}

func (r RecordPaymentRequest) toInput() (payment.NewPaymentInput, error) {
	in := payment.NewPaymentInput{
		TenantID:  r.TenantID,
		Amount:    r.Amount,
		Status:    payment.PaymentStatus(r.Status),
		Method:    payment.PaymentMethod(r.Method),
		Reference: r.Reference,
		Notes:     r.Notes,
		Fees: payment.Fees{
			LateFee:       r.Fees.LateFee,
			ProcessingFee: r.Fees.ProcessingFee,
			OtherFees:     r.Fees.OtherFees,
		},
	}
	if r.PropertyID != nil {
		in.PropertyID = *r.PropertyID
	}
	if r.PaymentDate != nil {
		in.PaymentDate = *r.PaymentDate
	}
	if r.RentMonth != "" {
		month, err := payment.ParseRentMonth(r.RentMonth)
		if err != nil {
			return in, err
		}
		in.RentMonth = month
	}
	if r.Discount != nil {
		in.Discount = &payment.Discount{
			Type:   payment.DiscountType(r.Discount.Type),
			Value:  r.Discount.Value,
			Reason: r.Discount.Reason,
		}
	}
	return in, nil
}
