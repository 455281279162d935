package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/payment"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForOrg finds a payment by ID within an organization
func (r *GormPaymentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return model.ToDomain(), nil
}

// FindByTenant lists a tenant's payments, newest payment date first
func (r *GormPaymentRepository) FindByTenant(ctx context.Context, orgID, tenantID uuid.UUID, filter shared.Filter) ([]payment.Payment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Scopes(OrgScope(orgID)).
		Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	if err := query.Scopes(Paginate(filter)).
		Order("payment_date DESC").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	payments := make([]payment.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

// ExistsPaid reports whether a PAID payment exists for tenant and rent month
func (r *GormPaymentRepository) ExistsPaid(ctx context.Context, tenantID uuid.UUID, rentMonth payment.RentMonth) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND rent_month = ? AND status = ?", tenantID, string(rentMonth), payment.PaymentStatusPaid).
		Count(&count).Error
	return count > 0, err
}

// LastPaidDate returns the latest payment date among the tenant's PAID payments
func (r *GormPaymentRepository) LastPaidDate(ctx context.Context, tenantID uuid.UUID) (*time.Time, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).
		Select("payment_date").
		Where("tenant_id = ? AND status = ?", tenantID, payment.PaymentStatusPaid).
		Order("payment_date DESC").
		Limit(1).
		Find(&model).Error
	if err != nil {
		return nil, err
	}
	if model.PaymentDate.IsZero() {
		return nil, nil
	}
	at := model.PaymentDate.UTC()
	return &at, nil
}

// CountOutstanding counts PENDING and PARTIAL payments of the tenant
func (r *GormPaymentRepository) CountOutstanding(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND status IN ?", tenantID, payment.OutstandingStatuses()).
		Count(&count).Error
	return count, err
}

// SumPaidByProperty totals PAID payments of a property
func (r *GormPaymentRepository) SumPaidByProperty(ctx context.Context, propertyID uuid.UUID) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("property_id = ? AND status = ?", propertyID, payment.PaymentStatusPaid).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

// Create inserts a payment. The partial unique index on (tenant_id, rent_month)
// for PAID rows turns a concurrent duplicate into ErrDuplicatePayment.
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if err := r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(p)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicatePayment.WithField("rent_month").WithCause(err)
		}
		return err
	}
	p.MarkStored()
	return nil
}

// SaveWithLock persists the payment guarded by its stored version
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *payment.Payment) error {
	next := p.NextVersion()
	model := models.PaymentModelFromDomain(p)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, p.StoredVersion()); err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicatePayment.WithField("status").WithCause(err)
		}
		return err
	}
	p.Version = next
	p.MarkStored()
	return nil
}

// GormReminderRepository implements ReminderRepository using GORM
type GormReminderRepository struct {
	db *gorm.DB
}

// NewGormReminderRepository creates a new GormReminderRepository
func NewGormReminderRepository(db *gorm.DB) *GormReminderRepository {
	return &GormReminderRepository{db: db}
}

// Create inserts a reminder
func (r *GormReminderRepository) Create(ctx context.Context, rem *payment.Reminder) error {
	if err := r.db.WithContext(ctx).Create(models.ReminderModelFromDomain(rem)).Error; err != nil {
		return err
	}
	rem.MarkStored()
	return nil
}

// Save updates a reminder guarded by its stored version
func (r *GormReminderRepository) Save(ctx context.Context, rem *payment.Reminder) error {
	next := rem.NextVersion()
	model := models.ReminderModelFromDomain(rem)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, rem.StoredVersion()); err != nil {
		return err
	}
	rem.Version = next
	rem.MarkStored()
	return nil
}

// ExistsActive reports whether the tenant has an active reminder
func (r *GormReminderRepository) ExistsActive(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReminderModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, payment.ReminderStatusActive).
		Count(&count).Error
	return count > 0, err
}

// FindActiveDueForTenant lists the tenant's active reminders due on or before at
func (r *GormReminderRepository) FindActiveDueForTenant(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]*payment.Reminder, error) {
	var rows []models.ReminderModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND next_run_date <= ?", tenantID, payment.ReminderStatusActive, at.UTC()).
		Order("next_run_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return remindersToDomain(rows), nil
}

// FindDue lists active reminders due on or before at across organizations
func (r *GormReminderRepository) FindDue(ctx context.Context, at time.Time, limit int) ([]*payment.Reminder, error) {
	var rows []models.ReminderModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND next_run_date <= ?", payment.ReminderStatusActive, at.UTC()).
		Order("next_run_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return remindersToDomain(rows), nil
}

// CancelAllForTenant cancels every active reminder of the tenant in one statement
func (r *GormReminderRepository) CancelAllForTenant(ctx context.Context, tenantID uuid.UUID, reason string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReminderModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, payment.ReminderStatusActive).
		Updates(map[string]any{
			"status":           payment.ReminderStatusCancelled,
			"cancelled_at":     at.UTC(),
			"cancelled_reason": reason,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       at.UTC(),
		})
	return result.RowsAffected, result.Error
}

func remindersToDomain(rows []models.ReminderModel) []*payment.Reminder {
	reminders := make([]*payment.Reminder, len(rows))
	for i := range rows {
		reminders[i] = rows[i].ToDomain()
	}
	return reminders
}

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByIDForOrg finds a batch by ID within an organization
func (r *GormBatchRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*payment.BulkPaymentBatch, error) {
	var model models.BulkPaymentBatchModel
	if err := r.db.WithContext(ctx).
		Scopes(OrgScope(orgID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "payment batch")
	}
	return model.ToDomain(), nil
}

// Save inserts a new batch or updates a stored one guarded by its version
func (r *GormBatchRepository) Save(ctx context.Context, b *payment.BulkPaymentBatch) error {
	if b.StoredVersion() == 0 {
		if err := r.db.WithContext(ctx).Create(models.BulkPaymentBatchModelFromDomain(b)).Error; err != nil {
			return err
		}
		b.MarkStored()
		return nil
	}
	next := b.NextVersion()
	model := models.BulkPaymentBatchModelFromDomain(b)
	model.Version = next
	if err := saveGuarded(ctx, r.db, model, b.StoredVersion()); err != nil {
		return err
	}
	b.Version = next
	b.MarkStored()
	return nil
}

var (
	_ payment.PaymentRepository  = (*GormPaymentRepository)(nil)
	_ payment.ReminderRepository = (*GormReminderRepository)(nil)
	_ payment.BatchRepository    = (*GormBatchRepository)(nil)
)
