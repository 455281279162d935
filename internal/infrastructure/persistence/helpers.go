package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/propcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OrgScope restricts a query to one organization
func OrgScope(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", orgID)
	}
}

// Paginate applies the filter's page window
func Paginate(filter shared.Filter) func(db *gorm.DB) *gorm.DB {
	f := filter.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}

// isDuplicateKey reports whether err is a unique constraint violation.
// TranslateError covers both drivers; the message checks catch errors raised
// before translation (e.g. inside a callback).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// notFound maps gorm's missing-row error onto the domain error
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity)
	}
	return err
}

// saveGuarded writes every column of m, but only while the stored row still carries
// storedVersion. Zero rows affected means another writer won.
func saveGuarded(ctx context.Context, db *gorm.DB, m any, storedVersion int) error {
	result := db.WithContext(ctx).
		Model(m).
		Where("version = ?", storedVersion).
		Select("*").
		Omit("id", "org_id", "created_at", "created_by").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
