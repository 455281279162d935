package persistence

import (
	"strings"

	"github.com/propcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// SortBy orders by the filter's whitelisted field, then by id so pages are stable
func SortBy(filter shared.Filter, allowedFields map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(field + " " + dir).Order("id " + dir)
	}
}

// PropertySortFields contains allowed sort fields for properties
var PropertySortFields = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"number_of_units": true,
	"occupied_units":  true,
	"occupancy_rate":  true,
	"net_income":      true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"name":             true,
	"status":           true,
	"rent_amount":      true,
	"lease_start_date": true,
	"unit_number":      true,
}
