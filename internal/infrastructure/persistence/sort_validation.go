package persistence

import (
	"strings"

	"github.com/webdevsha/permitak/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LocationSortFields contains allowed sort fields for locations
var LocationSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"type":       true,
}

// TenantSortFields contains allowed sort fields for tenants
var TenantSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"full_name":     true,
	"business_name": true,
	"status":        true,
}

// TransactionSortFields contains allowed sort fields for ledger entries
var TransactionSortFields = map[string]bool{
	"created_at": true,
	"date":       true,
	"amount":     true,
	"category":   true,
	"status":     true,
}

// applyListFilter applies whitelisted ordering and page-based limit/offset.
// A PageSize of zero or less returns every row.
func applyListFilter(q *gorm.DB, f shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	q = q.Order(ValidateSortField(f.OrderBy, allowed, defaultField) + " " + ValidateSortOrder(f.OrderDir))
	if f.PageSize > 0 {
		q = q.Limit(f.PageSize).Offset(f.Offset())
	}
	return q
}
