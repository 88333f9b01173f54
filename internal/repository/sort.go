package repository

import "fmt"

// MaxPageSize caps list page sizes
const MaxPageSize = 200

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortConfig describes how a list should be ordered
type SortConfig struct {
	Field string
	Order SortOrder
}

// DefaultSortConfig sorts newest-updated first
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: "updatedAt", Order: SortDesc}
}

// ParseSortOrder normalizes a client-supplied sort direction
func ParseSortOrder(s string) SortOrder {
	if s == "asc" {
		return SortAsc
	}
	return SortDesc
}

// BuildOrderClause maps an API sort field onto a safe column using the
// given whitelist; unknown fields fall back to the default column.
func BuildOrderClause(cfg SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[cfg.Field]
	if !ok {
		column = defaultColumn
	}
	order := cfg.Order
	if order != SortAsc && order != SortDesc {
		order = SortDesc
	}
	return fmt.Sprintf("%s %s", column, order)
}

// NormalizePaging clamps page and pageSize to sane values
func NormalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
