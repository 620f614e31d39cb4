package pagination

import (
	"errors"
	"fmt"
	"strings"
)

// Validation limits and defaults.
const (
	DefaultPageSize = 50
	MinPageSize     = 1
	MaxPageSize     = 1000
	SortOrderAsc    = "asc"
	SortOrderDesc   = "desc"
)

// Validation errors.
var (
	ErrInvalidPage         = errors.New("page must be >= 1")
	ErrInvalidPageSize     = fmt.Errorf("page-size must be between %d and %d", MinPageSize, MaxPageSize)
	ErrPageSizeWithoutPage = errors.New("--page-size requires --page to be set")
	ErrInvalidSortFormat   = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'value:desc')")
	ErrInvalidSortOrder    = errors.New("sort order must be 'asc' or 'desc'")
	ErrEmptySortField      = errors.New("sort field cannot be empty")
)

// Params holds the pagination flags. Page 0 means no pagination.
type Params struct {
	Page     int
	PageSize int
	Sort     string
}

// Validate checks the bounds and pairing of the flags.
func (p Params) Validate() error {
	if p.Page < 0 {
		return ErrInvalidPage
	}
	if p.PageSize != 0 && (p.PageSize < MinPageSize || p.PageSize > MaxPageSize) {
		return ErrInvalidPageSize
	}
	if p.Page == 0 && p.PageSize > 0 {
		return ErrPageSizeWithoutPage
	}
	if p.Sort != "" {
		if _, _, err := ParseSort(p.Sort); err != nil {
			return err
		}
	}
	return nil
}

// IsEnabled reports whether a page was requested.
func (p Params) IsEnabled() bool {
	return p.Page > 0
}

func (p Params) pageSize() int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return DefaultPageSize
}

// Apply returns the requested page of items. A page past the end yields the
// last page.
func Apply[T any](p Params, items []T) []T {
	if !p.IsEnabled() || len(items) == 0 {
		return items
	}
	size := p.pageSize()
	offset := (p.Page - 1) * size
	if offset >= len(items) {
		offset = ((len(items) - 1) / size) * size
	}
	end := min(offset+size, len(items))
	return items[offset:end]
}

// ParseSort parses "field" or "field:order". The order defaults to asc.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(s string) (field, order string, err error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		field, order = strings.TrimSpace(parts[0]), SortOrderAsc
	case 2:
		field, order = strings.TrimSpace(parts[0]), strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, s)
	}
	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}
