package pagination

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pegada/calcpc/internal/engine"
)

// ErrInvalidSortField is returned for a field SortCells does not know.
var ErrInvalidSortField = fmt.Errorf("invalid sort field (want one of %s)", strings.Join(CellSortFields(), ", "))

//nolint:gochecknoglobals // Field comparators.
var cellLess = map[string]func(a, b engine.CellView) bool{
	"name":    func(a, b engine.CellView) bool { return a.Name < b.Name },
	"type":    func(a, b engine.CellView) bool { return a.Type < b.Type },
	"value":   func(a, b engine.CellView) bool { return a.Value < b.Value },
	"section": func(a, b engine.CellView) bool { return a.Section < b.Section },
	"layout": func(a, b engine.CellView) bool {
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Column < b.Column
	},
}

// CellSortFields lists the fields accepted by SortCells.
func CellSortFields() []string {
	fields := make([]string, 0, len(cellLess))
	for f := range cellLess {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// SortCells returns a sorted copy of views. expr is "field" or "field:order";
// an empty expr returns views unchanged.
func SortCells(views []engine.CellView, expr string) ([]engine.CellView, error) {
	if expr == "" {
		return views, nil
	}
	field, order, err := ParseSort(expr)
	if err != nil {
		return nil, err
	}
	less, ok := cellLess[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, field)
	}

	sorted := make([]engine.CellView, len(views))
	copy(sorted, views)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == SortOrderDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted, nil
}
