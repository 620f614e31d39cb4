package template

import (
	"context"
	"errors"
	"fmt"

	"github.com/pegada/calcpc/internal/logging"
	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
)

// Seed writes every sheet of f into the template partition of st and
// returns the number of rows written per sheet.
//
// Seeding is all or nothing at the sheet level: when any sheet already has
// template rows, nothing is written and ErrTemplateExists is returned.
func Seed(ctx context.Context, st store.Store, f *File) (map[string]int, error) {
	names := f.SheetNames()

	var errs []error
	for _, name := range names {
		if err := st.EnsureSheet(ctx, name); err != nil {
			return nil, err
		}
		n, err := st.Count(ctx, name, sheet.TemplateOwner)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			errs = append(errs, fmt.Errorf("%w: %s has %d rows", ErrTemplateExists, name, n))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	written := make(map[string]int, len(names))
	for _, name := range names {
		n, err := SeedSheet(ctx, st, name, f.Sheets[name])
		if err != nil {
			return written, err
		}
		written[name] = n
	}
	return written, nil
}

// SeedSheet writes cells into the template partition of one sheet without
// checking for existing rows.
func SeedSheet(ctx context.Context, st store.Store, sheetName string, cells []*sheet.Cell) (int, error) {
	if err := st.EnsureSheet(ctx, sheetName); err != nil {
		return 0, err
	}
	rows := make([]*sheet.Cell, len(cells))
	for i, c := range cells {
		rows[i] = normalize(c)
	}
	if err := st.Insert(ctx, sheetName, rows...); err != nil {
		return 0, fmt.Errorf("seeding %s: %w", sheetName, err)
	}

	logger := logging.FromContext(ctx)
	logger.Info().
		Str("component", "template").
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("template seeded")
	return len(rows), nil
}

// Export reads the template partition of sheets back into a File. Sheets
// without template rows are left out.
func Export(ctx context.Context, st store.Store, name string, sheets []string) (*File, error) {
	f := &File{
		SchemaVersion: CurrentSchemaVersion,
		Name:          name,
		Sheets:        make(map[string][]*sheet.Cell, len(sheets)),
	}
	for _, s := range sheets {
		rows, err := st.List(ctx, s, sheet.TemplateOwner, store.Query{OrderBy: store.OrderByID})
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			f.Sheets[s] = rows
		}
	}
	return f, nil
}
