// Package store persists sheet cells.
//
// Every sheet is one table of rows partitioned by owner. Owner 0 holds the
// template that is cloned, once, into every other owner's partition. Two
// implementations exist: SQLiteStore for real use and MemoryStore for tests
// and throwaway sessions.
package store

import (
	"context"
	"fmt"

	"github.com/pegada/calcpc/internal/sheet"
)

// Order selects the ordering of List results.
type Order int

const (
	// OrderByID orders rows by ascending id (insertion order).
	OrderByID Order = iota

	// OrderByLayout orders rows by row, then column, then id.
	OrderByLayout
)

// Query filters List results.
type Query struct {
	// Section restricts results to one section. Empty means all sections.
	Section string

	OrderBy Order
}

func (q Query) matches(c *sheet.Cell) bool {
	return q.Section == "" || c.Section == q.Section
}

// Store is the cell persistence contract.
//
// Reads never create sheets: Get on a sheet that does not exist yet reports
// ErrCellNotFound, and List, Owners and Count report nothing.
// Lookups by name prefer the row with the highest id when duplicates exist.
// Writes update every matching row in place and are a silent no-op when no
// row matches. Template rows (owner 0) cannot be written through SetValue or
// SetText.
type Store interface {
	// EnsureSheet creates the sheet's table if it does not exist yet.
	EnsureSheet(ctx context.Context, table string) error

	// Get returns the newest row named name for owner.
	Get(ctx context.Context, table, name string, owner int64) (*sheet.Cell, error)

	// List returns owner's rows matching q.
	List(ctx context.Context, table string, owner int64, q Query) ([]*sheet.Cell, error)

	SetValue(ctx context.Context, table, name string, owner int64, value float64) error
	SetText(ctx context.Context, table, name string, owner int64, text string) error

	// CloneTemplate copies the template rows (restricted to section when it
	// is not empty) into owner's partition. It does nothing when owner
	// already has rows in that scope. It returns the number of rows copied.
	CloneTemplate(ctx context.Context, table string, owner int64, section string) (int, error)

	// Insert appends rows as given, assigning fresh ids.
	Insert(ctx context.Context, table string, cells ...*sheet.Cell) error

	// Owners returns the distinct non-template owners of a sheet, ascending.
	Owners(ctx context.Context, table string) ([]int64, error)

	// Count returns the number of rows owner has in a sheet.
	Count(ctx context.Context, table string, owner int64) (int, error)

	Close() error
}

// Error describes a storage failure.
type Error struct {
	Op    string
	Sheet string
	Err   error
}

func (e *Error) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Sheet, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func storageErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Sheet: table, Err: err}
}

func notFound(table, name string, owner int64) error {
	return fmt.Errorf("%w: %s!%s (owner %d)", sheet.ErrCellNotFound, table, name, owner)
}

func checkWritable(table string, owner int64) error {
	if err := sheet.ValidateSheetName(table); err != nil {
		return err
	}
	if owner == sheet.TemplateOwner {
		return fmt.Errorf("%w: %s", sheet.ErrTemplateOwner, table)
	}
	return nil
}
