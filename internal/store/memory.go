package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pegada/calcpc/internal/sheet"
)

// MemoryStore is a Store kept entirely in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	tables map[string][]*sheet.Cell
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]*sheet.Cell)}
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

// EnsureSheet implements Store.
func (m *MemoryStore) EnsureSheet(_ context.Context, table string) error {
	if err := sheet.ValidateSheetName(table); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[table]; !ok {
		m.tables[table] = nil
	}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, table, name string, owner int64) (*sheet.Cell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := sheet.ValidateSheetName(table); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *sheet.Cell
	for _, c := range m.tables[table] {
		if c.Name == name && c.OwnerID == owner && (latest == nil || c.ID > latest.ID) {
			latest = c
		}
	}
	if latest == nil {
		return nil, notFound(table, name, owner)
	}
	cp := *latest
	return &cp, nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context, table string, owner int64, q Query) ([]*sheet.Cell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := sheet.ValidateSheetName(table); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var out []*sheet.Cell
	for _, c := range m.tables[table] {
		if c.OwnerID == owner && q.matches(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	if q.OrderBy == OrderByLayout {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.Row != b.Row {
				return a.Row < b.Row
			}
			if a.Column != b.Column {
				return a.Column < b.Column
			}
			return a.ID < b.ID
		})
	}
	return out, nil
}

// SetValue implements Store.
func (m *MemoryStore) SetValue(ctx context.Context, table, name string, owner int64, value float64) error {
	return m.update(ctx, table, name, owner, func(c *sheet.Cell) { c.Value = value })
}

// SetText implements Store.
func (m *MemoryStore) SetText(ctx context.Context, table, name string, owner int64, text string) error {
	return m.update(ctx, table, name, owner, func(c *sheet.Cell) { c.TextValue = text })
}

func (m *MemoryStore) update(ctx context.Context, table, name string, owner int64, apply func(*sheet.Cell)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkWritable(table, owner); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.tables[table] {
		if c.Name == name && c.OwnerID == owner {
			apply(c)
		}
	}
	return nil
}

// CloneTemplate implements Store.
func (m *MemoryStore) CloneTemplate(ctx context.Context, table string, owner int64, section string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkWritable(table, owner); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	inScope := func(c *sheet.Cell) bool { return section == "" || c.Section == section }

	for _, c := range rows {
		if c.OwnerID == owner && inScope(c) {
			return 0, nil
		}
	}

	var clones []*sheet.Cell
	for _, c := range rows {
		if c.OwnerID == sheet.TemplateOwner && inScope(c) {
			clone := c.Clone(owner)
			m.nextID++
			clone.ID = m.nextID
			clones = append(clones, clone)
		}
	}
	m.tables[table] = append(rows, clones...)
	return len(clones), nil
}

// Insert implements Store.
func (m *MemoryStore) Insert(ctx context.Context, table string, cells ...*sheet.Cell) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sheet.ValidateSheetName(table); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cells {
		m.nextID++
		c.ID = m.nextID
		cp := *c
		m.tables[table] = append(m.tables[table], &cp)
	}
	return nil
}

// Owners implements Store.
func (m *MemoryStore) Owners(_ context.Context, table string) ([]int64, error) {
	if err := sheet.ValidateSheetName(table); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int64]bool)
	var owners []int64
	for _, c := range m.tables[table] {
		if c.OwnerID != sheet.TemplateOwner && !seen[c.OwnerID] {
			seen[c.OwnerID] = true
			owners = append(owners, c.OwnerID)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context, table string, owner int64) (int, error) {
	if err := sheet.ValidateSheetName(table); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.tables[table] {
		if c.OwnerID == owner {
			n++
		}
	}
	return n, nil
}
