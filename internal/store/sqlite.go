package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // database/sql driver

	"github.com/pegada/calcpc/internal/sheet"
)

// DefaultBusyTimeoutMs is how long SQLite waits on a locked database.
const DefaultBusyTimeoutMs = 5000

const cellColumns = `id, name, type, expression, display_text, value,
	selection_options, text_value, "column", "row", owner_id, section`

// SQLiteStore keeps every sheet in its own SQLite table.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	ensured map[string]bool
}

// SQLiteOption configures OpenSQLite.
type SQLiteOption func(*sqliteOptions)

type sqliteOptions struct {
	busyTimeoutMs int
}

// WithBusyTimeout sets the SQLite busy timeout in milliseconds.
func WithBusyTimeout(ms int) SQLiteOption {
	return func(o *sqliteOptions) {
		if ms > 0 {
			o.busyTimeoutMs = ms
		}
	}
}

// OpenSQLite opens (creating if needed) the database at path.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	o := sqliteOptions{busyTimeoutMs: DefaultBusyTimeoutMs}
	for _, opt := range opts {
		opt(&o)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", path, o.busyTimeoutMs)
	if path == ":memory:" {
		dsn = fmt.Sprintf("file::memory:?_busy_timeout=%d", o.busyTimeoutMs)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr("open", "", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// shared between statements.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, storageErr("open", "", err)
	}

	return &SQLiteStore{db: db, ensured: make(map[string]bool)}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSheet implements Store.
func (s *SQLiteStore) EnsureSheet(ctx context.Context, table string) error {
	if err := sheet.ValidateSheetName(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[table] {
		return nil
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]q (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		expression TEXT NOT NULL DEFAULT '',
		display_text TEXT NOT NULL DEFAULT '',
		value REAL NOT NULL DEFAULT 0,
		selection_options TEXT NOT NULL DEFAULT '',
		text_value TEXT NOT NULL DEFAULT '',
		"column" INTEGER NOT NULL DEFAULT 0,
		"row" INTEGER NOT NULL DEFAULT 0,
		owner_id INTEGER NOT NULL,
		section TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS %[2]q ON %[1]q (owner_id, name);
	CREATE INDEX IF NOT EXISTS %[3]q ON %[1]q (owner_id, section);
	`, table, "idx_"+table+"_owner_name", "idx_"+table+"_owner_section")

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return storageErr("ensure", table, err)
	}
	s.ensured[table] = true
	return nil
}

// exists reports whether the sheet's table has been created.
func (s *SQLiteStore) exists(ctx context.Context, table string) (bool, error) {
	if err := sheet.ValidateSheetName(table); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[table] {
		return true, nil
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, storageErr("lookup", table, err)
	}
	if n > 0 {
		s.ensured[table] = true
	}
	return n > 0, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, table, name string, owner int64) (*sheet.Cell, error) {
	ok, err := s.exists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(table, name, owner)
	}

	query := fmt.Sprintf(`SELECT %s FROM %q WHERE name = ? AND owner_id = ? ORDER BY id DESC LIMIT 1`,
		cellColumns, table)
	row := s.db.QueryRowContext(ctx, query, name, owner)

	c, err := scanCell(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(table, name, owner)
	}
	if err != nil {
		return nil, storageErr("get", table, err)
	}
	return c, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, table string, owner int64, q Query) ([]*sheet.Cell, error) {
	if ok, err := s.exists(ctx, table); err != nil || !ok {
		return nil, err
	}

	var (
		where = []string{"owner_id = ?"}
		args  = []any{owner}
	)
	if q.Section != "" {
		where = append(where, "section = ?")
		args = append(args, q.Section)
	}

	order := "id"
	if q.OrderBy == OrderByLayout {
		order = `"row", "column", id`
	}

	query := fmt.Sprintf(`SELECT %s FROM %q WHERE %s ORDER BY %s`,
		cellColumns, table, strings.Join(where, " AND "), order)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list", table, err)
	}
	defer rows.Close()

	var cells []*sheet.Cell
	for rows.Next() {
		c, scanErr := scanCell(rows)
		if scanErr != nil {
			return nil, storageErr("list", table, scanErr)
		}
		cells = append(cells, c)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("list", table, err)
	}
	return cells, nil
}

// SetValue implements Store.
func (s *SQLiteStore) SetValue(ctx context.Context, table, name string, owner int64, value float64) error {
	return s.update(ctx, table, name, owner, "value", value)
}

// SetText implements Store.
func (s *SQLiteStore) SetText(ctx context.Context, table, name string, owner int64, text string) error {
	return s.update(ctx, table, name, owner, "text_value", text)
}

func (s *SQLiteStore) update(ctx context.Context, table, name string, owner int64, column string, v any) error {
	if err := checkWritable(table, owner); err != nil {
		return err
	}
	if ok, err := s.exists(ctx, table); err != nil || !ok {
		return err
	}

	stmt := fmt.Sprintf(`UPDATE %q SET %s = ? WHERE name = ? AND owner_id = ?`, table, column)
	if _, err := s.db.ExecContext(ctx, stmt, v, name, owner); err != nil {
		return storageErr("update", table, err)
	}
	return nil
}

// CloneTemplate implements Store.
func (s *SQLiteStore) CloneTemplate(ctx context.Context, table string, owner int64, section string) (int, error) {
	if err := checkWritable(table, owner); err != nil {
		return 0, err
	}
	if err := s.EnsureSheet(ctx, table); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("clone", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	scope := ""
	args := []any{owner}
	if section != "" {
		scope = " AND section = ?"
		args = append(args, section)
	}

	var existing int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE owner_id = ?%s`, table, scope)
	if err = tx.QueryRowContext(ctx, countQuery, args...).Scan(&existing); err != nil {
		return 0, storageErr("clone", table, err)
	}
	if existing > 0 {
		return 0, nil
	}

	copyArgs := []any{owner, sheet.TemplateOwner}
	if section != "" {
		copyArgs = append(copyArgs, section)
	}
	copyStmt := fmt.Sprintf(`
	INSERT INTO %[1]q (name, type, expression, display_text, value,
		selection_options, text_value, "column", "row", owner_id, section)
	SELECT name, type, expression, display_text, value,
		selection_options, text_value, "column", "row", ?, section
	FROM %[1]q WHERE owner_id = ?%[2]s ORDER BY id`, table, scope)

	res, err := tx.ExecContext(ctx, copyStmt, copyArgs...)
	if err != nil {
		return 0, storageErr("clone", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("clone", table, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, storageErr("clone", table, err)
	}
	return int(n), nil
}

// Insert implements Store.
func (s *SQLiteStore) Insert(ctx context.Context, table string, cells ...*sheet.Cell) error {
	if err := s.EnsureSheet(ctx, table); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("insert", table, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO %q (name, type, expression, display_text, value,
		selection_options, text_value, "column", "row", owner_id, section)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table))
	if err != nil {
		return storageErr("insert", table, err)
	}
	defer stmt.Close()

	for _, c := range cells {
		res, execErr := stmt.ExecContext(ctx,
			c.Name, string(c.Type), c.Expression, c.DisplayText, c.Value,
			c.SelectionOptions, c.TextValue, c.Column, c.Row, c.OwnerID, c.Section)
		if execErr != nil {
			return storageErr("insert", table, execErr)
		}
		if id, idErr := res.LastInsertId(); idErr == nil {
			c.ID = id
		}
	}

	if err = tx.Commit(); err != nil {
		return storageErr("insert", table, err)
	}
	return nil
}

// Owners implements Store.
func (s *SQLiteStore) Owners(ctx context.Context, table string) ([]int64, error) {
	if ok, err := s.exists(ctx, table); err != nil || !ok {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT owner_id FROM %q WHERE owner_id <> ? ORDER BY owner_id`, table),
		sheet.TemplateOwner)
	if err != nil {
		return nil, storageErr("owners", table, err)
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, storageErr("owners", table, err)
		}
		owners = append(owners, id)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("owners", table, err)
	}
	return owners, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context, table string, owner int64) (int, error) {
	if ok, err := s.exists(ctx, table); err != nil || !ok {
		return 0, err
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %q WHERE owner_id = ?`, table), owner).Scan(&n)
	if err != nil {
		return 0, storageErr("count", table, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCell(sc scanner) (*sheet.Cell, error) {
	var (
		c       sheet.Cell
		typeStr string
	)
	err := sc.Scan(&c.ID, &c.Name, &typeStr, &c.Expression, &c.DisplayText, &c.Value,
		&c.SelectionOptions, &c.TextValue, &c.Column, &c.Row, &c.OwnerID, &c.Section)
	if err != nil {
		return nil, err
	}
	c.Type = sheet.ParseCellType(typeStr)
	return &c, nil
}
