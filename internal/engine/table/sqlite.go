package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

const snapshotTable = "places"

// SQLiteStore keeps the table as a single snapshot table in a SQLite file.
// Every Save drops and recreates it inside one transaction.
type SQLiteStore struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return &SQLiteStore{path: dbPath, db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Table, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, s.path)
	}

	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", snapshotTable).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s has no %s table", ErrNotExist, s.path, snapshotTable)
	}
	if err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(snapshotTable)+" ORDER BY rowid")
	if err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}

	t := New(cols)
	vals := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ParseError{Path: s.path, Line: t.Len() + 1, Err: err}
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			rec[i] = v.String
		}
		t.rows = append(t.rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	return t, nil
}

func (s *SQLiteStore) Save(ctx context.Context, t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	quoted := make([]string, len(t.columns))
	defs := make([]string, len(t.columns))
	marks := make([]string, len(t.columns))
	for i, c := range t.columns {
		quoted[i] = quoteIdent(c)
		defs[i] = quoted[i] + " TEXT"
		marks[i] = "?"
	}

	stmts := []string{
		"DROP TABLE IF EXISTS " + quoteIdent(snapshotTable),
		fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(snapshotTable), strings.Join(defs, ", ")),
	}
	if _, ok := t.index[KeyColumn]; ok {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX idx_places_place_id ON %s(%s)",
			quoteIdent(snapshotTable), quoteIdent(KeyColumn)))
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("recreating snapshot: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(snapshotTable), strings.Join(quoted, ", "), strings.Join(marks, ",")))
	if err != nil {
		return fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.columns))
	for _, r := range t.rows {
		for i, v := range r {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}
	return nil
}

// Count returns the number of persisted rows.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
