package table

import (
	"context"
	"path/filepath"
	"strings"
)

// Store loads and fully rewrites a persisted table.
type Store interface {
	// Load returns ErrNotExist when nothing has been persisted yet and a
	// *ParseError when the content is malformed.
	Load(ctx context.Context) (*Table, error)
	Save(ctx context.Context, t *Table) error
	Close() error
}

// Open picks a store from the path extension: .db and .sqlite use SQLite,
// anything else is CSV.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewCSVStore(path), nil
	}
}
