package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const utf8BOM = "\ufeff"

// CSVStore persists a table as a UTF-8 CSV file with a header row.
type CSVStore struct {
	Path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

func (s *CSVStore) Load(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, s.Path)
		}
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()
	return readCSV(ctx, f, s.Path)
}

func readCSV(ctx context.Context, r io.Reader, path string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Path: path, Err: errors.New("empty file")}
		}
		return nil, &ParseError{Path: path, Line: 1, Err: err}
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	t := New(header)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// Save rewrites the whole file through a temp file and rename.
func (s *CSVStore) Save(ctx context.Context, t *Table) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeCSV(ctx, tmp, t); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	return nil
}

// WriteCSV encodes t with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	return writeCSV(context.Background(), w, t)
}

func writeCSV(ctx context.Context, w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range t.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *CSVStore) Close() error { return nil }
