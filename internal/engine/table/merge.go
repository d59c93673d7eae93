package table

import (
	"context"
	"fmt"
)

// Merge concatenates prior and fresh and deduplicates on KeyColumn, keeping
// the last occurrence so fresh rows replace prior ones. prior may be nil.
// It returns the merged table and how many rows were dropped as duplicates.
func Merge(prior, fresh *Table) (*Table, int, error) {
	if prior == nil {
		prior = New(fresh.columns)
	}
	combined, err := Concat(prior.Reindex(fresh.columns), fresh)
	if err != nil {
		return nil, 0, err
	}
	return combined.DedupeKeepLast(KeyColumn)
}

// Persist enforces the Columns order and writes the whole table to s.
func Persist(ctx context.Context, s Store, t *Table) error {
	final, err := t.Select(Columns)
	if err != nil {
		return err
	}
	if err := s.Save(ctx, final); err != nil {
		return fmt.Errorf("saving table: %w", err)
	}
	return nil
}
