package table

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/model"
)

func place(id, name string) model.PlaceRow {
	return model.PlaceRow{PlaceID: id, Name: name, CreatedAt: "2024-01-01 00:00:00"}
}

func names(t *Table) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.Value(i, "name")
	}
	return out
}

func TestFromPlaces_UsesSchema(t *testing.T) {
	tbl := FromPlaces([]model.PlaceRow{place("A", "alpha")})
	assert.Equal(t, Columns, tbl.Columns())
	assert.Len(t, Columns, 30)
	assert.Equal(t, "alpha", tbl.Value(0, "name"))
	assert.Equal(t, "2024-01-01 00:00:00", tbl.Value(0, "created_at"))
}

func TestReindex_FillsMissingAndDropsUnknown(t *testing.T) {
	tbl := New([]string{"name", "extra", "place_id"})
	require.NoError(t, tbl.Append([]string{"alpha", "x", "A"}))

	out := tbl.Reindex([]string{"place_id", "name", "rating"})

	assert.Equal(t, []string{"place_id", "name", "rating"}, out.Columns())
	assert.Equal(t, []string{"A", "alpha", ""}, out.Row(0))
}

func TestSelect_MissingColumn(t *testing.T) {
	tbl := New([]string{"place_id", "name"})
	_, err := tbl.Select(Columns)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))

	ok, err := tbl.Reindex(Columns).Select(Columns)
	require.NoError(t, err)
	assert.Equal(t, Columns, ok.Columns())
}

func TestAppend_LengthMismatch(t *testing.T) {
	tbl := New([]string{"a", "b"})
	assert.Error(t, tbl.Append([]string{"only"}))
}

func TestDedupeKeepLast(t *testing.T) {
	tbl := New([]string{"place_id", "name"})
	for _, r := range [][]string{{"A", "a1"}, {"B", "b1"}, {"A", "a2"}, {"C", "c1"}, {"B", "b2"}} {
		require.NoError(t, tbl.Append(r))
	}

	out, dropped, err := tbl.DedupeKeepLast("place_id")
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"a2", "c1", "b2"}, names(out))
}

func TestMerge_NewRowsWin(t *testing.T) {
	prior := FromPlaces([]model.PlaceRow{place("P1", "old one"), place("P0", "kept")})
	fresh := FromPlaces([]model.PlaceRow{place("P1", "new one"), place("P2", "two")})

	merged, dups, err := Merge(prior, fresh)
	require.NoError(t, err)

	assert.Equal(t, 1, dups)
	assert.Equal(t, []string{"kept", "new one", "two"}, names(merged))
}

func TestMerge_PriorWithFewerColumns(t *testing.T) {
	prior := New([]string{"place_id", "name"})
	require.NoError(t, prior.Append([]string{"P0", "legacy"}))
	fresh := FromPlaces([]model.PlaceRow{place("P1", "one")})

	merged, _, err := Merge(prior, fresh)
	require.NoError(t, err)

	assert.Equal(t, Columns, merged.Columns())
	assert.Equal(t, "legacy", merged.Value(0, "name"))
	assert.Equal(t, "", merged.Value(0, "created_at"))
}

func TestMerge_NilPrior(t *testing.T) {
	fresh := FromPlaces([]model.PlaceRow{place("P1", "one"), place("P1", "one again")})
	merged, dups, err := Merge(nil, fresh)
	require.NoError(t, err)
	assert.Equal(t, 1, dups)
	assert.Equal(t, []string{"one again"}, names(merged))
}

type memStore struct{ saved *Table }

func (m *memStore) Load(context.Context) (*Table, error) { return nil, ErrNotExist }
func (m *memStore) Save(_ context.Context, t *Table) error {
	m.saved = t
	return nil
}
func (m *memStore) Close() error { return nil }

func TestPersist(t *testing.T) {
	st := &memStore{}

	err := Persist(context.Background(), st, New([]string{"place_id"}))
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Nil(t, st.saved)

	shuffled := New(append([]string{"extra"}, Columns...))
	require.NoError(t, Persist(context.Background(), st, shuffled))
	assert.Equal(t, Columns, st.saved.Columns())
}
