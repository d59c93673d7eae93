package table

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/model"
)

func sample() *Table {
	return FromPlaces([]model.PlaceRow{
		{PlaceID: "P1", Name: "Café, \"Le\" Coin", Address: "1 Rue A\nParis", CreatedAt: "2024-01-01 10:00:00"},
		{PlaceID: "P2", Name: "Boulangerie", PriceLevel: "$$", CreatedAt: "2024-01-01 10:00:01"},
	})
}

func TestCSVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	st := NewCSVStore(path)

	require.NoError(t, st.Save(ctx, sample()))
	got, err := st.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, Columns, got.Columns())
	assert.Equal(t, sample().rows, got.rows)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not survive")
}

func TestCSVStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	st := NewCSVStore(filepath.Join(t.TempDir(), "results.csv"))

	require.NoError(t, st.Save(ctx, sample()))
	require.NoError(t, st.Save(ctx, New(Columns)))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestCSVStore_Missing(t *testing.T) {
	_, err := NewCSVStore(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestCSVStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("place_id,name\nP1,a,extra\n"), 0o644))

	_, err := NewCSVStore(path).Load(context.Background())
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, path, perr.Path)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = NewCSVStore(empty).Load(context.Background())
	assert.True(t, errors.As(err, &perr))
}

func TestCSVStore_StripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffplace_id,name\nP1,a\n"), 0o644))

	got, err := NewCSVStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"place_id", "name"}, got.Columns())
	assert.Equal(t, "P1", got.Value(0, "place_id"))
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	st, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Load(ctx)
	assert.True(t, errors.Is(err, ErrNotExist))

	require.NoError(t, st.Save(ctx, sample()))
	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Columns, got.Columns())
	assert.Equal(t, sample().rows, got.rows)

	require.NoError(t, st.Save(ctx, FromPlaces([]model.PlaceRow{{PlaceID: "P9"}})))
	got, err = st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "P9", got.Value(0, KeyColumn))
}

func TestOpen_ByExtension(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.IsType(t, &CSVStore{}, s)

	s, err = Open(filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)
}
