package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/engine/places"
	"github.com/rendis/gridplaces/internal/engine/table"
	"github.com/rendis/gridplaces/internal/logging"
	"github.com/rendis/gridplaces/internal/model"
)

// stubGateway answers searches per tile call and details from a map.
type stubGateway struct {
	mu       sync.Mutex
	tiles    [][]string
	tileErr  map[int]error
	details  map[string]*model.RawDetail
	searches int
	lookups  []string
}

func (s *stubGateway) NearbySearch(_ context.Context, req places.NearbyRequest) (*places.IDSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.searches
	s.searches++
	if err := s.tileErr[i]; err != nil {
		return nil, err
	}
	ids := places.NewIDSet()
	if i < len(s.tiles) {
		for _, id := range s.tiles[i] {
			ids.Add(id)
		}
	}
	return ids, nil
}

func (s *stubGateway) PlaceDetail(_ context.Context, id string, _ []string, _ string) (*model.RawDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, id)
	d, ok := s.details[id]
	return d, ok
}

func detail(id, name string) *model.RawDetail {
	return &model.RawDetail{PlaceID: id, Name: name, Types: []string{"bakery"}}
}

var (
	paris   = model.BoundingBox{SWLat: 48.81, SWLon: 2.22, NELat: 48.90, NELon: 2.47}
	fixedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
)

func params(t *testing.T, latSteps, lonSteps int) model.RunParams {
	return model.RunParams{
		Keyword:      "bakery",
		BBox:         paris,
		LatSteps:     latSteps,
		LonSteps:     lonSteps,
		RadiusMeters: 1500,
		Language:     "en",
		Output:       filepath.Join(t.TempDir(), "results.csv"),
		Mode:         model.ModeCreate,
	}
}

func newPipeline(gw Gateway) *Pipeline {
	return New(gw, Options{Now: func() time.Time { return fixedAt }})
}

func load(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := table.NewCSVStore(path).Load(context.Background())
	require.NoError(t, err)
	return tbl
}

func TestRun_EndToEndSingleTile(t *testing.T) {
	gw := &stubGateway{
		tiles:   [][]string{{"P1", "P2"}},
		details: map[string]*model.RawDetail{"P1": detail("P1", "Alpha"), "P2": detail("P2", "Beta")},
	}
	p := params(t, 1, 1)

	res, err := newPipeline(gw).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, gw.searches)
	assert.Equal(t, 2, res.Rows)

	out := load(t, p.Output)
	assert.Equal(t, table.Columns, out.Columns())
	require.Equal(t, 2, out.Len())
	seen := map[string]bool{}
	for i := range out.Len() {
		assert.Equal(t, "bakery", out.Value(i, "query"))
		assert.Equal(t, "2024-05-01 09:30:00", out.Value(i, "created_at"))
		id := out.Value(i, "place_id")
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestRun_DetailAbsenceIsNonFatal(t *testing.T) {
	gw := &stubGateway{
		tiles:   [][]string{{"P1", "P2", "P3"}},
		details: map[string]*model.RawDetail{"P1": detail("P1", "a"), "P3": detail("P3", "c")},
	}

	res, err := newPipeline(gw).Run(context.Background(), params(t, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{"P1", "P2", "P3"}, gw.lookups)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 1, res.DetailsSkipped)
	assert.Equal(t, StatusPartial, res.Status)
}

func TestRun_TileErrorIsSkipped(t *testing.T) {
	gw := &stubGateway{
		tiles:   [][]string{{"P1"}, nil, {"P1", "P2"}, {"P3"}},
		tileErr: map[int]error{1: &places.APIError{Status: "OVER_QUERY_LIMIT"}},
		details: map[string]*model.RawDetail{
			"P1": detail("P1", "a"), "P2": detail("P2", "b"), "P3": detail("P3", "c"),
		},
	}
	buf := logging.NewBuffer(100)
	run, err := logging.NewRun(logging.Options{Buffer: buf})
	require.NoError(t, err)

	stats := &Stats{}
	pl := New(gw, Options{Logger: &run.Logger, Buffer: buf, Stats: stats})
	res, err := pl.Run(context.Background(), params(t, 2, 2))
	require.NoError(t, err)

	assert.Equal(t, 4, gw.searches)
	assert.Equal(t, 1, res.TilesSkipped)
	assert.Equal(t, 3, res.IDs, "cross-tile duplicates collapse")
	assert.Equal(t, 3, res.Rows)

	snap := stats.Snapshot()
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, 4, snap.TilesDone)
	assert.Equal(t, 1, snap.TilesSkipped)
	assert.Equal(t, 3, snap.DetailsDone)

	var skipped string
	for _, l := range buf.Lines() {
		if strings.Contains(l, "TILE_SKIPPED") {
			skipped = l
		}
	}
	require.NotEmpty(t, skipped)
	assert.Contains(t, skipped, "row=0")
	assert.Contains(t, skipped, "col=1")
}

func TestRun_AppendMergesAndNewRowsWin(t *testing.T) {
	p := params(t, 1, 1)
	p.Mode = model.ModeAppend

	prior := table.New([]string{"place_id", "name"})
	require.NoError(t, prior.Append([]string{"A", "Old"}))
	require.NoError(t, prior.Append([]string{"Z", "Kept"}))
	require.NoError(t, table.NewCSVStore(p.Output).Save(context.Background(), prior))

	gw := &stubGateway{
		tiles:   [][]string{{"A", "B"}},
		details: map[string]*model.RawDetail{"A": detail("A", "New"), "B": detail("B", "Bee")},
	}

	res, err := newPipeline(gw).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PriorRows)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 3, res.Rows)

	out := load(t, p.Output)
	assert.Equal(t, table.Columns, out.Columns())
	names := map[string]string{}
	for i := range out.Len() {
		names[out.Value(i, "place_id")] = out.Value(i, "name")
	}
	assert.Equal(t, map[string]string{"Z": "Kept", "A": "New", "B": "Bee"}, names)
}

func TestRun_CreateModeIgnoresPrior(t *testing.T) {
	p := params(t, 1, 1)
	prior := table.FromPlaces([]model.PlaceRow{{PlaceID: "OLD"}})
	require.NoError(t, table.NewCSVStore(p.Output).Save(context.Background(), prior))

	gw := &stubGateway{tiles: [][]string{{"P1"}}, details: map[string]*model.RawDetail{"P1": detail("P1", "a")}}
	res, err := newPipeline(gw).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "P1", load(t, p.Output).Value(0, "place_id"))
}

func TestRun_EmptyIDSetKeepsPrior(t *testing.T) {
	p := params(t, 1, 1)
	p.Mode = model.ModeAppend
	prior := table.FromPlaces([]model.PlaceRow{{PlaceID: "A", Name: "kept"}})
	require.NoError(t, table.NewCSVStore(p.Output).Save(context.Background(), prior))

	gw := &stubGateway{tiles: [][]string{{}}}
	res, err := newPipeline(gw).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Empty(t, gw.lookups)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "kept", load(t, p.Output).Value(0, "name"))
}

func TestRun_EmptyIDSetWithoutPriorWritesHeader(t *testing.T) {
	p := params(t, 1, 1)
	gw := &stubGateway{tiles: [][]string{{}}}

	res, err := newPipeline(gw).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)

	out := load(t, p.Output)
	assert.Equal(t, table.Columns, out.Columns())
	assert.Equal(t, 0, out.Len())
}

func TestRun_MalformedPriorStartsEmpty(t *testing.T) {
	p := params(t, 1, 1)
	p.Mode = model.ModeAppend
	require.NoError(t, os.WriteFile(p.Output, []byte("place_id,name\nA,x,extra\n"), 0o644))

	gw := &stubGateway{tiles: [][]string{{"P1"}}, details: map[string]*model.RawDetail{"P1": detail("P1", "a")}}
	res, err := newPipeline(gw).Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 0, res.PriorRows)
	assert.Equal(t, 1, res.Rows)
}

type failingStore struct{ table.Store }

func (failingStore) Load(context.Context) (*table.Table, error) { return nil, table.ErrNotExist }
func (failingStore) Save(context.Context, *table.Table) error {
	return errors.New("disk full")
}
func (failingStore) Close() error { return nil }

func TestRun_PersistFailureIsReturned(t *testing.T) {
	gw := &stubGateway{tiles: [][]string{{"P1"}}, details: map[string]*model.RawDetail{"P1": detail("P1", "a")}}
	pl := New(gw, Options{OpenStore: func(string) (table.Store, error) { return failingStore{}, nil }})

	_, err := pl.Run(context.Background(), params(t, 1, 1))
	assert.ErrorContains(t, err, "disk full")
}

func TestRun_InvalidParams(t *testing.T) {
	p := params(t, 1, 1)
	p.RadiusMeters = 0
	_, err := newPipeline(&stubGateway{}).Run(context.Background(), p)
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline(&stubGateway{}).Run(ctx, params(t, 2, 2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStart_TaskHandle(t *testing.T) {
	gw := &stubGateway{
		tiles:   [][]string{{"P1", "P2"}},
		details: map[string]*model.RawDetail{"P1": detail("P1", "a")},
	}
	buf := logging.NewBuffer(50)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: buf, NoColor: true})
	pl := New(gw, Options{Logger: &logger, Buffer: buf})

	task := Start(context.Background(), pl, params(t, 1, 1))
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("task did not finish")
	}

	res, err := task.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, StatusPartial, task.Status())
	assert.Equal(t, 2, task.Stats().DetailsDone)
	assert.NotEmpty(t, task.Log())
}

func TestStart_FailedTask(t *testing.T) {
	p := params(t, 1, 1)
	p.Output = ""
	task := Start(context.Background(), newPipeline(&stubGateway{}), p)

	_, err := task.Wait()
	assert.Error(t, err)
	assert.Equal(t, StatusFailed, task.Status())
	assert.Nil(t, task.Log())
}
