// Package pipeline runs a grid search end to end: load the prior table,
// search every tile, fetch details, merge and persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rendis/gridplaces/internal/engine/geo"
	"github.com/rendis/gridplaces/internal/engine/normalize"
	"github.com/rendis/gridplaces/internal/engine/places"
	"github.com/rendis/gridplaces/internal/engine/table"
	"github.com/rendis/gridplaces/internal/logging"
	"github.com/rendis/gridplaces/internal/model"
)

const (
	DefaultTileDelay   = 100 * time.Millisecond
	DefaultDetailDelay = 50 * time.Millisecond
)

// Gateway is the subset of the places client the pipeline needs.
type Gateway interface {
	NearbySearch(ctx context.Context, req places.NearbyRequest) (*places.IDSet, error)
	PlaceDetail(ctx context.Context, placeID string, fields []string, language string) (*model.RawDetail, bool)
}

// Options tunes a pipeline. The zero value runs without delays.
type Options struct {
	TileDelay   time.Duration
	DetailDelay time.Duration

	Logger *zerolog.Logger
	// Buffer, when set, is the in-memory sink of Logger and backs Task.Log.
	Buffer *logging.Buffer
	// Stats allows passing an external Stats for live progress.
	Stats *Stats
	RunID string

	// Now stamps created_at. Defaults to time.Now.
	Now func() time.Time
	// OpenStore resolves the output path. Defaults to table.Open.
	OpenStore func(path string) (table.Store, error)
}

// DefaultOptions returns the rate-limit friendly delays.
func DefaultOptions() Options {
	return Options{
		TileDelay:   DefaultTileDelay,
		DetailDelay: DefaultDetailDelay,
	}
}

type Pipeline struct {
	gw    Gateway
	opts  Options
	log   zerolog.Logger
	stats *Stats
}

func New(gw Gateway, opts Options) *Pipeline {
	p := &Pipeline{gw: gw, opts: opts, log: zerolog.Nop(), stats: opts.Stats}
	if opts.Logger != nil {
		p.log = *opts.Logger
	}
	p.log = p.log.With().Str("component", "pipeline").Logger()
	if p.stats == nil {
		p.stats = &Stats{}
	}
	if p.opts.Now == nil {
		p.opts.Now = time.Now
	}
	if p.opts.OpenStore == nil {
		p.opts.OpenStore = table.Open
	}
	return p
}

// Stats returns the live counters of this pipeline.
func (p *Pipeline) Stats() *Stats { return p.stats }

// Status of a run. A partial run skipped tiles or IDs but still produced
// its table and returned no error; the skips are in the log.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

type Result struct {
	Status         Status
	RunID          string
	Output         string
	Rows           int
	PriorRows      int
	NewRows        int
	Duplicates     int
	Tiles          int
	TilesSkipped   int
	IDs            int
	DetailsSkipped int
	Duration       time.Duration

	Table *table.Table
}

// Run executes one pass. It only fails on invalid parameters, an unreadable
// area file, cancellation, a schema mismatch or a write failure at persist.
func (p *Pipeline) Run(ctx context.Context, params model.RunParams) (*Result, error) {
	start := time.Now()
	p.stats.startedAt.Store(start.UnixNano())
	defer p.stats.setState(StateDone)

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run parameters: %w", err)
	}

	log := p.log
	log.Info().
		Str("keyword", params.Keyword).Str("type", params.PlaceType).
		Str("bbox", params.BBox.String()).
		Int("lat_steps", params.LatSteps).Int("lon_steps", params.LonSteps).
		Int("radius", params.RadiusMeters).Str("mode", string(params.Mode)).
		Str("output", params.Output).
		Msg("SESSION_START")

	store, err := p.opts.OpenStore(params.Output)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}
	defer store.Close()

	res := &Result{Status: StatusSuccess, RunID: p.opts.RunID, Output: params.Output}

	p.stats.setState(StateLoadExisting)
	var prior *table.Table
	if params.Mode == model.ModeAppend {
		prior = p.loadExisting(ctx, store)
		if prior != nil {
			res.PriorRows = prior.Len()
			p.stats.PriorRows.Store(int64(prior.Len()))
		}
	}

	p.stats.setState(StateSearch)
	ids, err := p.search(ctx, params, res)
	if err != nil {
		return nil, err
	}

	p.stats.setState(StateCollectIDs)
	res.IDs = ids.Len()
	var final *table.Table
	if ids.Len() == 0 {
		log.Info().Msg("NO_IDS keeping prior table")
		final = prior
		if final == nil {
			final = table.New(table.Columns)
		}
	} else {
		p.stats.setState(StateFetchDetails)
		rows, err := p.fetchDetails(ctx, ids, params, res)
		if err != nil {
			return nil, err
		}

		p.stats.setState(StateMerge)
		fresh := table.FromPlaces(rows)
		res.NewRows = fresh.Len()
		final, res.Duplicates, err = table.Merge(prior, fresh)
		if err != nil {
			return nil, fmt.Errorf("merging tables: %w", err)
		}
	}

	p.stats.setState(StatePersist)
	if err := table.Persist(ctx, store, final); err != nil {
		log.Error().Err(err).Msg("PERSIST_FAILED")
		return nil, err
	}

	res.Rows = final.Len()
	res.Table = final
	res.Duration = time.Since(start)
	if res.TilesSkipped > 0 || res.DetailsSkipped > 0 {
		res.Status = StatusPartial
	}
	log.Info().
		Int("rows", res.Rows).Int("new", res.NewRows).Int("prior", res.PriorRows).
		Int("duplicates", res.Duplicates).Int("tiles_skipped", res.TilesSkipped).
		Int("details_skipped", res.DetailsSkipped).Dur("elapsed", res.Duration).
		Str("status", string(res.Status)).
		Msg("DONE")
	return res, nil
}

func (p *Pipeline) loadExisting(ctx context.Context, store table.Store) *table.Table {
	t, err := store.Load(ctx)
	switch {
	case errors.Is(err, table.ErrNotExist):
		p.log.Info().Msg("NO_PRIOR_TABLE")
		return nil
	case err != nil:
		p.log.Error().Err(err).Msg("PRIOR_TABLE_UNREADABLE starting empty")
		return nil
	}
	p.log.Info().Int("rows", t.Len()).Msg("PRIOR_TABLE")
	return t.Reindex(table.Columns)
}

func (p *Pipeline) search(ctx context.Context, params model.RunParams, res *Result) (*places.IDSet, error) {
	points := geo.GenerateGrid(params.BBox, params.LatSteps, params.LonSteps)
	if params.Area != "" {
		area, err := geo.LoadArea(params.Area)
		if err != nil {
			return nil, fmt.Errorf("loading area: %w", err)
		}
		before := len(points)
		points = geo.FilterTiles(points, area)
		p.log.Info().Int("tiles", len(points)).Int("dropped", before-len(points)).Msg("AREA_FILTER")
	}
	res.Tiles = len(points)
	p.stats.TilesTotal.Store(int64(len(points)))

	ids := places.NewIDSet()
	for i, pt := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := sleep(ctx, p.opts.TileDelay); err != nil {
				return nil, err
			}
		}

		found, err := p.gw.NearbySearch(ctx, places.NearbyRequest{
			Point:     pt,
			Radius:    params.RadiusMeters,
			Keyword:   params.Keyword,
			PlaceType: params.PlaceType,
			Language:  params.Language,
		})
		if err != nil {
			res.TilesSkipped++
			p.stats.TilesSkipped.Add(1)
			p.log.Warn().Err(err).
				Int("row", pt.Row).Int("col", pt.Col).
				Float64("lat", pt.Lat).Float64("lon", pt.Lon).
				Msg("TILE_SKIPPED")
		} else {
			added := ids.AddAll(found)
			p.log.Debug().Int("row", pt.Row).Int("col", pt.Col).
				Int("found", found.Len()).Int("new", added).Msg("TILE")
		}
		p.stats.TilesDone.Add(1)
		p.stats.IDsFound.Store(int64(ids.Len()))
	}
	p.log.Info().Int("tiles", len(points)).Int("ids", ids.Len()).Msg("SEARCH_DONE")
	return ids, nil
}

func (p *Pipeline) fetchDetails(ctx context.Context, ids *places.IDSet, params model.RunParams, res *Result) ([]model.PlaceRow, error) {
	p.stats.DetailsTotal.Store(int64(ids.Len()))

	rows := make([]model.PlaceRow, 0, ids.Len())
	for i, id := range ids.IDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := sleep(ctx, p.opts.DetailDelay); err != nil {
				return nil, err
			}
		}

		raw, ok := p.gw.PlaceDetail(ctx, id, model.DetailFields, params.Language)
		p.stats.DetailsDone.Add(1)
		if !ok {
			res.DetailsSkipped++
			p.stats.DetailsSkipped.Add(1)
			p.log.Warn().Str("place_id", id).Msg("DETAIL_SKIPPED")
			continue
		}
		rows = append(rows, normalize.Normalize(*raw, params.Keyword, p.opts.Now()))
	}
	return rows, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
