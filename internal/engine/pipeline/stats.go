package pipeline

import (
	"sync/atomic"
	"time"
)

// State is the pipeline stage a run is in.
type State int32

const (
	StateIdle State = iota
	StateLoadExisting
	StateSearch
	StateCollectIDs
	StateFetchDetails
	StateMerge
	StatePersist
	StateDone
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateLoadExisting: "load-existing",
	StateSearch:       "search",
	StateCollectIDs:   "collect-ids",
	StateFetchDetails: "fetch-details",
	StateMerge:        "merge",
	StatePersist:      "persist",
	StateDone:         "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Stats are live counters updated by a running pipeline. Safe to read from
// any goroutine. The Done counters include skipped items.
type Stats struct {
	state atomic.Int32

	TilesTotal     atomic.Int64
	TilesDone      atomic.Int64
	TilesSkipped   atomic.Int64
	IDsFound       atomic.Int64
	DetailsTotal   atomic.Int64
	DetailsDone    atomic.Int64
	DetailsSkipped atomic.Int64
	PriorRows      atomic.Int64

	startedAt atomic.Int64
}

func (s *Stats) setState(st State) { s.state.Store(int32(st)) }

func (s *Stats) State() State { return State(s.state.Load()) }

// Snapshot is a plain copy of Stats.
type Snapshot struct {
	State          State
	TilesTotal     int
	TilesDone      int
	TilesSkipped   int
	IDsFound       int
	DetailsTotal   int
	DetailsDone    int
	DetailsSkipped int
	PriorRows      int
	Elapsed        time.Duration
}

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		State:          s.State(),
		TilesTotal:     int(s.TilesTotal.Load()),
		TilesDone:      int(s.TilesDone.Load()),
		TilesSkipped:   int(s.TilesSkipped.Load()),
		IDsFound:       int(s.IDsFound.Load()),
		DetailsTotal:   int(s.DetailsTotal.Load()),
		DetailsDone:    int(s.DetailsDone.Load()),
		DetailsSkipped: int(s.DetailsSkipped.Load()),
		PriorRows:      int(s.PriorRows.Load()),
	}
	if start := s.startedAt.Load(); start > 0 {
		snap.Elapsed = time.Since(time.Unix(0, start))
	}
	return snap
}
