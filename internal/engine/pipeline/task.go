package pipeline

import (
	"context"
	"sync"

	"github.com/rendis/gridplaces/internal/model"
)

// Task is a pipeline run on its own goroutine. It is awaitable and exposes
// live counters and the accumulated log to a foreground caller.
type Task struct {
	p      *Pipeline
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result *Result
	err    error
}

// Start launches p.Run(ctx, params) in the background.
func Start(ctx context.Context, p *Pipeline, params model.RunParams) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{p: p, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer cancel()
		res, err := p.Run(ctx, params)
		if err != nil {
			p.log.Error().Err(err).Msg("RUN_FAILED")
		}
		t.mu.Lock()
		t.result, t.err = res, err
		t.mu.Unlock()
	}()
	return t
}

// Wait blocks until the run ends.
func (t *Task) Wait() (*Result, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the run at the next tile or ID boundary.
func (t *Task) Cancel() { t.cancel() }

func (t *Task) Stats() Snapshot { return t.p.stats.Snapshot() }

// Status reports running until the run ends.
func (t *Task) Status() Status {
	select {
	case <-t.done:
	default:
		return StatusRunning
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return StatusFailed
	}
	return t.result.Status
}

// Log returns the lines accumulated so far, or nil when the pipeline has no
// log buffer.
func (t *Task) Log() []string {
	if t.p.opts.Buffer == nil {
		return nil
	}
	return t.p.opts.Buffer.Lines()
}
