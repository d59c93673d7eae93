// Package logging builds the per-run zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options selects the sinks of a run logger. Any of them may be empty.
type Options struct {
	// Dir receives <Name>.log as JSON lines.
	Dir  string
	Name string

	// Console gets human-readable output (stderr for the headless scan).
	Console io.Writer

	// Buffer keeps a bounded tail of human-readable lines in memory.
	Buffer *Buffer

	// Verbose enables debug events.
	Verbose bool
}

// Run is a logger tagged with a fresh run_id plus the file it writes to.
type Run struct {
	Logger zerolog.Logger
	ID     string
	Path   string

	file *os.File
}

func NewRun(opts Options) (*Run, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	run := &Run{ID: uuid.NewString()}

	var writers []io.Writer
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		name := opts.Name
		if name == "" {
			name = "gridplaces"
		}
		run.Path = filepath.Join(opts.Dir, name+".log")
		f, err := os.OpenFile(run.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log: %w", err)
		}
		run.file = f
		writers = append(writers, f)
	}
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.TimeOnly})
	}
	if opts.Buffer != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Buffer, TimeFormat: time.TimeOnly, NoColor: true})
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	run.Logger = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("run_id", run.ID).
		Logger()
	return run, nil
}

func (r *Run) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
