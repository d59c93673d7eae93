// Package session wires configuration, logging and the places client into a
// ready-to-run pipeline. The headless scan and the TUI both start runs here.
package session

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/engine/cache"
	"github.com/rendis/gridplaces/internal/engine/pipeline"
	"github.com/rendis/gridplaces/internal/engine/places"
	"github.com/rendis/gridplaces/internal/logging"
	"github.com/rendis/gridplaces/internal/model"
)

// Options are per-run choices that are not part of RunParams.
type Options struct {
	// Fingerprint sends requests with a browser TLS fingerprint.
	Fingerprint bool
	Proxy       string
	Verbose     bool

	Console io.Writer
	Buffer  *logging.Buffer
	Stats   *pipeline.Stats
}

type Session struct {
	Pipeline *pipeline.Pipeline
	Client   *places.Client
	Log      *logging.Run

	cache *cache.Redis
}

// New prepares one run. It fails with places.ErrCredentialMissing when no API
// key is configured.
func New(ctx context.Context, cfg *config.Config, params model.RunParams, opts Options) (*Session, error) {
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Dir(params.Output)
	}
	base := strings.TrimSuffix(filepath.Base(params.Output), filepath.Ext(params.Output))
	run, err := logging.NewRun(logging.Options{
		Dir:     logDir,
		Name:    fmt.Sprintf("%s_%s", base, time.Now().Format("20060102_150405")),
		Console: opts.Console,
		Buffer:  opts.Buffer,
		Verbose: opts.Verbose,
	})
	if err != nil {
		return nil, err
	}
	s := &Session{Log: run}

	clientOpts := []places.Option{places.WithLogger(run.Logger)}
	if cfg.PlacesURL != "" {
		clientOpts = append(clientOpts, places.WithBaseURL(cfg.PlacesURL))
	}
	if opts.Fingerprint || opts.Proxy != "" {
		clientOpts = append(clientOpts, places.WithChromeTransport(opts.Proxy))
	}
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			run.Logger.Warn().Err(err).Msg("CACHE_DISABLED")
		} else {
			s.cache = rc
			clientOpts = append(clientOpts, places.WithDetailCache(rc))
		}
	}

	client, err := places.NewClient(cfg.APIKey, clientOpts...)
	if err != nil {
		run.Logger.Error().Err(err).Msg("CLIENT_FAILED")
		s.Close()
		return nil, err
	}
	s.Client = client

	popts := pipeline.DefaultOptions()
	popts.Logger = &run.Logger
	popts.Buffer = opts.Buffer
	popts.Stats = opts.Stats
	popts.RunID = run.ID
	s.Pipeline = pipeline.New(client, popts)
	return s, nil
}

func (s *Session) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return s.Log.Close()
}
