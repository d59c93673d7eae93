package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/engine/archive"
	"github.com/rendis/gridplaces/internal/engine/geo"
	"github.com/rendis/gridplaces/internal/engine/pipeline"
	"github.com/rendis/gridplaces/internal/engine/sheets"
	"github.com/rendis/gridplaces/internal/model"
	"github.com/rendis/gridplaces/internal/session"
	"github.com/rendis/gridplaces/internal/tui"
)

func runScan(args []string) error {
	p := config.DefaultProfile()
	if path := profileArg(args); path != "" {
		loaded, err := config.LoadProfile(path)
		if err != nil {
			return err
		}
		p = loaded
	}

	var (
		profilePath, saveProfile, region, mode string
		archiveRun, fingerprint, verbose      bool
		proxy                                 string
	)

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	fs.StringVar(&profilePath, "profile", "", "Load flags from a saved profile (JSON)")
	fs.StringVar(&saveProfile, "save-profile", "", "Save the effective settings to a profile (JSON)")
	fs.StringVar(&p.Keyword, "keyword", p.Keyword, "Search keyword")
	fs.StringVar(&p.PlaceType, "type", p.PlaceType, "Place type filter (e.g. bakery)")
	fs.Float64Var(&p.BBox.SWLat, "sw-lat", p.BBox.SWLat, "Southwest latitude")
	fs.Float64Var(&p.BBox.SWLon, "sw-lon", p.BBox.SWLon, "Southwest longitude")
	fs.Float64Var(&p.BBox.NELat, "ne-lat", p.BBox.NELat, "Northeast latitude")
	fs.Float64Var(&p.BBox.NELon, "ne-lon", p.BBox.NELon, "Northeast longitude")
	fs.StringVar(&p.URL, "url", p.URL, "Maps URL (@lat,lng,zoom) defining the region")
	fs.StringVar(&region, "region", "", "Place name to geocode into the region (e.g. \"Lyon, France\")")
	fs.StringVar(&p.Area, "area", p.Area, "GeoJSON polygon; tiles outside it are skipped")
	fs.IntVar(&p.LatSteps, "lat-steps", p.LatSteps, "Grid rows")
	fs.IntVar(&p.LonSteps, "lon-steps", p.LonSteps, "Grid columns")
	fs.IntVar(&p.RadiusMeters, "radius", p.RadiusMeters, "Search radius per tile in meters")
	fs.StringVar(&p.Language, "lang", p.Language, "Result language")
	fs.StringVar(&p.Output, "output", p.Output, "Output table (.csv, or .db for SQLite)")
	fs.StringVar(&mode, "mode", string(p.Mode), "create or append")
	fs.StringVar(&p.SheetID, "sheet", p.SheetID, "Spreadsheet ID to upload to after the run")
	fs.StringVar(&p.TabName, "tab", p.TabName, "Spreadsheet tab name")
	fs.StringVar(&p.CredentialsFile, "credentials", p.CredentialsFile, "Service account key (JSON)")
	fs.BoolVar(&archiveRun, "archive", false, "Copy the output to MinIO after the run")
	fs.BoolVar(&fingerprint, "fingerprint", false, "Use a browser TLS fingerprint")
	fs.StringVar(&proxy, "proxy", "", "HTTP/SOCKS5 proxy URL")
	fs.BoolVar(&verbose, "verbose", false, "Log every event to stderr")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gridplaces scan [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridplaces scan -keyword bakery -lat-steps 3 -lon-steps 3\n")
		fmt.Fprintf(os.Stderr, "  gridplaces scan -url \"https://www.google.com/maps/search/cafe/@45.76,4.83,14z\" -mode append\n")
		fmt.Fprintf(os.Stderr, "  gridplaces scan -keyword pharmacy -region \"Lyon, France\" -output lyon.db\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := model.ParseMode(mode)
	if err != nil {
		return err
	}
	p.Mode = m

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !set["lang"] && profilePath == "" {
		p.Language = cfg.Language
	}

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	switch {
	case set["url"]:
		p.InputMode = config.InputURL
	case region != "":
		p.InputMode = config.InputBounds
		fmt.Fprintf(os.Stderr, "Region: %s\n", region)
		box, err := geo.GeocodeRegion(ctx, region)
		if err != nil {
			return fmt.Errorf("geocoding region %q: %w", region, err)
		}
		p.BBox = box
	case set["sw-lat"] || set["sw-lon"] || set["ne-lat"] || set["ne-lon"]:
		p.InputMode = config.InputBounds
	}

	params, err := p.RunParams()
	if err != nil {
		return err
	}

	if saveProfile != "" {
		if err := config.SaveProfile(saveProfile, p); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Profile: %s\n", saveProfile)
	}

	stats := &pipeline.Stats{}
	opts := session.Options{Fingerprint: fingerprint, Proxy: proxy, Verbose: verbose, Stats: stats}
	if verbose {
		opts.Console = os.Stderr
	}
	s, err := session.New(ctx, cfg, params, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Fprintf(os.Stderr, "Log: %s\n", s.Log.Path)
	fmt.Fprintf(os.Stderr, "Region: %s\n", params.BBox)
	fmt.Fprintf(os.Stderr, "Grid: %dx%d tiles, radius=%dm, mode=%s\n",
		params.LatSteps, params.LonSteps, params.RadiusMeters, params.Mode)

	done := make(chan struct{})
	if !verbose {
		go reportProgress(stats, done)
	}
	res, err := s.Pipeline.Run(ctx, params)
	close(done)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("scan interrupted, %s left untouched", params.Output)
		}
		return fmt.Errorf("scan: %w", err)
	}

	printSummary(os.Stderr, params, res, apiUsage{Requests: s.Client.Requests(), RateLimits: s.Client.RateLimits()}, s.Log.Path)
	tui.SaveRecent(params.Output, res.Rows)

	if p.SheetID != "" {
		if err := uploadResult(ctx, cfg, p, res); err != nil {
			s.Log.Logger.Error().Err(err).Msg("UPLOAD_FAILED")
			return err
		}
	}

	if archiveRun {
		store, err := archive.NewMinIO(cfg.MinIO)
		if err != nil {
			return err
		}
		url, err := store.Put(ctx, params.Output, "runs")
		if err != nil {
			return fmt.Errorf("archiving: %w", err)
		}
		s.Log.Logger.Info().Str("url", url).Msg("ARCHIVED")
		fmt.Fprintf(os.Stderr, "Archived: %s\n", url)
	}
	return nil
}

func uploadResult(ctx context.Context, cfg *config.Config, p config.Profile, res *pipeline.Result) error {
	credsPath := p.CredentialsFile
	if credsPath == "" {
		credsPath = cfg.SheetsCredentialsFile
	}
	tab := p.TabName
	if tab == "" {
		tab = "Results"
	}
	up, err := newUploader(ctx, credsPath)
	if err != nil {
		return err
	}
	n, err := up.Upload(ctx, res.Table, p.SheetID, tab, p.Mode)
	if err != nil {
		return fmt.Errorf("uploading: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Uploaded %s rows to tab %q\n", humanize.Comma(int64(n)), tab)
	return nil
}

func newUploader(ctx context.Context, credsPath string) (*sheets.Uploader, error) {
	if credsPath == "" {
		return nil, fmt.Errorf("-credentials or SHEETS_CREDENTIALS_FILE is required for upload")
	}
	data, err := os.ReadFile(credsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return sheets.NewUploader(ctx, data)
}

func reportProgress(stats *pipeline.Stats, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := stats.Snapshot()
			fmt.Fprintf(os.Stderr, "\r[%s] tiles %d/%d | ids %d | details %d/%d | skipped %d | %s   ",
				s.State, s.TilesDone, s.TilesTotal, s.IDsFound,
				s.DetailsDone, s.DetailsTotal, s.TilesSkipped+s.DetailsSkipped,
				s.Elapsed.Truncate(time.Second))
		case <-done:
			fmt.Fprintln(os.Stderr)
			return
		}
	}
}

// apiUsage is what the places client spent on a run.
type apiUsage struct {
	Requests   int64
	RateLimits int64
}

func printSummary(w io.Writer, params model.RunParams, res *pipeline.Result, usage apiUsage, logPath string) {
	query := params.Keyword
	if params.PlaceType != "" {
		query = strings.TrimSpace(query + " [" + params.PlaceType + "]")
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "══════════════════════════════\n")
	fmt.Fprintf(w, "  gridplaces %s\n", res.Status)
	fmt.Fprintf(w, "══════════════════════════════\n")
	fmt.Fprintf(w, "  Query:      %s\n", query)
	fmt.Fprintf(w, "  Tiles:      %d (%d skipped)\n", res.Tiles, res.TilesSkipped)
	fmt.Fprintf(w, "  Places:     %s found, %d skipped\n", humanize.Comma(int64(res.IDs)), res.DetailsSkipped)
	fmt.Fprintf(w, "  New rows:   %s\n", humanize.Comma(int64(res.NewRows)))
	if params.Mode == model.ModeAppend {
		fmt.Fprintf(w, "  Prior:      %s (%d replaced)\n", humanize.Comma(int64(res.PriorRows)), res.Duplicates)
	}
	fmt.Fprintf(w, "  Total:      %s rows\n", humanize.Comma(int64(res.Rows)))
	fmt.Fprintf(w, "  API calls:  %s (%d rate limited)\n", humanize.Comma(usage.Requests), usage.RateLimits)
	fmt.Fprintf(w, "  Duration:   %s\n", res.Duration.Truncate(time.Second))
	fmt.Fprintf(w, "  Output:     %s\n", params.Output)
	fmt.Fprintf(w, "  Log:        %s\n", logPath)
	fmt.Fprintf(w, "══════════════════════════════\n")
}

// profileArg finds -profile before flag parsing so the profile can seed
// the flag defaults.
func profileArg(args []string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "profile" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
