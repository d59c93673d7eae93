package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rendis/gridplaces/internal/engine/table"
)

func runExport(args []string) error {
	var dbPath, tablePath, outputPath, format string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to a .db result table")
	fs.StringVar(&tablePath, "table", "", "Path to a .csv or .db result table")
	fs.StringVar(&outputPath, "output", "", "Output file path (default: next to the input)")
	fs.StringVar(&format, "format", "csv", "Export format: csv or geojson")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gridplaces export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridplaces export -db results.db\n")
		fmt.Fprintf(os.Stderr, "  gridplaces export -table results.csv -format geojson -output places.geojson\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	in := tablePath
	if in == "" {
		in = dbPath
	}
	if in == "" {
		return fmt.Errorf("-db or -table is required")
	}

	var ext string
	switch format {
	case "csv":
		ext = ".csv"
	case "geojson":
		ext = ".geojson"
	default:
		return fmt.Errorf("unsupported format: %s (csv or geojson)", format)
	}

	// Default output path
	if outputPath == "" {
		dir := filepath.Dir(in)
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		outputPath = filepath.Join(dir, base+ext)
	}
	if filepath.Clean(outputPath) == filepath.Clean(in) {
		return fmt.Errorf("output would overwrite the input %s", in)
	}

	store, err := table.Open(in)
	if err != nil {
		return err
	}
	defer store.Close()
	tbl, err := store.Load(context.Background())
	if err != nil {
		return fmt.Errorf("loading table: %w", err)
	}
	if tbl.Len() == 0 {
		return fmt.Errorf("no places found in %s", in)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	n := tbl.Len()
	if format == "geojson" {
		n, err = writeGeoJSON(f, tbl)
	} else {
		err = table.WriteCSV(f, tbl)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d places to %s\n", n, outputPath)
	return nil
}

// writeGeoJSON emits one point feature per row with a usable location.
func writeGeoJSON(w io.Writer, tbl *table.Table) (int, error) {
	fc := geojson.NewFeatureCollection()
	cols := tbl.Columns()
	for i := range tbl.Len() {
		lat, errLat := strconv.ParseFloat(tbl.Value(i, "latitude"), 64)
		lon, errLon := strconv.ParseFloat(tbl.Value(i, "longitude"), 64)
		if errLat != nil || errLon != nil {
			continue
		}
		feat := geojson.NewFeature(orb.Point{lon, lat})
		feat.ID = tbl.Value(i, "place_id")
		for _, c := range cols {
			feat.Properties[c] = tbl.Value(i, c)
		}
		fc.Append(feat)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return 0, err
	}
	return len(fc.Features), nil
}
