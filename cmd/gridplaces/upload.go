package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/engine/table"
	"github.com/rendis/gridplaces/internal/model"
)

func runUpload(args []string) error {
	var tablePath, sheetID, tab, mode, credsPath string
	var validateOnly bool

	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	fs.StringVar(&tablePath, "table", "results.csv", "Result table (.csv or .db)")
	fs.StringVar(&sheetID, "sheet", "", "Spreadsheet ID (required)")
	fs.StringVar(&tab, "tab", "Results", "Spreadsheet tab name")
	fs.StringVar(&mode, "mode", "create", "create (overwrite tab) or append (merge with tab)")
	fs.StringVar(&credsPath, "credentials", "", "Service account key (default: SHEETS_CREDENTIALS_FILE)")
	fs.BoolVar(&validateOnly, "validate-only", false, "Only check access to the spreadsheet")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gridplaces upload [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gridplaces upload -table results.csv -sheet 1AbC... -tab Paris -mode append\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if sheetID == "" {
		return fmt.Errorf("-sheet is required")
	}
	m, err := model.ParseMode(mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if credsPath == "" {
		credsPath = cfg.SheetsCredentialsFile
	}

	ctx := context.Background()
	up, err := newUploader(ctx, credsPath)
	if err != nil {
		return err
	}

	title, err := up.Validate(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("validating spreadsheet access: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Spreadsheet: %s\n", title)
	if validateOnly {
		return nil
	}

	store, err := table.Open(tablePath)
	if err != nil {
		return err
	}
	defer store.Close()
	tbl, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading table: %w", err)
	}

	n, err := up.Upload(ctx, tbl, sheetID, tab, m)
	if err != nil {
		return fmt.Errorf("uploading: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Uploaded %s rows to tab %q (%s)\n", humanize.Comma(int64(n)), tab, m)
	return nil
}
