// Package sheets uploads a result table to a spreadsheet tab through the
// Sheets v4 API.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/rendis/gridplaces/internal/engine/table"
	"github.com/rendis/gridplaces/internal/model"
)

const (
	DefaultBaseURL = "https://sheets.googleapis.com/"
	Scope          = sheetsapi.SpreadsheetsScope
)

type Uploader struct {
	svc *sheetsapi.Service
	log zerolog.Logger
}

// NewUploader authenticates with a service account JSON key.
func NewUploader(ctx context.Context, credentialsJSON []byte) (*Uploader, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials: %w", err)
	}
	return NewUploaderWithClient(ctx, oauth2.NewClient(ctx, creds.TokenSource), DefaultBaseURL)
}

// NewUploaderWithClient uses an already authorized client against baseURL.
func NewUploaderWithClient(ctx context.Context, httpClient *http.Client, baseURL string) (*Uploader, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	svc, err := sheetsapi.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(strings.TrimRight(baseURL, "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Uploader{svc: svc, log: zerolog.Nop()}, nil
}

func (u *Uploader) WithLogger(l zerolog.Logger) *Uploader {
	u.log = l.With().Str("component", "sheets").Logger()
	return u
}

// Validate checks that the spreadsheet is reachable and returns its title.
func (u *Uploader) Validate(ctx context.Context, spreadsheetID string) (string, error) {
	s, err := u.get(ctx, spreadsheetID)
	if err != nil {
		return "", err
	}
	return s.Properties.Title, nil
}

// Upload writes tbl to the tab. In create mode the tab is overwritten. In
// append mode the existing tab rows are merged first, newer rows winning on
// place_id. It returns the number of data rows written.
func (u *Uploader) Upload(ctx context.Context, tbl *table.Table, spreadsheetID, tab string, mode model.Mode) (int, error) {
	s, err := u.get(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}

	exists := false
	for _, sh := range s.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			exists = true
			break
		}
	}
	if !exists {
		if err := u.addSheet(ctx, spreadsheetID, tab); err != nil {
			return 0, err
		}
		u.log.Info().Str("tab", tab).Msg("TAB_CREATED")
	}

	final := tbl.Reindex(table.Columns)
	if mode == model.ModeAppend && exists {
		prior, err := u.readTab(ctx, spreadsheetID, tab)
		if err != nil {
			return 0, err
		}
		if prior != nil {
			var dups int
			final, dups, err = table.Merge(prior, final)
			if err != nil {
				return 0, err
			}
			u.log.Info().Int("prior", prior.Len()).Int("duplicates", dups).Msg("TAB_MERGED")
		}
	}

	rng := sheetRange(tab)
	if _, err := u.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clearing tab: %w", err)
	}

	values := make([][]any, 0, final.Len()+1)
	values = append(values, cells(final.Columns()))
	for i := range final.Len() {
		values = append(values, cells(final.Row(i)))
	}
	vr := &sheetsapi.ValueRange{
		Range:          rng + "!A1",
		MajorDimension: "ROWS",
		Values:         values,
	}
	if _, err := u.svc.Spreadsheets.Values.Update(spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("writing tab: %w", err)
	}

	u.log.Info().Str("tab", tab).Int("rows", final.Len()).Str("mode", string(mode)).Msg("UPLOADED")
	return final.Len(), nil
}

func (u *Uploader) get(ctx context.Context, spreadsheetID string) (*sheetsapi.Spreadsheet, error) {
	s, err := u.svc.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title", "sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet: %w", err)
	}
	if s.Properties == nil {
		s.Properties = &sheetsapi.SpreadsheetProperties{}
	}
	return s, nil
}

func (u *Uploader) addSheet(ctx context.Context, spreadsheetID, tab string) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: tab},
			},
		}},
	}
	if _, err := u.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("adding tab %q: %w", tab, err)
	}
	return nil
}

// readTab loads the tab as a table. Short rows are padded to the header.
func (u *Uploader) readTab(ctx context.Context, spreadsheetID, tab string) (*table.Table, error) {
	resp, err := u.svc.Spreadsheets.Values.Get(spreadsheetID, sheetRange(tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading tab: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	header := texts(resp.Values[0])
	t := table.New(header)
	for _, r := range resp.Values[1:] {
		rec := make([]string, len(header))
		copy(rec, texts(r))
		if err := t.Append(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func texts(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// sheetRange quotes a tab title for A1 notation.
func sheetRange(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
