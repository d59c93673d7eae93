package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rendis/gridplaces/internal/engine/geo"
	"github.com/rendis/gridplaces/internal/model"
)

// InputMode selects how a profile describes its region.
type InputMode string

const (
	InputBounds InputMode = "bounds"
	InputURL    InputMode = "url"
)

// DefaultURLKeyword is used when a maps URL carries no search term.
const DefaultURLKeyword = "restaurant"

// Profile is a saved scan form.
type Profile struct {
	InputMode    InputMode         `json:"input_mode"`
	URL          string            `json:"url,omitempty"`
	Keyword      string            `json:"keyword"`
	PlaceType    string            `json:"place_type,omitempty"`
	BBox         model.BoundingBox `json:"bbox"`
	LatSteps     int               `json:"lat_steps"`
	LonSteps     int               `json:"lon_steps"`
	RadiusMeters int               `json:"radius"`
	Language     string            `json:"language"`
	Output       string            `json:"output"`
	Mode         model.Mode        `json:"mode"`
	Area         string            `json:"area,omitempty"`

	SheetID         string `json:"sheet_id,omitempty"`
	TabName         string `json:"tab_name,omitempty"`
	CredentialsFile string `json:"credentials_file,omitempty"`
}

func DefaultProfile() Profile {
	return Profile{
		InputMode:    InputBounds,
		Keyword:      "",
		BBox:         model.BoundingBox{SWLat: 48.81, SWLon: 2.22, NELat: 48.90, NELon: 2.47},
		LatSteps:     10,
		LonSteps:     10,
		RadiusMeters: 1500,
		Language:     "en",
		Output:       "results.csv",
		Mode:         model.ModeCreate,
	}
}

func SaveProfile(path string, p Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// LoadProfile reads a profile; fields it omits keep their defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading profile: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return p, nil
}

// RunParams resolves the profile into pipeline input. In URL mode the region
// is the box around the URL's center and the URL's radius; the grid steps and
// per-tile radius still come from the profile.
func (p Profile) RunParams() (model.RunParams, error) {
	params := model.RunParams{
		Keyword:      strings.TrimSpace(p.Keyword),
		PlaceType:    strings.TrimSpace(p.PlaceType),
		BBox:         p.BBox,
		LatSteps:     p.LatSteps,
		LonSteps:     p.LonSteps,
		RadiusMeters: p.RadiusMeters,
		Language:     p.Language,
		Output:       p.Output,
		Mode:         p.Mode,
		Area:         p.Area,
	}
	if params.Mode == "" {
		params.Mode = model.ModeCreate
	}

	if p.InputMode == InputURL {
		region, err := geo.ParseMapsURL(p.URL)
		if err != nil {
			return params, err
		}
		box, err := region.BoundingBox()
		if err != nil {
			return params, err
		}
		params.BBox = box
		if params.Keyword == "" {
			params.Keyword = region.Keyword
		}
		if params.Keyword == "" && params.PlaceType == "" {
			params.Keyword = DefaultURLKeyword
		}
	}

	return params, params.Validate()
}
