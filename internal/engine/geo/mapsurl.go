package geo

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/rendis/gridplaces/internal/model"
)

var (
	// @48.8582602,2.2944965,17z or @48.8678444,2.2874891,17453m
	atRegex     = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+),(\d+(?:\.\d+)?)(z|m)?`)
	searchRegex = regexp.MustCompile(`/search/([^/@]+)`)

	ErrNoCoordinates = errors.New("no @lat,lng coordinates in maps URL")
)

// MapsURLRegion is the search area and keyword extracted from a maps URL.
type MapsURLRegion struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Keyword      string
}

// BoundingBox expands the region's center and radius into a bounding box.
func (r MapsURLRegion) BoundingBox() (model.BoundingBox, error) {
	return BoundingBoxFromCenter(r.Latitude, r.Longitude, float64(r.RadiusMeters))
}

// ParseMapsURL extracts coordinates, an approximate radius and a keyword from
// a Google Maps URL. Coordinates are required; the keyword may be empty.
func ParseMapsURL(raw string) (MapsURLRegion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MapsURLRegion{}, fmt.Errorf("empty maps URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return MapsURLRegion{}, fmt.Errorf("parsing maps URL: %w", err)
	}

	m := atRegex.FindStringSubmatch(u.Path)
	if m == nil {
		return MapsURLRegion{}, ErrNoCoordinates
	}

	var r MapsURLRegion
	r.Latitude, _ = strconv.ParseFloat(m[1], 64)
	r.Longitude, _ = strconv.ParseFloat(m[2], 64)
	value, _ := strconv.ParseFloat(m[3], 64)
	if m[4] == "m" {
		r.RadiusMeters = int(value)
	} else {
		r.RadiusMeters = RadiusFromZoom(value)
	}

	if s := searchRegex.FindStringSubmatch(u.Path); s != nil {
		kw := strings.ReplaceAll(s[1], "+", " ")
		if unescaped, err := url.PathUnescape(kw); err == nil {
			kw = unescaped
		}
		r.Keyword = strings.TrimSpace(kw)
	} else if q := u.Query().Get("q"); q != "" {
		r.Keyword = strings.TrimSpace(q)
	}

	return r, nil
}

// RadiusFromZoom maps a maps zoom level to a rough search radius in meters.
func RadiusFromZoom(zoom float64) int {
	switch {
	case zoom >= 17:
		return 1000
	case zoom >= 15:
		return 2500
	case zoom >= 13:
		return 5000
	case zoom >= 11:
		return 15000
	default:
		return 50000
	}
}
