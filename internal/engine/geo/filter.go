package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/rendis/gridplaces/internal/model"
)

// FilterTiles removes tiles whose center falls outside the given area.
func FilterTiles(points []model.GridPoint, area orb.MultiPolygon) []model.GridPoint {
	var kept []model.GridPoint
	for _, p := range points {
		if planar.MultiPolygonContains(area, p.Point()) {
			kept = append(kept, p)
		}
	}
	return kept
}

// LoadArea reads a GeoJSON file (FeatureCollection, Feature or bare geometry)
// and returns every polygon it contains as one MultiPolygon.
func LoadArea(path string) (orb.MultiPolygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading area: %w", err)
	}
	return ParseArea(data)
}

// ParseArea is LoadArea over an in-memory GeoJSON document.
func ParseArea(data []byte) (orb.MultiPolygon, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing geojson: %w", err)
	}

	var geoms []orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parsing feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parsing geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var area orb.MultiPolygon
	for _, g := range geoms {
		switch g := g.(type) {
		case orb.MultiPolygon:
			area = append(area, g...)
		case orb.Polygon:
			area = append(area, g)
		}
	}
	if len(area) == 0 {
		return nil, fmt.Errorf("no polygons in area")
	}
	return area, nil
}
