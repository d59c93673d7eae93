package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rendis/gridplaces/internal/model"
)

// NominatimURL is the search endpoint used by GeocodeRegion.
var NominatimURL = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	BoundingBox []string `json:"boundingbox"` // [minLat, maxLat, minLng, maxLng]
	DisplayName string   `json:"display_name"`
}

// GeocodeRegion returns the bounding box of a named region (city, district,
// "Paris, France") using the OSM Nominatim API.
func GeocodeRegion(ctx context.Context, query string) (model.BoundingBox, error) {
	u := NominatimURL + "?" + url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.BoundingBox{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "gridplaces/0.1 (places grid collector)")

	resp, err := client.Do(req)
	if err != nil {
		return model.BoundingBox{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.BoundingBox{}, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.BoundingBox{}, fmt.Errorf("decoding geocoding response: %w", err)
	}

	if len(results) == 0 {
		return model.BoundingBox{}, fmt.Errorf("region %q not found", query)
	}

	bb := results[0].BoundingBox
	if len(bb) < 4 {
		return model.BoundingBox{}, fmt.Errorf("invalid bounding box from geocoder")
	}

	var box model.BoundingBox
	box.SWLat, _ = strconv.ParseFloat(bb[0], 64)
	box.NELat, _ = strconv.ParseFloat(bb[1], 64)
	box.SWLon, _ = strconv.ParseFloat(bb[2], 64)
	box.NELon, _ = strconv.ParseFloat(bb[3], 64)

	return box, box.Validate()
}
