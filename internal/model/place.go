package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// BoundingBox is a rectangular lat/lng region given by its southwest and
// northeast corners, in WGS84 degrees.
type BoundingBox struct {
	SWLat float64 `json:"sw_lat"`
	SWLon float64 `json:"sw_lon"`
	NELat float64 `json:"ne_lat"`
	NELon float64 `json:"ne_lon"`
}

// Validate checks the latitude ordering. Longitude ordering is not enforced.
func (b BoundingBox) Validate() error {
	if !(b.SWLat < b.NELat) {
		return fmt.Errorf("invalid bounding box: sw_lat %.6f must be below ne_lat %.6f", b.SWLat, b.NELat)
	}
	return nil
}

// Center returns the centroid of the box.
func (b BoundingBox) Center() GridPoint {
	return GridPoint{
		Lat: b.SWLat + (b.NELat-b.SWLat)/2,
		Lon: b.SWLon + (b.NELon-b.SWLon)/2,
	}
}

// Bound converts the box to an orb.Bound (orb points are [lng, lat]).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.SWLon, b.SWLat},
		Max: orb.Point{b.NELon, b.NELat},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("SW(%.6f,%.6f) NE(%.6f,%.6f)", b.SWLat, b.SWLon, b.NELat, b.NELon)
}

// GridPoint is the center of one search tile.
type GridPoint struct {
	Lat float64
	Lon float64
	Row int
	Col int
}

// Location formats the point as the "lat,lng" pair the places API expects.
func (p GridPoint) Location() string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}

// Point returns the tile center as an orb.Point.
func (p GridPoint) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// RawDetail mirrors the place details payload returned by the API.
// Optional values are pointers so that "absent" survives decoding.
type RawDetail struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	URL               string             `json:"url"`
	UserRatingsTotal  *int               `json:"user_ratings_total,omitempty"`
	Rating            *float64           `json:"rating,omitempty"`
	Website           *string            `json:"website,omitempty"`
	Phone             *string            `json:"international_phone_number,omitempty"`
	Types             []string           `json:"types,omitempty"`
	OpeningHours      *OpeningHours      `json:"opening_hours,omitempty"`
	BusinessStatus    *string            `json:"business_status,omitempty"`
	FormattedAddress  *string            `json:"formatted_address,omitempty"`
	Geometry          *Geometry          `json:"geometry,omitempty"`
	PriceLevel        *int               `json:"price_level,omitempty"`
	AddressComponents []AddressComponent `json:"address_components,omitempty"`
	DineIn            *bool              `json:"dine_in,omitempty"`
	Takeout           *bool              `json:"takeout,omitempty"`
	Delivery          *bool              `json:"delivery,omitempty"`
	CurbsidePickup    *bool              `json:"curbside_pickup,omitempty"`
	WheelchairAccess  *bool              `json:"wheelchair_accessible_entrance,omitempty"`
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// DetailFields is the field mask requested for every place detail lookup.
var DetailFields = []string{
	"place_id", "name", "user_ratings_total", "rating", "website",
	"international_phone_number", "types", "opening_hours", "business_status",
	"formatted_address", "url",
	"geometry", "price_level", "address_components",
	"dine_in", "takeout", "delivery", "curbside_pickup",
	"wheelchair_accessible_entrance",
}

// PlaceRow is the flat, display-ready record written to the result table.
// Every field is already rendered; absent values hold the "N/A" sentinel.
type PlaceRow struct {
	PlaceID             string
	Name                string
	Description         string
	ReviewCount         string
	Rating              string
	Website             string
	Phone               string
	OwnerName           string
	MainCategory        string
	Categories          string
	WorkdayTiming       string
	IsTemporarilyClosed string
	ClosedOn            string
	Address             string
	ReviewKeywords      string
	MapsURL             string
	Query               string
	Latitude            string
	Longitude           string
	PriceLevel          string
	StreetNumber        string
	Route               string
	Locality            string
	PostalCode          string
	DineIn              string
	Takeout             string
	Delivery            string
	CurbsidePickup      string
	Wheelchair          string
	CreatedAt           string
}

// Record returns the row values in the canonical column order.
func (r PlaceRow) Record() []string {
	return []string{
		r.PlaceID, r.Name, r.Description, r.ReviewCount, r.Rating,
		r.Website, r.Phone, r.OwnerName, r.MainCategory, r.Categories,
		r.WorkdayTiming, r.IsTemporarilyClosed, r.ClosedOn, r.Address, r.ReviewKeywords,
		r.MapsURL, r.Query, r.Latitude, r.Longitude, r.PriceLevel,
		r.StreetNumber, r.Route, r.Locality, r.PostalCode, r.DineIn,
		r.Takeout, r.Delivery, r.CurbsidePickup, r.Wheelchair, r.CreatedAt,
	}
}

// Mode controls whether a run merges with the previously persisted table.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeAppend Mode = "append"
)

// ParseMode accepts "create" or "append".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCreate, ModeAppend:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want create or append)", s)
}

// RunParams holds everything a single pipeline run needs. UI layers build one
// at submit time; the pipeline never reads UI state directly.
type RunParams struct {
	Keyword      string
	PlaceType    string
	BBox         BoundingBox
	LatSteps     int
	LonSteps     int
	RadiusMeters int
	Language     string
	Output       string
	Mode         Mode

	// Area optionally restricts tiles to a polygon (GeoJSON file path).
	Area string
}

// Validate reports missing or inconsistent run parameters.
func (p RunParams) Validate() error {
	if p.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if p.RadiusMeters <= 0 {
		return fmt.Errorf("radius must be positive, got %d", p.RadiusMeters)
	}
	if p.LatSteps <= 0 || p.LonSteps <= 0 {
		return fmt.Errorf("grid steps must be positive, got %dx%d", p.LatSteps, p.LonSteps)
	}
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	return p.BBox.Validate()
}
