// Package normalize flattens raw place details into display-ready rows.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/rendis/gridplaces/internal/model"
)

const (
	NotAvailable = "N/A"
	True         = "TRUE"
	False        = "FALSE"

	// TimestampLayout is the created_at format (YYYY-MM-DD HH:MM:SS).
	TimestampLayout = "2006-01-02 15:04:05"

	currencySymbol = "$"
)

// Normalize maps a raw detail payload into a PlaceRow. It never mutates raw.
// query is copied verbatim and now becomes the row's created_at.
func Normalize(raw model.RawDetail, query string, now time.Time) model.PlaceRow {
	row := model.PlaceRow{
		PlaceID:        raw.PlaceID,
		Name:           raw.Name,
		MapsURL:        raw.URL,
		Query:          query,
		Description:    NotAvailable,
		OwnerName:      NotAvailable,
		ClosedOn:       NotAvailable,
		ReviewKeywords: NotAvailable,
		MainCategory:   NotAvailable,
		Categories:     NotAvailable,
		WorkdayTiming:  NotAvailable,
		CreatedAt:      now.Format(TimestampLayout),
	}

	row.ReviewCount = intOrNA(raw.UserRatingsTotal)
	row.Rating = floatOrNA(raw.Rating)
	row.Website = stringOrNA(raw.Website)
	row.Phone = stringOrNA(raw.Phone)
	row.Address = stringOrNA(raw.FormattedAddress)

	if len(raw.Types) > 0 {
		row.MainCategory = raw.Types[0]
		row.Categories = strings.Join(raw.Types, ", ")
	}

	if raw.OpeningHours != nil && len(raw.OpeningHours.WeekdayText) > 0 {
		row.WorkdayTiming = strings.Join(raw.OpeningHours.WeekdayText, " | ")
	}

	closed := raw.BusinessStatus != nil && *raw.BusinessStatus == "CLOSED_TEMPORARILY"
	row.IsTemporarilyClosed = Bool(&closed)

	if raw.Geometry != nil {
		row.Latitude = formatFloat(raw.Geometry.Location.Lat)
		row.Longitude = formatFloat(raw.Geometry.Location.Lng)
	} else {
		row.Latitude = NotAvailable
		row.Longitude = NotAvailable
	}

	row.PriceLevel = PriceLevel(raw.PriceLevel)

	parts := AddressParts(raw.AddressComponents)
	row.StreetNumber = orNA(parts.StreetNumber)
	row.Route = orNA(parts.Route)
	row.Locality = orNA(parts.Locality)
	row.PostalCode = orNA(parts.PostalCode)

	row.DineIn = Bool(raw.DineIn)
	row.Takeout = Bool(raw.Takeout)
	row.Delivery = Bool(raw.Delivery)
	row.CurbsidePickup = Bool(raw.CurbsidePickup)
	row.Wheelchair = Bool(raw.WheelchairAccess)

	return row
}

// PriceLevel renders level N>0 as N currency symbols; 0 or absent is N/A.
func PriceLevel(level *int) string {
	if level == nil || *level <= 0 {
		return NotAvailable
	}
	return strings.Repeat(currencySymbol, *level)
}

// Bool renders a tri-state flag.
func Bool(v *bool) string {
	switch {
	case v == nil:
		return NotAvailable
	case *v:
		return True
	default:
		return False
	}
}

// Address holds the address components the table keeps.
type Address struct {
	StreetNumber string
	Route        string
	Locality     string
	PostalCode   string
}

// AddressParts scans the components once. The first component carrying a
// given type wins; later matches for the same type are ignored.
func AddressParts(components []model.AddressComponent) Address {
	var a Address
	for _, c := range components {
		for _, t := range c.Types {
			var dst *string
			switch t {
			case "street_number":
				dst = &a.StreetNumber
			case "route":
				dst = &a.Route
			case "locality":
				dst = &a.Locality
			case "postal_code":
				dst = &a.PostalCode
			default:
				continue
			}
			if *dst == "" {
				*dst = c.LongName
			}
		}
	}
	return a
}

func stringOrNA(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return orNA(*s)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func intOrNA(v *int) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.Itoa(*v)
}

func floatOrNA(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
