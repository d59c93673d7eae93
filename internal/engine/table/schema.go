// Package table holds the persisted result table: a fixed column schema,
// string rows, the merge rule and the CSV/SQLite stores.
package table

import (
	"errors"
	"fmt"
)

// KeyColumn identifies a place across runs.
const KeyColumn = "place_id"

// Columns is the fixed output schema, in order.
var Columns = []string{
	"place_id", "name", "description", "review_count", "rating",
	"website", "phone", "owner_name", "main_category", "categories",
	"workday_timing", "is_temporarily_closed", "closed_on", "address", "review_keywords",
	"maps_url", "query", "latitude", "longitude", "price_level",
	"street_number", "route", "locality", "postal_code", "dine_in",
	"takeout", "delivery", "curbside_pickup", "wheelchair_accessible", "created_at",
}

var (
	ErrSchemaMismatch = errors.New("table schema mismatch")
	ErrNotExist       = errors.New("table does not exist")
)

// ParseError reports persisted content that could not be read as a table.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
