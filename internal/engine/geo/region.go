package geo

import (
	"errors"
	"math"

	"github.com/rendis/gridplaces/internal/model"
)

// metersPerDegree is the approximate length of one degree of latitude.
const metersPerDegree = 111132.0

var (
	ErrInvalidRadius    = errors.New("radius must be positive")
	ErrPolarSingularity = errors.New("longitude span undefined near the poles")
)

// BoundingBoxFromCenter derives a bounding box that extends radiusMeters
// from the center point along each axis. Latitudes are clamped to [-90, 90];
// longitudes are not wrapped at the antimeridian.
func BoundingBoxFromCenter(lat, lon, radiusMeters float64) (model.BoundingBox, error) {
	if radiusMeters <= 0 {
		return model.BoundingBox{}, ErrInvalidRadius
	}

	cosLat := math.Cos(lat * math.Pi / 180.0)
	if math.Abs(cosLat) < 1e-12 {
		return model.BoundingBox{}, ErrPolarSingularity
	}

	latDeg := radiusMeters / metersPerDegree
	lonDeg := radiusMeters / (metersPerDegree * cosLat)

	return model.BoundingBox{
		SWLat: math.Max(-90, lat-latDeg),
		SWLon: lon - lonDeg,
		NELat: math.Min(90, lat+latDeg),
		NELon: lon + lonDeg,
	}, nil
}
