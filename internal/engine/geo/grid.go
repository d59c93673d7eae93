package geo

import (
	"github.com/rendis/gridplaces/internal/model"
)

// GenerateGrid splits the bounding box into latSteps x lonSteps equal tiles and
// returns their centers in row-major order (latitude outer, longitude inner).
// When both step counts are <= 1 the box centroid is the only point.
func GenerateGrid(bbox model.BoundingBox, latSteps, lonSteps int) []model.GridPoint {
	if latSteps <= 1 && lonSteps <= 1 {
		c := bbox.Center()
		return []model.GridPoint{c}
	}

	// A non-positive count on one axis collapses to a single band there.
	if latSteps < 1 {
		latSteps = 1
	}
	if lonSteps < 1 {
		lonSteps = 1
	}

	latSpan := (bbox.NELat - bbox.SWLat) / float64(latSteps)
	lonSpan := (bbox.NELon - bbox.SWLon) / float64(lonSteps)

	points := make([]model.GridPoint, 0, latSteps*lonSteps)
	for row := 0; row < latSteps; row++ {
		lat := bbox.SWLat + (float64(row)+0.5)*latSpan
		for col := 0; col < lonSteps; col++ {
			points = append(points, model.GridPoint{
				Lat: lat,
				Lon: bbox.SWLon + (float64(col)+0.5)*lonSpan,
				Row: row,
				Col: col,
			})
		}
	}

	return points
}
