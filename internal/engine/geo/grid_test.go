package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/model"
)

var paris = model.BoundingBox{SWLat: 48.81, SWLon: 2.22, NELat: 48.90, NELon: 2.47}

func TestGenerateGrid_Count(t *testing.T) {
	tests := []struct {
		name     string
		latSteps int
		lonSteps int
		want     int
	}{
		{"single centroid", 1, 1, 1},
		{"zero steps", 0, 0, 1},
		{"square", 10, 10, 100},
		{"rectangular", 3, 5, 15},
		{"one row", 1, 4, 4},
		{"one column", 4, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := GenerateGrid(paris, tt.latSteps, tt.lonSteps)
			assert.Len(t, points, tt.want)
		})
	}
}

func TestGenerateGrid_CentroidWhenSingleStep(t *testing.T) {
	points := GenerateGrid(paris, 1, 1)
	require.Len(t, points, 1)
	assert.InDelta(t, 48.855, points[0].Lat, 1e-9)
	assert.InDelta(t, 2.345, points[0].Lon, 1e-9)
}

func TestGenerateGrid_PointsInsideBox(t *testing.T) {
	bound := paris.Bound()
	for _, p := range GenerateGrid(paris, 7, 9) {
		assert.True(t, bound.Contains(p.Point()), "point %v outside %v", p, paris)
		assert.Greater(t, p.Lat, paris.SWLat)
		assert.Less(t, p.Lat, paris.NELat)
		assert.Greater(t, p.Lon, paris.SWLon)
		assert.Less(t, p.Lon, paris.NELon)
	}
}

func TestGenerateGrid_RowMajorOrder(t *testing.T) {
	box := model.BoundingBox{SWLat: 0, SWLon: 0, NELat: 2, NELon: 4}
	points := GenerateGrid(box, 2, 2)
	require.Len(t, points, 4)

	assert.Equal(t, model.GridPoint{Lat: 0.5, Lon: 1, Row: 0, Col: 0}, points[0])
	assert.Equal(t, model.GridPoint{Lat: 0.5, Lon: 3, Row: 0, Col: 1}, points[1])
	assert.Equal(t, model.GridPoint{Lat: 1.5, Lon: 1, Row: 1, Col: 0}, points[2])
	assert.Equal(t, model.GridPoint{Lat: 1.5, Lon: 3, Row: 1, Col: 1}, points[3])
}

func TestGenerateGrid_DegenerateBox(t *testing.T) {
	box := model.BoundingBox{SWLat: 10, SWLon: 20, NELat: 10, NELon: 20}
	points := GenerateGrid(box, 3, 3)
	require.Len(t, points, 9)
	for _, p := range points {
		assert.Equal(t, 10.0, p.Lat)
		assert.Equal(t, 20.0, p.Lon)
	}
}
