package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/model"
)

const squareFeature = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {"name": "west half"},
    "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}
  }]
}`

func TestFilterTiles(t *testing.T) {
	area, err := ParseArea([]byte(squareFeature))
	require.NoError(t, err)

	box := model.BoundingBox{SWLat: 0, SWLon: 0, NELat: 2, NELon: 4}
	points := GenerateGrid(box, 2, 2)

	kept := FilterTiles(points, area)
	require.Len(t, kept, 2)
	for _, p := range kept {
		assert.Equal(t, 0, p.Col)
	}
}

func TestParseArea_BareGeometry(t *testing.T) {
	area, err := ParseArea([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`))
	require.NoError(t, err)
	assert.Len(t, area, 1)
}

func TestParseArea_NoPolygons(t *testing.T) {
	_, err := ParseArea([]byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.Error(t, err)
}
