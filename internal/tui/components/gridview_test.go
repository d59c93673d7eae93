package components

import (
	"strings"
	"testing"

	"github.com/rendis/gridplaces/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestGridView_RendersRequestedSize(t *testing.T) {
	bbox := model.BoundingBox{SWLat: 48.81, SWLon: 2.22, NELat: 48.90, NELon: 2.47}
	g := NewGridView(20, 6)
	g.SetGrid(bbox, []model.GridPoint{{Lat: 48.85, Lon: 2.30}, {Lat: 48.86, Lon: 2.40}})
	g.SetDone(1)

	lines := strings.Split(g.View(), "\n")
	assert.Len(t, lines, 6)
}

func TestGridView_SetDoneClamps(t *testing.T) {
	g := NewGridView(10, 4)
	g.SetGrid(model.BoundingBox{SWLat: 0, SWLon: 0, NELat: 1, NELon: 1}, []model.GridPoint{{Lat: 0.5, Lon: 0.5}})
	g.SetDone(5)
	assert.Equal(t, 1, g.done)
	g.SetDone(-2)
	assert.Equal(t, 0, g.done)
}

func TestGridView_EmptyBox(t *testing.T) {
	g := NewGridView(4, 2)
	assert.Equal(t, "    \n    ", g.View())
	assert.Empty(t, NewGridView(0, 0).View())
}
