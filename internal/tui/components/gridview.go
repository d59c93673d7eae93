package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rendis/gridplaces/internal/model"
	"github.com/rendis/gridplaces/internal/tui/styles"
)

// GridView draws the search box and its tile centers with Braille dots.
// Tiles before the done mark are drawn as searched.
type GridView struct {
	width  int
	height int
	bbox   model.BoundingBox
	tiles  []model.GridPoint
	done   int
}

func NewGridView(width, height int) GridView {
	return GridView{width: width, height: height}
}

func (g *GridView) SetSize(width, height int) {
	g.width = width
	g.height = height
}

func (g *GridView) SetGrid(bbox model.BoundingBox, tiles []model.GridPoint) {
	g.bbox = bbox
	g.tiles = tiles
	g.done = 0
}

// SetDone marks the first n tiles as searched.
func (g *GridView) SetDone(n int) {
	g.done = max(0, min(n, len(g.tiles)))
}

// Dot layout of a Braille cell, 2 wide by 4 tall:
//
//	0 3
//	1 4
//	2 5
//	6 7
var brailleDots = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}

var dotOffsets = [8][2]int{
	{0, 0}, {1, 0}, {2, 0}, {0, 1},
	{1, 1}, {2, 1}, {3, 0}, {3, 1},
}

type layer int

const (
	layerNone layer = iota
	layerBorder
	layerPending
	layerDone
)

func (g GridView) View() string {
	if g.width <= 0 || g.height <= 0 {
		return ""
	}
	dotW, dotH := g.width*2, g.height*4

	latRange := g.bbox.NELat - g.bbox.SWLat
	lonRange := g.bbox.NELon - g.bbox.SWLon
	if latRange <= 0 || lonRange <= 0 {
		return strings.Repeat(strings.Repeat(" ", g.width)+"\n", g.height-1) + strings.Repeat(" ", g.width)
	}

	// Braille dots are roughly square on screen; shrink one axis so the box
	// keeps its ground aspect ratio at this latitude.
	cosLat := math.Cos((g.bbox.SWLat + g.bbox.NELat) / 2 * math.Pi / 180)
	geoAspect := lonRange * cosLat / latRange
	effW, effH := dotW, dotH
	offX, offY := 0, 0
	if geoAspect < float64(dotW)/float64(dotH) {
		effW = max(4, int(float64(dotH)*geoAspect))
		offX = (dotW - effW) / 2
	} else {
		effH = max(4, int(float64(dotW)/geoAspect))
		offY = (dotH - effH) / 2
	}

	toDot := func(lat, lon float64) (int, int) {
		x := offX + int((lon-g.bbox.SWLon)/lonRange*float64(effW-1))
		y := offY + int((g.bbox.NELat-lat)/latRange*float64(effH-1))
		return x, y
	}

	grid := make([][]layer, dotH)
	for i := range grid {
		grid[i] = make([]layer, dotW)
	}

	corners := [][2]float64{
		{g.bbox.SWLat, g.bbox.SWLon}, {g.bbox.SWLat, g.bbox.NELon},
		{g.bbox.NELat, g.bbox.NELon}, {g.bbox.NELat, g.bbox.SWLon},
	}
	for i := range corners {
		next := corners[(i+1)%len(corners)]
		x0, y0 := toDot(corners[i][0], corners[i][1])
		x1, y1 := toDot(next[0], next[1])
		drawLine(grid, x0, y0, x1, y1)
	}

	for i, t := range g.tiles {
		x, y := toDot(t.Lat, t.Lon)
		if x < 0 || x >= dotW || y < 0 || y >= dotH {
			continue
		}
		if i < g.done {
			grid[y][x] = layerDone
		} else if grid[y][x] != layerDone {
			grid[y][x] = layerPending
		}
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	pendingStyle := lipgloss.NewStyle().Foreground(styles.Secondary)
	doneStyle := lipgloss.NewStyle().Foreground(styles.Success)

	var sb strings.Builder
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			var cell rune = 0x2800
			top := layerNone
			for dot, off := range dotOffsets {
				y, x := row*4+off[0], col*2+off[1]
				if l := grid[y][x]; l != layerNone {
					cell |= brailleDots[dot]
					top = max(top, l)
				}
			}
			switch top {
			case layerDone:
				sb.WriteString(doneStyle.Render(string(cell)))
			case layerPending:
				sb.WriteString(pendingStyle.Render(string(cell)))
			case layerBorder:
				sb.WriteString(borderStyle.Render(string(cell)))
			default:
				sb.WriteRune(' ')
			}
		}
		if row < g.height-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// drawLine marks the border layer between two dots (Bresenham).
func drawLine(grid [][]layer, x0, y0, x1, y1 int) {
	h := len(grid)
	w := len(grid[0])
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if x0 >= 0 && x0 < w && y0 >= 0 && y0 < h && grid[y0][x0] == layerNone {
			grid[y0][x0] = layerBorder
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
