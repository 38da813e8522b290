package env

import (
	"math"

	"github.com/grasslab/mowsim/internal/core"
)

// populatePerimeterGuidelines turns every free grid-edge tile into a guiding
// line the robot can follow along the field boundary.
func populatePerimeterGuidelines(g *core.Grid) {
	for _, idx := range perimeterTiles(g) {
		setGuideline(g, idx)
	}
}

// surroundWithGuidelines rings a blocked area with guiding lines and draws a
// connecting line from the ring to the nearest perimeter tile, so the
// boundary network stays connected.
func surroundWithGuidelines(g *core.Grid, a *core.Area) {
	var ring []core.TileIndex
	seen := make(map[core.TileIndex]bool)
	for _, idx := range a.Tiles(g) {
		for _, n := range g.Neighbors(idx) {
			if !seen[n] && !a.Contains(n) {
				seen[n] = true
				setGuideline(g, n)
				ring = append(ring, n)
			}
		}
	}
	connectToPerimeter(g, ring)
}

// connectToPerimeter draws a straight guiding line from the ring tile closest
// to the field edge out to its nearest perimeter tile. A ring already touching
// the perimeter needs no connector.
func connectToPerimeter(g *core.Grid, ring []core.TileIndex) {
	if len(ring) == 0 {
		return
	}
	for _, idx := range ring {
		if idx.X == 0 || idx.Y == 0 || idx.X == g.Width-1 || idx.Y == g.Height-1 {
			return
		}
	}

	var from, to core.TileIndex
	best := math.Inf(1)
	for _, p := range perimeterTiles(g) {
		for _, r := range ring {
			d := math.Hypot(float64(p.X-r.X), float64(p.Y-r.Y))
			if d < best {
				best, from, to = d, r, p
			}
		}
	}
	drawLine(g, from, to)
}

// drawLine stamps guiding lines along the Bresenham segment between two
// tiles, skipping anything that is not plain grass.
func drawLine(g *core.Grid, from, to core.TileIndex) {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}
	err := dx + dy

	x, y := from.X, from.Y
	for {
		setGuideline(g, core.TileIndex{X: x, Y: y})
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// setGuideline converts a grass tile into a guiding line. Blocked tiles,
// openings, and the base station keep their type.
func setGuideline(g *core.Grid, idx core.TileIndex) {
	if g.InBounds(idx) && g.Tile(idx).Type == core.TileGrass {
		g.SetType(idx, core.TileGuideLine)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
