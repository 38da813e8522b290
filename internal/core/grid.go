package core

import "math"

// Pos is a continuous position in field coordinates (meters).
type Pos struct {
	X, Y float64
}

// Add returns p translated by (dx, dy).
func (p Pos) Add(dx, dy float64) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// Dist returns the euclidean distance to q.
func (p Pos) Dist(q Pos) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// TileIndex is a discrete grid coordinate.
type TileIndex struct {
	X, Y int
}

// Tile is one cell of the grid. Visit counters are mutated only through
// the coverage logger so counting stays centralized.
type Tile struct {
	Type       TileType
	CycleCount int // Visits within the current cycle
	TotalCount int // Visits across the whole run
}

// IsolatedAreaID tags which isolated area claimed a tile. Zero means none.
type IsolatedAreaID int

// Grid is the tile lattice plus the continuous-to-discrete mapper.
// Tile size is the edge length of one tile in field coordinates.
type Grid struct {
	Width    int
	Height   int
	TileSize float64

	tiles    []Tile
	isolated []IsolatedAreaID
}

// NewGrid creates a grid of all-grass tiles.
func NewGrid(width, height int, tileSize float64) *Grid {
	return &Grid{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		tiles:    make([]Tile, width*height),
		isolated: make([]IsolatedAreaID, width*height),
	}
}

// InBounds reports whether the discrete index lies on the grid.
func (g *Grid) InBounds(idx TileIndex) bool {
	return idx.X >= 0 && idx.X < g.Width && idx.Y >= 0 && idx.Y < g.Height
}

// ContainsPos reports whether the continuous position lies inside the field.
func (g *Grid) ContainsPos(p Pos) bool {
	return p.X >= 0 && p.X < float64(g.Width)*g.TileSize &&
		p.Y >= 0 && p.Y < float64(g.Height)*g.TileSize
}

// TileAt maps a continuous position to its tile index. Positions outside the
// field fail with OutOfBoundsError; positions on the far edge are clamped to
// the last row/column.
func (g *Grid) TileAt(p Pos) (TileIndex, error) {
	if !g.ContainsPos(p) {
		return TileIndex{}, &OutOfBoundsError{Pos: p}
	}
	idx := TileIndex{
		X: int(math.Floor(p.X / g.TileSize)),
		Y: int(math.Floor(p.Y / g.TileSize)),
	}
	if idx.X >= g.Width {
		idx.X = g.Width - 1
	}
	if idx.Y >= g.Height {
		idx.Y = g.Height - 1
	}
	return idx, nil
}

// Center returns the continuous position of a tile's center.
func (g *Grid) Center(idx TileIndex) Pos {
	return Pos{
		X: (float64(idx.X) + 0.5) * g.TileSize,
		Y: (float64(idx.Y) + 0.5) * g.TileSize,
	}
}

// Tile returns a pointer to the tile at idx. The index must be in bounds.
func (g *Grid) Tile(idx TileIndex) *Tile {
	return &g.tiles[idx.Y*g.Width+idx.X]
}

// SetType stamps a tile's type. Placement is the only caller; after that the
// layout is immutable.
func (g *Grid) SetType(idx TileIndex, t TileType) {
	g.tiles[idx.Y*g.Width+idx.X].Type = t
}

// ClaimIsolated records which isolated area owns the tile.
func (g *Grid) ClaimIsolated(idx TileIndex, id IsolatedAreaID) {
	g.isolated[idx.Y*g.Width+idx.X] = id
}

// IsolatedOwner returns the isolated area claiming the tile, zero if none.
// Opening tiles keep their owner so entry/exit bookkeeping can follow the
// robot across the boundary.
func (g *Grid) IsolatedOwner(idx TileIndex) IsolatedAreaID {
	return g.isolated[idx.Y*g.Width+idx.X]
}

// Passable reports whether a robot may occupy the tile. The robot's current
// isolated area (zero when outside) gates both sides of the fence: a robot
// outside cannot step onto the interior directly, and a robot inside reaches
// only its own area's tiles and openings.
func (g *Grid) Passable(idx TileIndex, inside IsolatedAreaID) bool {
	if !g.InBounds(idx) {
		return false
	}
	t := g.Tile(idx).Type
	if t.Blocked() {
		return false
	}
	if t == TileIsolated {
		return g.IsolatedOwner(idx) == inside
	}
	if inside != 0 {
		return t == TileOpening && g.IsolatedOwner(idx) == inside
	}
	return true
}

// PassableFrom is Passable for a robot currently standing on cur. An opening
// works in both directions, so from one the robot may step onto the interior
// it belongs to or back out to the exterior.
func (g *Grid) PassableFrom(cur, idx TileIndex, inside IsolatedAreaID) bool {
	if g.InBounds(cur) && g.Tile(cur).Type == TileOpening {
		return g.Passable(idx, 0) || g.Passable(idx, g.IsolatedOwner(cur))
	}
	return g.Passable(idx, inside)
}

// PassablePos is Passable for a continuous position.
func (g *Grid) PassablePos(p Pos, inside IsolatedAreaID) bool {
	idx, err := g.TileAt(p)
	if err != nil {
		return false
	}
	return g.Passable(idx, inside)
}

// Neighbors returns the in-bounds tiles adjacent to idx, including diagonals,
// in row-major order.
func (g *Grid) Neighbors(idx TileIndex) []TileIndex {
	out := make([]TileIndex, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := TileIndex{X: idx.X + dx, Y: idx.Y + dy}
			if g.InBounds(n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// TypeGrid returns the static tile-type layout as a [height][width] matrix.
func (g *Grid) TypeGrid() [][]TileType {
	out := make([][]TileType, g.Height)
	for y := 0; y < g.Height; y++ {
		row := make([]TileType, g.Width)
		for x := 0; x < g.Width; x++ {
			row[x] = g.tiles[y*g.Width+x].Type
		}
		out[y] = row
	}
	return out
}
