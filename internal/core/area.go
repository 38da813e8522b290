package core

import "fmt"

// AreaKind discriminates the area variant.
type AreaKind int

const (
	AreaSquared  AreaKind = iota // Axis-aligned rectangular obstacle
	AreaCircled                  // Disc-shaped obstacle
	AreaIsolated                 // Fenced-off region entered only through openings
)

func (k AreaKind) String() string {
	return [...]string{"squared", "circled", "isolated"}[k]
}

// Area is a tagged variant covering squared and circled blocked areas and
// isolated areas. Geometry is expressed in tile units: Origin is the top-left
// tile for squared/isolated areas and the center tile for circled areas.
type Area struct {
	ID     int
	Kind   AreaKind
	Origin TileIndex
	Width  int // Tiles, squared/isolated only
	Height int // Tiles, squared/isolated only
	Radius int // Tiles, circled only

	// Openings are the sole legal entry/exit tiles of an isolated area.
	// Non-empty for every placed isolated area.
	Openings []TileIndex
}

// Name identifies the area in validation errors.
func (a *Area) Name() string {
	return fmt.Sprintf("%s-area %d", a.Kind, a.ID)
}

// Contains reports whether the tile falls inside the area's geometry.
func (a *Area) Contains(idx TileIndex) bool {
	switch a.Kind {
	case AreaCircled:
		dx, dy := idx.X-a.Origin.X, idx.Y-a.Origin.Y
		return dx*dx+dy*dy <= a.Radius*a.Radius
	default:
		return idx.X >= a.Origin.X && idx.X < a.Origin.X+a.Width &&
			idx.Y >= a.Origin.Y && idx.Y < a.Origin.Y+a.Height
	}
}

// Tiles rasterizes the area footprint. Tiles outside the grid are excluded;
// placement validation decides whether that is an error.
func (a *Area) Tiles(g *Grid) []TileIndex {
	var out []TileIndex
	switch a.Kind {
	case AreaCircled:
		for dy := -a.Radius; dy <= a.Radius; dy++ {
			for dx := -a.Radius; dx <= a.Radius; dx++ {
				if dx*dx+dy*dy > a.Radius*a.Radius {
					continue
				}
				idx := TileIndex{X: a.Origin.X + dx, Y: a.Origin.Y + dy}
				if g.InBounds(idx) {
					out = append(out, idx)
				}
			}
		}
	default:
		for dy := 0; dy < a.Height; dy++ {
			for dx := 0; dx < a.Width; dx++ {
				idx := TileIndex{X: a.Origin.X + dx, Y: a.Origin.Y + dy}
				if g.InBounds(idx) {
					out = append(out, idx)
				}
			}
		}
	}
	return out
}

// FitsWithin reports whether the full footprint lies inside the grid.
func (a *Area) FitsWithin(g *Grid) bool {
	switch a.Kind {
	case AreaCircled:
		return a.Origin.X-a.Radius >= 0 && a.Origin.X+a.Radius < g.Width &&
			a.Origin.Y-a.Radius >= 0 && a.Origin.Y+a.Radius < g.Height
	default:
		return a.Origin.X >= 0 && a.Origin.X+a.Width <= g.Width &&
			a.Origin.Y >= 0 && a.Origin.Y+a.Height <= g.Height
	}
}

// TileType returns the tile type stamped on the area's interior tiles.
func (a *Area) TileType() TileType {
	switch a.Kind {
	case AreaSquared:
		return TileSquaredBlocked
	case AreaCircled:
		return TileCircledBlocked
	default:
		return TileIsolated
	}
}

// Boundary returns the footprint tiles that have at least one neighbor
// outside the area. Openings are carved from this ring.
func (a *Area) Boundary(g *Grid) []TileIndex {
	var out []TileIndex
	for _, idx := range a.Tiles(g) {
		for _, n := range g.Neighbors(idx) {
			if !a.Contains(n) {
				out = append(out, idx)
				break
			}
		}
	}
	return out
}
