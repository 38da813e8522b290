package env

import (
	"math"
	"math/rand"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/core"
)

// stationAttempts bounds base-station sampling for the perimeter and
// biggest-random strategies.
const stationAttempts = 40

// placeStation resolves the base-station tile: the explicit coordinate when
// configured, otherwise the configured strategy.
func placeStation(cfg *config.FieldConfig, g *core.Grid, areas []core.Area, rng *rand.Rand) (core.TileIndex, error) {
	if cfg.BaseStation != nil {
		idx := core.TileIndex{X: cfg.BaseStation.X, Y: cfg.BaseStation.Y}
		if !g.Passable(idx, 0) {
			return core.TileIndex{}, &core.OverlapError{Area: "base station", Conflict: "a blocked tile"}
		}
		return idx, nil
	}

	switch cfg.StationStrategy {
	case "biggest-random":
		return stationNearBiggestArea(g, areas, rng, false)
	case "biggest-center":
		return stationNearBiggestArea(g, areas, rng, true)
	default: // "perimeter"
		return stationOnPerimeter(g, rng)
	}
}

// stationOnPerimeter samples grid-edge tiles until one is free.
func stationOnPerimeter(g *core.Grid, rng *rand.Rand) (core.TileIndex, error) {
	perimeter := perimeterTiles(g)
	for attempt := 0; attempt < stationAttempts; attempt++ {
		idx := perimeter[rng.Intn(len(perimeter))]
		if stationFriendly(g, idx) {
			return idx, nil
		}
	}
	return core.TileIndex{}, &core.PlacementExhaustedError{Area: "base station (perimeter)", Attempts: stationAttempts}
}

// stationNearBiggestArea puts the station next to the largest blocked area:
// either a random free boundary neighbor, or the free tile closest to the
// area's centroid.
func stationNearBiggestArea(g *core.Grid, areas []core.Area, rng *rand.Rand, central bool) (core.TileIndex, error) {
	biggest := biggestBlocked(g, areas)
	if biggest == nil {
		// No blocked areas to anchor on, fall back to the perimeter.
		return stationOnPerimeter(g, rng)
	}

	var candidates []core.TileIndex
	seen := make(map[core.TileIndex]bool)
	for _, idx := range biggest.Tiles(g) {
		for _, n := range g.Neighbors(idx) {
			if !seen[n] && !biggest.Contains(n) && stationFriendly(g, n) {
				seen[n] = true
				candidates = append(candidates, n)
			}
		}
	}
	if len(candidates) == 0 {
		return core.TileIndex{}, &core.UnreachableAreaError{Area: biggest.Name()}
	}

	if !central {
		return candidates[rng.Intn(len(candidates))], nil
	}

	cx, cy := centroid(biggest, g)
	best := candidates[0]
	bestDist := math.Inf(1)
	for _, c := range candidates {
		d := math.Hypot(float64(c.X)-cx, float64(c.Y)-cy)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, nil
}

// stationFriendly rejects blocked tiles and tiles adjacent to an opening,
// since a station in front of an opening would trap the isolated area.
func stationFriendly(g *core.Grid, idx core.TileIndex) bool {
	if !g.Passable(idx, 0) || g.Tile(idx).Type != core.TileGrass {
		return false
	}
	for _, n := range g.Neighbors(idx) {
		if g.Tile(n).Type == core.TileOpening {
			return false
		}
	}
	return true
}

func biggestBlocked(g *core.Grid, areas []core.Area) *core.Area {
	var best *core.Area
	bestSize := 0
	for i := range areas {
		a := &areas[i]
		if a.Kind == core.AreaIsolated {
			continue
		}
		if size := len(a.Tiles(g)); size > bestSize {
			best, bestSize = a, size
		}
	}
	return best
}

func centroid(a *core.Area, g *core.Grid) (float64, float64) {
	tiles := a.Tiles(g)
	var sx, sy float64
	for _, t := range tiles {
		sx += float64(t.X)
		sy += float64(t.Y)
	}
	n := float64(len(tiles))
	return sx / n, sy / n
}

func perimeterTiles(g *core.Grid) []core.TileIndex {
	var out []core.TileIndex
	for x := 0; x < g.Width; x++ {
		out = append(out, core.TileIndex{X: x, Y: 0}, core.TileIndex{X: x, Y: g.Height - 1})
	}
	for y := 1; y < g.Height-1; y++ {
		out = append(out, core.TileIndex{X: 0, Y: y}, core.TileIndex{X: g.Width - 1, Y: y})
	}
	return out
}
