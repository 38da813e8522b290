package env

import (
	"math/rand"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/core"
)

// ManualGenerator materializes areas from explicit coordinate lists. The rng
// is unused; manual placement is fully determined by configuration.
type ManualGenerator struct{}

// Generate validates each footprint against grid bounds, the base station,
// and every already-placed area. Overlaps fail with OverlapError naming both
// parties; an isolated area whose openings do not border free space fails
// with UnreachableAreaError.
func (ManualGenerator) Generate(cfg *config.FieldConfig, g *core.Grid, _ *rand.Rand) ([]core.Area, error) {
	var areas []core.Area
	occupied := make(map[core.TileIndex]string)
	nextID := 1

	var station *core.TileIndex
	if cfg.BaseStation != nil {
		station = &core.TileIndex{X: cfg.BaseStation.X, Y: cfg.BaseStation.Y}
	}

	claim := func(a core.Area) error {
		if !a.FitsWithin(g) {
			return &core.OverlapError{Area: a.Name(), Conflict: "the grid edge"}
		}
		tiles := a.Tiles(g)
		for _, idx := range tiles {
			if owner, taken := occupied[idx]; taken {
				return &core.OverlapError{Area: a.Name(), Conflict: owner}
			}
			if station != nil && idx == *station {
				return &core.OverlapError{Area: a.Name(), Conflict: "the base station"}
			}
		}
		for _, idx := range tiles {
			occupied[idx] = a.Name()
		}
		areas = append(areas, a)
		return nil
	}

	for _, s := range cfg.Manual.Squares {
		a := core.Area{
			ID:     nextID,
			Kind:   core.AreaSquared,
			Origin: core.TileIndex{X: s.X, Y: s.Y},
			Width:  s.Width,
			Height: s.Height,
		}
		if err := claim(a); err != nil {
			return nil, err
		}
		nextID++
	}

	for _, s := range cfg.Manual.Circles {
		a := core.Area{
			ID:     nextID,
			Kind:   core.AreaCircled,
			Origin: core.TileIndex{X: s.X, Y: s.Y},
			Radius: s.Radius,
		}
		if err := claim(a); err != nil {
			return nil, err
		}
		nextID++
	}

	for _, s := range cfg.Manual.Isolated {
		a := core.Area{
			ID:     nextID,
			Kind:   core.AreaIsolated,
			Origin: core.TileIndex{X: s.X, Y: s.Y},
			Width:  s.Width,
			Height: s.Height,
		}
		for _, o := range s.Openings {
			a.Openings = append(a.Openings, core.TileIndex{X: o.X, Y: o.Y})
		}
		if err := claim(a); err != nil {
			return nil, err
		}
		if err := validateOpenings(&a, g, occupied); err != nil {
			return nil, err
		}
		nextID++
	}

	return areas, nil
}

// validateOpenings requires every opening to sit on the area boundary and at
// least one of them to border free exterior space.
func validateOpenings(a *core.Area, g *core.Grid, occupied map[core.TileIndex]string) error {
	reachable := false
	for _, o := range a.Openings {
		onBoundary := false
		for _, b := range a.Boundary(g) {
			if b == o {
				onBoundary = true
				break
			}
		}
		if !onBoundary {
			return &core.UnreachableAreaError{Area: a.Name()}
		}
		for _, n := range g.Neighbors(o) {
			if owner, taken := occupied[n]; (!taken || owner == "") && !a.Contains(n) {
				reachable = true
				break
			}
		}
	}
	if !reachable {
		return &core.UnreachableAreaError{Area: a.Name()}
	}
	return nil
}
