// Package env builds the simulation field: area placement, base station
// selection, and guiding lines.
package env

import (
	"fmt"
	"math/rand"

	"github.com/grasslab/mowsim/internal/config"
	"github.com/grasslab/mowsim/internal/core"
)

// Generator produces the set of areas to stamp onto a grid. Implementations
// must be deterministic for a given rng state.
type Generator interface {
	Generate(cfg *config.FieldConfig, g *core.Grid, rng *rand.Rand) ([]core.Area, error)
}

// Field is the fully built environment handed to the simulator.
type Field struct {
	Grid    *core.Grid
	Areas   []core.Area
	Station core.TileIndex
}

// Build assembles the grid: generates areas, stamps them, places the base
// station, and lays guiding lines. All placement failures surface here,
// before the simulation starts.
func Build(cfg *config.Config, gen Generator, rng *rand.Rand) (*Field, error) {
	g := core.NewGrid(cfg.Field.Width, cfg.Field.Height, cfg.Field.TileSize)

	areas, err := gen.Generate(&cfg.Field, g, rng)
	if err != nil {
		return nil, err
	}
	stampAreas(g, areas)

	station, err := placeStation(&cfg.Field, g, areas, rng)
	if err != nil {
		return nil, err
	}
	g.SetType(station, core.TileBaseStation)

	if cfg.Field.PerimeterGuidelines {
		populatePerimeterGuidelines(g)
	}
	for _, a := range areas {
		if a.Kind != core.AreaIsolated {
			surroundWithGuidelines(g, &a)
		}
	}

	// Placement validates openings area by area, so the finished layout is
	// checked once more against everything stamped after the carve.
	if err := checkOpeningsReachable(g, areas); err != nil {
		return nil, err
	}

	return &Field{Grid: g, Areas: areas, Station: station}, nil
}

// checkOpeningsReachable requires every opening of every isolated area to
// border at least one passable exterior tile on the finished grid.
func checkOpeningsReachable(g *core.Grid, areas []core.Area) error {
	for i := range areas {
		a := &areas[i]
		if a.Kind != core.AreaIsolated {
			continue
		}
		for _, o := range a.Openings {
			reachable := false
			for _, n := range g.Neighbors(o) {
				if !a.Contains(n) && g.Passable(n, 0) {
					reachable = true
					break
				}
			}
			if !reachable {
				return &core.UnreachableAreaError{Area: a.Name()}
			}
		}
	}
	return nil
}

// stampAreas mutates the grid's type tags for every claimed tile. Openings
// keep their isolated owner so entry/exit bookkeeping can follow the robot.
func stampAreas(g *core.Grid, areas []core.Area) {
	for _, a := range areas {
		t := a.TileType()
		for _, idx := range a.Tiles(g) {
			g.SetType(idx, t)
			if a.Kind == core.AreaIsolated {
				g.ClaimIsolated(idx, core.IsolatedAreaID(a.ID))
			}
		}
		for _, o := range a.Openings {
			g.SetType(o, core.TileOpening)
			g.ClaimIsolated(o, core.IsolatedAreaID(a.ID))
		}
	}
}

// RandomGenerator samples area placements with a bounded attempt budget.
type RandomGenerator struct{}

// Generate places the requested squared, circled, and isolated areas. Each
// area gets at most cfg.PlacementAttempts candidate positions; running out
// fails with PlacementExhaustedError so the caller can retry with relaxed
// constraints.
func (RandomGenerator) Generate(cfg *config.FieldConfig, g *core.Grid, rng *rand.Rand) ([]core.Area, error) {
	var areas []core.Area
	occupied := make(map[core.TileIndex]bool)
	nextID := 1

	spawn := func(a core.Area) (bool, error) {
		if !a.FitsWithin(g) {
			return false, nil
		}
		tiles := a.Tiles(g)
		for _, idx := range tiles {
			if occupied[idx] {
				return false, nil
			}
		}
		if sealsOpening(g, areas, occupied, tiles) {
			return false, nil
		}
		if a.Kind == core.AreaIsolated {
			if err := carveOpenings(&a, g, occupied, rng); err != nil {
				return false, err
			}
		}
		for _, idx := range tiles {
			occupied[idx] = true
		}
		areas = append(areas, a)
		return true, nil
	}

	place := func(mk func() core.Area) error {
		var last core.Area
		for attempt := 0; attempt < cfg.PlacementAttempts; attempt++ {
			last = mk()
			last.ID = nextID
			ok, err := spawn(last)
			if err != nil {
				return err
			}
			if ok {
				nextID++
				return nil
			}
		}
		return &core.PlacementExhaustedError{Area: last.Name(), Attempts: cfg.PlacementAttempts}
	}

	r := cfg.Random

	// Isolated area first: it is the largest footprint and the hardest to
	// place on a crowded grid.
	if r.Isolated.Enabled {
		if err := place(func() core.Area {
			if r.Isolated.Shape == "circle" {
				return core.Area{
					Kind:   core.AreaIsolated,
					Origin: randomIndex(g, rng),
					Width:  2*r.Isolated.Radius + 1,
					Height: 2*r.Isolated.Radius + 1,
				}
			}
			w := spanBetween(rng, r.Isolated.MinWidth, r.Isolated.MaxWidth)
			h := spanBetween(rng, r.Isolated.MinHeight, r.Isolated.MaxHeight)
			return core.Area{Kind: core.AreaIsolated, Origin: randomIndex(g, rng), Width: w, Height: h}
		}); err != nil {
			return nil, err
		}
	}

	for i := 0; i < r.NumSquares; i++ {
		if err := place(func() core.Area {
			w := spanBetween(rng, r.MinSquareSize, r.MaxSquareSize)
			h := spanBetween(rng, r.MinSquareSize, r.MaxSquareSize)
			return core.Area{Kind: core.AreaSquared, Origin: randomIndex(g, rng), Width: w, Height: h}
		}); err != nil {
			return nil, err
		}
	}

	for i := 0; i < r.NumCircles; i++ {
		if err := place(func() core.Area {
			rad := spanBetween(rng, r.MinRadius, r.MaxRadius)
			return core.Area{Kind: core.AreaCircled, Origin: randomIndex(g, rng), Radius: rad}
		}); err != nil {
			return nil, err
		}
	}

	return areas, nil
}

// sealsOpening reports whether claiming tiles would leave an already carved
// opening with no free exterior neighbor. Openings are validated when carved,
// so areas placed afterwards must not wall them in.
func sealsOpening(g *core.Grid, areas []core.Area, occupied map[core.TileIndex]bool, tiles []core.TileIndex) bool {
	claimed := make(map[core.TileIndex]bool, len(tiles))
	for _, idx := range tiles {
		claimed[idx] = true
	}
	for i := range areas {
		a := &areas[i]
		if a.Kind != core.AreaIsolated {
			continue
		}
		for _, o := range a.Openings {
			free := false
			for _, n := range g.Neighbors(o) {
				if a.Contains(n) || occupied[n] || claimed[n] {
					continue
				}
				free = true
				break
			}
			if !free {
				return true
			}
		}
	}
	return false
}

// carveOpenings picks one or more contiguous boundary tiles adjacent to free
// exterior space. An isolated area with no such boundary cannot be entered at
// all and fails with UnreachableAreaError.
func carveOpenings(a *core.Area, g *core.Grid, occupied map[core.TileIndex]bool, rng *rand.Rand) error {
	var candidates []core.TileIndex
	for _, idx := range a.Boundary(g) {
		for _, n := range g.Neighbors(idx) {
			if !a.Contains(n) && !occupied[n] {
				candidates = append(candidates, idx)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return &core.UnreachableAreaError{Area: a.Name()}
	}

	width := 1 + rng.Intn(maxOpeningWidth(a))
	start := rng.Intn(len(candidates))
	for i := 0; i < width && i < len(candidates); i++ {
		a.Openings = append(a.Openings, candidates[(start+i)%len(candidates)])
	}
	return nil
}

func maxOpeningWidth(a *core.Area) int {
	w := a.Width
	if a.Height < w {
		w = a.Height
	}
	if w < 1 {
		w = 1
	}
	if w > 3 {
		w = 3
	}
	return w
}

func randomIndex(g *core.Grid, rng *rand.Rand) core.TileIndex {
	return core.TileIndex{X: rng.Intn(g.Width), Y: rng.Intn(g.Height)}
}

// spanBetween samples a size from [min, max] inclusive.
func spanBetween(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// ForMode returns the generator matching the configured placement mode.
func ForMode(mode string) (Generator, error) {
	switch mode {
	case "random":
		return RandomGenerator{}, nil
	case "manual":
		return ManualGenerator{}, nil
	}
	return nil, fmt.Errorf("unknown placement mode %q", mode)
}
