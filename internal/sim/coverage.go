// Package sim runs the discrete-time mowing simulation: robot behavior,
// the autonomy/recharge cycle controller, and coverage accounting.
package sim

import "github.com/grasslab/mowsim/internal/core"

// Coverage centralizes all visit counting. Tiles expose their counters
// read-only elsewhere; every mutation flows through RecordVisit so the
// monotonicity invariant has a single owner.
type Coverage struct {
	grid      *core.Grid
	snapshots map[int][][]int

	// tick-local set for detecting two robots on one tile in the same tick;
	// an accepted, logged condition rather than a fault.
	tickVisits   map[core.TileIndex]bool
	sharedVisits int
}

// NewCoverage creates a logger for the grid.
func NewCoverage(g *core.Grid) *Coverage {
	return &Coverage{
		grid:       g,
		snapshots:  make(map[int][][]int),
		tickVisits: make(map[core.TileIndex]bool),
	}
}

// BeginTick resets the same-tick visit set.
func (c *Coverage) BeginTick() {
	clear(c.tickVisits)
}

// RecordVisit increments the tile's per-cycle and cumulative counters.
// Counters only ever grow.
func (c *Coverage) RecordVisit(idx core.TileIndex) {
	t := c.grid.Tile(idx)
	t.CycleCount++
	t.TotalCount++
	if c.tickVisits[idx] {
		c.sharedVisits++
	}
	c.tickVisits[idx] = true
}

// EndCycle freezes the per-cycle matrix for the finished cycle and zeroes
// the per-cycle counters for the next one. Cumulative counters persist.
func (c *Coverage) EndCycle(cycle int) {
	snap := make([][]int, c.grid.Height)
	for y := 0; y < c.grid.Height; y++ {
		row := make([]int, c.grid.Width)
		for x := 0; x < c.grid.Width; x++ {
			t := c.grid.Tile(core.TileIndex{X: x, Y: y})
			row[x] = t.CycleCount
			t.CycleCount = 0
		}
		snap[y] = row
	}
	c.snapshots[cycle] = snap
}

// Snapshot returns the per-cycle visit matrix for a finished cycle, or the
// live counters when the cycle is still running.
func (c *Coverage) Snapshot(cycle int) [][]int {
	if snap, ok := c.snapshots[cycle]; ok {
		return snap
	}
	live := make([][]int, c.grid.Height)
	for y := 0; y < c.grid.Height; y++ {
		row := make([]int, c.grid.Width)
		for x := 0; x < c.grid.Width; x++ {
			row[x] = c.grid.Tile(core.TileIndex{X: x, Y: y}).CycleCount
		}
		live[y] = row
	}
	return live
}

// Cumulative returns the whole-run visit matrix.
func (c *Coverage) Cumulative() [][]int {
	out := make([][]int, c.grid.Height)
	for y := 0; y < c.grid.Height; y++ {
		row := make([]int, c.grid.Width)
		for x := 0; x < c.grid.Width; x++ {
			row[x] = c.grid.Tile(core.TileIndex{X: x, Y: y}).TotalCount
		}
		out[y] = row
	}
	return out
}

// TypeGrid returns the static tile-type layout for export.
func (c *Coverage) TypeGrid() [][]core.TileType {
	return c.grid.TypeGrid()
}

// SharedVisits reports how many same-tick multi-robot tile visits occurred.
func (c *Coverage) SharedVisits() int {
	return c.sharedVisits
}

// CutStats summarizes coverage over the mowable tiles: how many were visited
// at least once and the visited fraction.
func (c *Coverage) CutStats() (cut, mowable int, fraction float64) {
	for y := 0; y < c.grid.Height; y++ {
		for x := 0; x < c.grid.Width; x++ {
			t := c.grid.Tile(core.TileIndex{X: x, Y: y})
			switch t.Type {
			case core.TileSquaredBlocked, core.TileCircledBlocked, core.TileBaseStation:
				continue
			}
			mowable++
			if t.TotalCount > 0 {
				cut++
			}
		}
	}
	if mowable > 0 {
		fraction = float64(cut) / float64(mowable)
	}
	return cut, mowable, fraction
}
