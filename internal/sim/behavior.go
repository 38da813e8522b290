package sim

import (
	"math"
	"math/rand"

	"github.com/grasslab/mowsim/internal/core"
)

// StepResult reports what a behavior did with its tick.
type StepResult struct {
	Moved      bool
	Distance   float64 // Tile lengths traveled
	Visited    []core.TileIndex
	Collided   bool
	Deadlocked bool // All eight probe directions impassable
}

// Behavior advances one robot by one tick. Implementations draw randomness
// only from the supplied generator so runs replay bit-for-bit from a seed.
// Substituting a Behavior swaps the movement logic without touching the
// cycle controller.
type Behavior interface {
	Name() string
	Step(r *core.Robot, g *core.Grid, rng *rand.Rand) StepResult
}

// compassOffsets is the fixed probe order for random bounce and the sweep
// heading alphabet: upper-left diagonal first, then the remaining seven
// directions in deterministic row-major order.
var compassOffsets = [8]core.TileIndex{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// BounceBehavior moves the robot continuously along its heading and resolves
// collisions with the configured bounce policy. Cutting is standard: the
// destination tile is marked once per committed step.
type BounceBehavior struct {
	Mode core.BounceMode
}

func (b BounceBehavior) Name() string { return "bounce-" + b.Mode.String() }

func (b BounceBehavior) Step(r *core.Robot, g *core.Grid, rng *rand.Rand) StepResult {
	dx, dy := r.Direction()
	dist := r.Speed * g.TileSize
	cand := r.Pos.Add(dx*dist, dy*dist)

	if idx, blocked := firstObstruction(g, r, cand); !blocked {
		commit(r, g, cand, idx)
		return StepResult{Moved: true, Distance: r.Speed, Visited: []core.TileIndex{idx}}
	}

	// Impassable: bounce. The state stays visible in the tick's frame; the
	// next committed move restores Moving.
	r.State = core.StateBouncing

	switch b.Mode {
	case core.BouncePingPong:
		// Reflect and resume moving next tick from the same position.
		r.Reflect()
		return StepResult{Collided: true}

	default: // BounceRandom
		cur, err := g.TileAt(r.Pos)
		if err != nil {
			// The robot is always on the grid; treated as fatal upstream.
			return StepResult{Collided: true, Deadlocked: true}
		}
		for _, off := range compassOffsets {
			target := core.TileIndex{X: cur.X + off.X, Y: cur.Y + off.Y}
			if !g.PassableFrom(cur, target, r.Inside) {
				continue
			}
			pos := g.Center(target)
			r.Heading = math.Atan2(pos.Y-r.Pos.Y, pos.X-r.Pos.X)
			stepLen := r.Pos.Dist(pos) / g.TileSize
			commit(r, g, pos, target)
			return StepResult{Moved: true, Distance: stepLen, Collided: true, Visited: []core.TileIndex{target}}
		}
		// Bounded deadlock: stay put for this tick, keep the prior heading.
		return StepResult{Collided: true, Deadlocked: true}
	}
}

// SweepBehavior implements random-sweep cutting: straight tile-by-tile runs
// along a random heading, marking every tile traversed, re-drawing a heading
// whenever the sweep hits impassable terrain. Diagonal steps clip the two
// orthogonal neighbors the mower deck crosses, so one step can mark several
// tiles.
type SweepBehavior struct{}

func (SweepBehavior) Name() string { return "random-sweep" }

func (SweepBehavior) Step(r *core.Robot, g *core.Grid, rng *rand.Rand) StepResult {
	cur, err := g.TileAt(r.Pos)
	if err != nil {
		return StepResult{Deadlocked: true}
	}

	dir := r.SweepHeading
	if dir == (core.TileIndex{}) || !g.PassableFrom(cur, advance(cur, dir), r.Inside) {
		var ok bool
		dir, ok = drawHeading(g, cur, r.Inside, rng)
		if !ok {
			// All eight directions blocked; wait in place one tick.
			return StepResult{Collided: true, Deadlocked: true}
		}
		r.SweepHeading = dir
	}

	target := advance(cur, dir)
	visited := []core.TileIndex{target}
	if dir.X != 0 && dir.Y != 0 {
		for _, side := range [2]core.TileIndex{{X: cur.X + dir.X, Y: cur.Y}, {X: cur.X, Y: cur.Y + dir.Y}} {
			if g.PassableFrom(cur, side, r.Inside) {
				visited = append(visited, side)
			}
		}
	}

	pos := g.Center(target)
	r.Heading = math.Atan2(float64(dir.Y), float64(dir.X))
	stepLen := r.Pos.Dist(pos) / g.TileSize
	commit(r, g, pos, target)
	return StepResult{Moved: true, Distance: stepLen, Visited: visited}
}

// drawHeading samples sweep directions until a passable one turns up. The
// attempt count is bounded by the alphabet size; a full blank means the
// robot is enclosed.
func drawHeading(g *core.Grid, cur core.TileIndex, inside core.IsolatedAreaID, rng *rand.Rand) (core.TileIndex, bool) {
	perm := rng.Perm(len(compassOffsets))
	for _, i := range perm {
		dir := compassOffsets[i]
		if g.PassableFrom(cur, advance(cur, dir), inside) {
			return dir, true
		}
	}
	return core.TileIndex{}, false
}

func advance(idx, dir core.TileIndex) core.TileIndex {
	return core.TileIndex{X: idx.X + dir.X, Y: idx.Y + dir.Y}
}

// firstObstruction walks the segment from the robot to cand in half-tile
// increments and reports the first impassable tile, so a fast robot cannot
// tunnel through a thin obstacle. Isolated-area membership follows the
// samples: crossing an opening switches which side of the fence is passable.
// Returns the destination tile when clear.
func firstObstruction(g *core.Grid, r *core.Robot, cand core.Pos) (core.TileIndex, bool) {
	if !g.ContainsPos(cand) {
		return core.TileIndex{}, true
	}
	inside := r.Inside
	atOpening := false
	if cur, err := g.TileAt(r.Pos); err == nil {
		atOpening = g.Tile(cur).Type == core.TileOpening
	}
	total := r.Pos.Dist(cand)
	steps := int(math.Ceil(total/(g.TileSize/2))) + 1
	var idx core.TileIndex
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		p := core.Pos{X: r.Pos.X + (cand.X-r.Pos.X)*f, Y: r.Pos.Y + (cand.Y-r.Pos.Y)*f}
		var err error
		idx, err = g.TileAt(p)
		if err != nil {
			return idx, true
		}
		if !g.Passable(idx, inside) {
			if !atOpening || !g.Passable(idx, 0) {
				return idx, true
			}
			inside = 0
		}
		switch g.Tile(idx).Type {
		case core.TileOpening:
			inside = g.IsolatedOwner(idx)
			atOpening = true
		case core.TileIsolated:
			inside = g.IsolatedOwner(idx)
			atOpening = false
		default:
			inside = 0
			atOpening = false
		}
	}
	return idx, false
}

// commit finalizes a move: position, isolated-area membership, and state.
func commit(r *core.Robot, g *core.Grid, pos core.Pos, idx core.TileIndex) {
	r.Pos = pos
	switch g.Tile(idx).Type {
	case core.TileOpening, core.TileIsolated:
		r.Inside = g.IsolatedOwner(idx)
	default:
		r.Inside = 0
	}
	r.State = core.StateMoving
}

// BehaviorFor returns the behavior matching the robot's configured modes.
func BehaviorFor(cut core.CutMode, bounce core.BounceMode) Behavior {
	if cut == core.CutRandomSweep {
		return SweepBehavior{}
	}
	return BounceBehavior{Mode: bounce}
}
