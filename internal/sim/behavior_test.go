package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grasslab/mowsim/internal/core"
)

func testRobot(g *core.Grid, start core.TileIndex, heading float64, bounce core.BounceMode, cut core.CutMode) *core.Robot {
	return core.NewRobot(0, g.Center(start), heading, 1, 1000, bounce, cut)
}

func TestPingPongCorridorRoundTrip(t *testing.T) {
	g := core.NewGrid(10, 10, 1.0)
	r := testRobot(g, core.TileIndex{X: 0, Y: 5}, 0, core.BouncePingPong, core.CutStandard)
	b := BounceBehavior{Mode: core.BouncePingPong}
	rng := rand.New(rand.NewSource(1))

	start := r.Pos
	moves, bounces := 0, 0
	for i := 0; i < 20; i++ {
		res := b.Step(r, g, rng)
		if res.Moved {
			moves++
		}
		if res.Collided {
			bounces++
		}
	}

	// Nine steps east, a wall bounce, nine steps west, a second bounce.
	assert.Equal(t, 18, moves)
	assert.Equal(t, 2, bounces)
	assert.InDelta(t, start.X, r.Pos.X, 1e-9)
	assert.InDelta(t, start.Y, r.Pos.Y, 1e-9)
	dx, dy := r.Direction()
	assert.InDelta(t, 1.0, dx, 1e-9, "two reflections restore the original heading")
	assert.InDelta(t, 0.0, dy, 1e-9)
}

func TestPingPongBounceDoesNotMove(t *testing.T) {
	g := core.NewGrid(5, 5, 1.0)
	g.SetType(core.TileIndex{X: 3, Y: 2}, core.TileSquaredBlocked)

	r := testRobot(g, core.TileIndex{X: 2, Y: 2}, 0, core.BouncePingPong, core.CutStandard)
	b := BounceBehavior{Mode: core.BouncePingPong}
	before := r.Pos

	res := b.Step(r, g, rand.New(rand.NewSource(1)))
	assert.True(t, res.Collided)
	assert.False(t, res.Moved)
	assert.Empty(t, res.Visited)
	assert.Equal(t, before, r.Pos, "the bounce tick spends the tick without moving")
	assert.Equal(t, core.StateBouncing, r.State, "the bounce is visible until the next committed move")
}

func TestRandomBounceProbesUpperLeftFirst(t *testing.T) {
	g := core.NewGrid(5, 5, 1.0)
	g.SetType(core.TileIndex{X: 3, Y: 2}, core.TileSquaredBlocked)

	r := testRobot(g, core.TileIndex{X: 2, Y: 2}, 0, core.BounceRandom, core.CutStandard)
	b := BounceBehavior{Mode: core.BounceRandom}

	res := b.Step(r, g, rand.New(rand.NewSource(1)))
	require.True(t, res.Moved)
	assert.True(t, res.Collided)

	idx, err := g.TileAt(r.Pos)
	require.NoError(t, err)
	assert.Equal(t, core.TileIndex{X: 1, Y: 1}, idx, "the upper-left diagonal is probed first")
}

func TestRandomBounceSkipsBlockedProbes(t *testing.T) {
	g := core.NewGrid(5, 5, 1.0)
	// Block everything around (2,2) except the lower-right diagonal, plus
	// the tile ahead so the straight move collides.
	for _, idx := range g.Neighbors(core.TileIndex{X: 2, Y: 2}) {
		if idx == (core.TileIndex{X: 3, Y: 3}) {
			continue
		}
		g.SetType(idx, core.TileSquaredBlocked)
	}

	r := testRobot(g, core.TileIndex{X: 2, Y: 2}, 0, core.BounceRandom, core.CutStandard)
	b := BounceBehavior{Mode: core.BounceRandom}

	res := b.Step(r, g, rand.New(rand.NewSource(1)))
	require.True(t, res.Moved)

	idx, err := g.TileAt(r.Pos)
	require.NoError(t, err)
	assert.Equal(t, core.TileIndex{X: 3, Y: 3}, idx)
}

func TestRandomBounceDeadlockStaysPut(t *testing.T) {
	g := core.NewGrid(5, 5, 1.0)
	for _, idx := range g.Neighbors(core.TileIndex{X: 2, Y: 2}) {
		g.SetType(idx, core.TileSquaredBlocked)
	}

	r := testRobot(g, core.TileIndex{X: 2, Y: 2}, 0, core.BounceRandom, core.CutStandard)
	b := BounceBehavior{Mode: core.BounceRandom}
	before := r.Pos
	heading := r.Heading

	res := b.Step(r, g, rand.New(rand.NewSource(1)))
	assert.True(t, res.Deadlocked)
	assert.False(t, res.Moved)
	assert.Equal(t, before, r.Pos)
	assert.Equal(t, heading, r.Heading, "heading survives a deadlocked tick")
	assert.Equal(t, core.StateBouncing, r.State)
}

func TestFastRobotCannotTunnel(t *testing.T) {
	g := core.NewGrid(10, 10, 1.0)
	g.SetType(core.TileIndex{X: 4, Y: 5}, core.TileSquaredBlocked)

	r := testRobot(g, core.TileIndex{X: 2, Y: 5}, 0, core.BouncePingPong, core.CutStandard)
	r.Speed = 4 // Would land past the obstacle if motion teleported.
	b := BounceBehavior{Mode: core.BouncePingPong}

	res := b.Step(r, g, rand.New(rand.NewSource(1)))
	assert.True(t, res.Collided)
	assert.False(t, res.Moved)
	idx, err := g.TileAt(r.Pos)
	require.NoError(t, err)
	assert.Equal(t, core.TileIndex{X: 2, Y: 5}, idx)
}

// fencedGrid builds an 8x8 grid with a 3x3 isolated interior at (3,3)..(5,5)
// owned by area 1, its opening at (4,3).
func fencedGrid() *core.Grid {
	g := core.NewGrid(8, 8, 1.0)
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			idx := core.TileIndex{X: x, Y: y}
			g.SetType(idx, core.TileIsolated)
			g.ClaimIsolated(idx, 1)
		}
	}
	opening := core.TileIndex{X: 4, Y: 3}
	g.SetType(opening, core.TileOpening)
	g.ClaimIsolated(opening, 1)
	return g
}

func TestIsolatedAreaEnteredOnlyThroughOpening(t *testing.T) {
	g := fencedGrid()
	b := BounceBehavior{Mode: core.BouncePingPong}
	rng := rand.New(rand.NewSource(1))
	south := math.Pi / 2

	// A robot aimed at the interior from outside bounces.
	blockedIn := testRobot(g, core.TileIndex{X: 5, Y: 2}, south, core.BouncePingPong, core.CutStandard)
	res := b.Step(blockedIn, g, rng)
	assert.True(t, res.Collided)
	assert.False(t, res.Moved)
	assert.Equal(t, core.IsolatedAreaID(0), blockedIn.Inside)

	// The same approach over the opening enters, and from the opening the
	// interior is passable.
	entering := testRobot(g, core.TileIndex{X: 4, Y: 2}, south, core.BouncePingPong, core.CutStandard)
	res = b.Step(entering, g, rng)
	require.True(t, res.Moved)
	assert.Equal(t, core.IsolatedAreaID(1), entering.Inside)

	res = b.Step(entering, g, rng)
	require.True(t, res.Moved)
	idx, err := g.TileAt(entering.Pos)
	require.NoError(t, err)
	assert.Equal(t, core.TileIndex{X: 4, Y: 4}, idx)
	assert.Equal(t, core.IsolatedAreaID(1), entering.Inside)

	// Leaving back through the opening clears the membership.
	entering.Heading = -math.Pi / 2
	res = b.Step(entering, g, rng) // interior -> opening
	require.True(t, res.Moved)
	assert.Equal(t, core.IsolatedAreaID(1), entering.Inside)
	res = b.Step(entering, g, rng) // opening -> outside grass
	require.True(t, res.Moved)
	assert.Equal(t, core.IsolatedAreaID(0), entering.Inside)
}

func TestIsolatedAreaExitOnlyThroughOpening(t *testing.T) {
	g := fencedGrid()
	rng := rand.New(rand.NewSource(1))

	// A robot inside the area cannot step east across the fence onto the
	// exterior grass; it bounces in place and keeps its membership.
	r := testRobot(g, core.TileIndex{X: 5, Y: 4}, 0, core.BouncePingPong, core.CutStandard)
	r.Inside = 1
	res := BounceBehavior{Mode: core.BouncePingPong}.Step(r, g, rng)
	assert.True(t, res.Collided)
	assert.False(t, res.Moved)
	assert.Equal(t, core.IsolatedAreaID(1), r.Inside)
	idx, err := g.TileAt(r.Pos)
	require.NoError(t, err)
	assert.Equal(t, core.TileIndex{X: 5, Y: 4}, idx)

	// Random bounce probes every compass direction. A robot roaming inside
	// may leave, but never straight from an interior tile to the exterior;
	// every crossing passes over the opening.
	r = testRobot(g, core.TileIndex{X: 4, Y: 4}, 0, core.BounceRandom, core.CutStandard)
	r.Inside = 1
	prev := core.TileIndex{X: 4, Y: 4}
	for i := 0; i < 40; i++ {
		BounceBehavior{Mode: core.BounceRandom}.Step(r, g, rng)
		cur, err := g.TileAt(r.Pos)
		require.NoError(t, err)
		if g.Tile(prev).Type == core.TileIsolated {
			require.NotEqual(t, core.IsolatedAreaID(0), g.IsolatedOwner(cur),
				"robot crossed the fence from %v to %v", prev, cur)
		}
		assert.Equal(t, g.IsolatedOwner(cur), r.Inside, "membership tracks the tile owner")
		prev = cur
	}
}

func TestSweepMarksDiagonalSideTiles(t *testing.T) {
	g := core.NewGrid(6, 6, 1.0)
	r := testRobot(g, core.TileIndex{X: 2, Y: 2}, 0, core.BouncePingPong, core.CutRandomSweep)
	r.SweepHeading = core.TileIndex{X: 1, Y: 1}

	res := SweepBehavior{}.Step(r, g, rand.New(rand.NewSource(1)))
	require.True(t, res.Moved)

	assert.ElementsMatch(t, []core.TileIndex{
		{X: 3, Y: 3}, // Destination
		{X: 3, Y: 2}, // Clipped side tiles
		{X: 2, Y: 3},
	}, res.Visited)

	idx, err := g.TileAt(r.Pos)
	require.NoError(t, err)
	assert.Equal(t, core.TileIndex{X: 3, Y: 3}, idx)
}

func TestSweepRedrawsHeadingOnBlock(t *testing.T) {
	g := core.NewGrid(6, 6, 1.0)
	g.SetType(core.TileIndex{X: 4, Y: 4}, core.TileSquaredBlocked)

	r := testRobot(g, core.TileIndex{X: 3, Y: 3}, 0, core.BouncePingPong, core.CutRandomSweep)
	r.SweepHeading = core.TileIndex{X: 1, Y: 1} // Leads into the obstacle.

	res := SweepBehavior{}.Step(r, g, rand.New(rand.NewSource(1)))
	require.True(t, res.Moved)
	assert.NotEqual(t, core.TileIndex{X: 1, Y: 1}, r.SweepHeading)
	idx, err := g.TileAt(r.Pos)
	require.NoError(t, err)
	assert.True(t, g.Passable(idx, r.Inside))
}

func TestSweepDeadlockWhenEnclosed(t *testing.T) {
	g := core.NewGrid(5, 5, 1.0)
	for _, idx := range g.Neighbors(core.TileIndex{X: 2, Y: 2}) {
		g.SetType(idx, core.TileSquaredBlocked)
	}

	r := testRobot(g, core.TileIndex{X: 2, Y: 2}, 0, core.BouncePingPong, core.CutRandomSweep)
	res := SweepBehavior{}.Step(r, g, rand.New(rand.NewSource(1)))
	assert.True(t, res.Deadlocked)
	assert.False(t, res.Moved)
}

func TestBehaviorFor(t *testing.T) {
	assert.Equal(t, "random-sweep", BehaviorFor(core.CutRandomSweep, core.BouncePingPong).Name())
	assert.Equal(t, "bounce-ping-pong", BehaviorFor(core.CutStandard, core.BouncePingPong).Name())
	assert.Equal(t, "bounce-random", BehaviorFor(core.CutStandard, core.BounceRandom).Name())
}
