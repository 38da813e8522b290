package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflectTwiceRestoresHeading(t *testing.T) {
	r := NewRobot(0, Pos{X: 1, Y: 1}, math.Pi/4, 1, 100, BouncePingPong, CutStandard)
	dx0, dy0 := r.Direction()

	r.Reflect()
	dx1, dy1 := r.Direction()
	assert.InDelta(t, -dx0, dx1, 1e-9)
	assert.InDelta(t, -dy0, dy1, 1e-9)

	r.Reflect()
	dx2, dy2 := r.Direction()
	assert.InDelta(t, dx0, dx2, 1e-9)
	assert.InDelta(t, dy0, dy2, 1e-9)
}

func TestConsumeAutonomyClamps(t *testing.T) {
	r := NewRobot(0, Pos{}, 0, 1, 10, BouncePingPong, CutStandard)

	r.ConsumeAutonomy(4)
	assert.InDelta(t, 6.0, r.Autonomy, 1e-9)
	assert.False(t, r.Depleted())

	r.ConsumeAutonomy(100)
	assert.Zero(t, r.Autonomy)
	assert.True(t, r.Depleted())

	r.ResetAutonomy()
	assert.InDelta(t, 10.0, r.Autonomy, 1e-9)
	assert.False(t, r.Depleted())
}

func TestAutonomyPercentage(t *testing.T) {
	r := NewRobot(0, Pos{}, 0, 1, 200, BouncePingPong, CutStandard)
	r.ConsumeAutonomy(50)
	assert.InDelta(t, 75.0, r.AutonomyPercentage(), 1e-9)

	zero := NewRobot(1, Pos{}, 0, 1, 0, BouncePingPong, CutStandard)
	assert.Zero(t, zero.AutonomyPercentage())
}

func TestNewRobotStartsCharged(t *testing.T) {
	r := NewRobot(3, Pos{X: 2, Y: 5}, math.Pi, 1.5, 300, BounceRandom, CutRandomSweep)
	assert.Equal(t, RobotID(3), r.ID)
	assert.Equal(t, StateMoving, r.State)
	assert.InDelta(t, 300.0, r.Autonomy, 1e-9)
	assert.Equal(t, IsolatedAreaID(0), r.Inside)
}
