package core

import "math"

// RobotID is a unique robot identifier.
type RobotID int

// Robot is a mower agent. Position is continuous; tile membership is derived
// through the grid's mapper. A robot is created once at the base station and
// never destroyed, only suspended while recharging.
type Robot struct {
	ID      RobotID
	Pos     Pos
	Heading float64 // Radians, 0 = +X
	Speed   float64 // Tile lengths advanced per tick

	AutonomyMax float64
	Autonomy    float64 // Remaining budget, <= AutonomyMax

	State  RobotState
	Bounce BounceMode
	Cut    CutMode

	// Inside is the isolated area currently occupied, zero outside.
	Inside IsolatedAreaID

	// SweepHeading is the current straight-line sweep direction in
	// random-sweep mode, one of the eight compass offsets.
	SweepHeading TileIndex
}

// NewRobot creates a robot at the base station, fully charged and moving.
func NewRobot(id RobotID, start Pos, heading, speed, autonomy float64, bounce BounceMode, cut CutMode) *Robot {
	return &Robot{
		ID:          id,
		Pos:         start,
		Heading:     heading,
		Speed:       speed,
		AutonomyMax: autonomy,
		Autonomy:    autonomy,
		State:       StateMoving,
		Bounce:      bounce,
		Cut:         cut,
	}
}

// Direction returns the unit direction vector of the current heading.
func (r *Robot) Direction() (dx, dy float64) {
	return math.Cos(r.Heading), math.Sin(r.Heading)
}

// Reflect negates the direction vector, the ping-pong bounce.
func (r *Robot) Reflect() {
	r.Heading = math.Mod(r.Heading+math.Pi, 2*math.Pi)
}

// ConsumeAutonomy decreases the remaining budget. Negative results are
// clamped; the simulator treats any attempt to act with zero budget as a
// recharge trigger, so the clamp never hides motion.
func (r *Robot) ConsumeAutonomy(units float64) {
	r.Autonomy -= units
	if r.Autonomy < 0 {
		r.Autonomy = 0
	}
}

// Depleted reports whether the autonomy budget is exhausted.
func (r *Robot) Depleted() bool {
	return r.Autonomy <= 0
}

// ResetAutonomy restores the full budget, the instantaneous recharge event.
func (r *Robot) ResetAutonomy() {
	r.Autonomy = r.AutonomyMax
}

// AutonomyPercentage returns the remaining budget as a percentage.
func (r *Robot) AutonomyPercentage() float64 {
	if r.AutonomyMax <= 0 {
		return 0
	}
	return r.Autonomy / r.AutonomyMax * 100
}
