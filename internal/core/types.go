// Package core defines domain models for the mowing coverage simulator.
package core

import "fmt"

// TileType classifies a grid tile.
type TileType int

const (
	TileGrass          TileType = iota // Uncut grass, passable
	TileGuideLine                      // Guiding line, passable
	TileOpening                        // Entry/exit of an isolated area, passable
	TileSquaredBlocked                 // Part of a squared obstacle
	TileCircledBlocked                 // Part of a circled obstacle
	TileIsolated                       // Interior of an isolated area
	TileBaseStation                    // Recharge station
)

func (t TileType) String() string {
	return [...]string{"Grass", "GuideLine", "Opening", "SquaredBlocked", "CircledBlocked", "Isolated", "BaseStation"}[t]
}

// Blocked reports whether the tile type is impassable for every robot.
// Isolated interiors are handled separately: they admit robots that entered
// through an opening.
func (t TileType) Blocked() bool {
	return t == TileSquaredBlocked || t == TileCircledBlocked
}

// BounceMode selects the collision resolution policy.
type BounceMode int

const (
	BouncePingPong BounceMode = iota // Reflect heading by 180 degrees
	BounceRandom                     // Probe the eight compass directions in fixed order
)

func (m BounceMode) String() string {
	return [...]string{"ping-pong", "random"}[m]
}

// ParseBounceMode maps a configuration string to a BounceMode.
func ParseBounceMode(s string) (BounceMode, error) {
	switch s {
	case "ping-pong", "pingpong":
		return BouncePingPong, nil
	case "random":
		return BounceRandom, nil
	}
	return 0, fmt.Errorf("unknown bounce mode %q", s)
}

// CutMode selects which tiles are marked per committed move.
type CutMode int

const (
	CutStandard    CutMode = iota // Mark the destination tile once per step
	CutRandomSweep                // Straight-line sweeps along random headings
)

func (m CutMode) String() string {
	return [...]string{"standard", "random-sweep"}[m]
}

// ParseCutMode maps a configuration string to a CutMode.
func ParseCutMode(s string) (CutMode, error) {
	switch s {
	case "standard":
		return CutStandard, nil
	case "random-sweep", "sweep":
		return CutRandomSweep, nil
	}
	return 0, fmt.Errorf("unknown cutting mode %q", s)
}

// AutonomyPolicy selects how autonomy is consumed per committed step.
type AutonomyPolicy int

const (
	AutonomyPerStep     AutonomyPolicy = iota // One unit per committed step
	AutonomyPerDistance                       // Units proportional to distance moved, in tile lengths
)

func (p AutonomyPolicy) String() string {
	return [...]string{"step", "distance"}[p]
}

// ParseAutonomyPolicy maps a configuration string to an AutonomyPolicy.
func ParseAutonomyPolicy(s string) (AutonomyPolicy, error) {
	switch s {
	case "step", "per-step":
		return AutonomyPerStep, nil
	case "distance", "per-distance":
		return AutonomyPerDistance, nil
	}
	return 0, fmt.Errorf("unknown autonomy policy %q", s)
}

// RobotState is the robot's position in its behavior state machine.
type RobotState int

const (
	StateMoving RobotState = iota
	StateColliding
	StateBouncing
	StateRecharging
	StateTerminated
)

func (s RobotState) String() string {
	return [...]string{"Moving", "Colliding", "Bouncing", "Recharging", "Terminated"}[s]
}
