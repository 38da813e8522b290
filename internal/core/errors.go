package core

import (
	"errors"
	"fmt"
)

// OutOfBoundsError reports a continuous position outside the field.
type OutOfBoundsError struct {
	Pos Pos
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position (%.3f, %.3f) is outside the field", e.Pos.X, e.Pos.Y)
}

// OverlapError reports a manual area whose footprint intersects an already
// placed area, the base station, or the grid edge.
type OverlapError struct {
	Area     string
	Conflict string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s overlaps %s", e.Area, e.Conflict)
}

// PlacementExhaustedError reports that randomized placement ran out of
// attempts. The caller may retry with relaxed constraints; the grid is too
// small or too crowded for the requested configuration.
type PlacementExhaustedError struct {
	Area     string
	Attempts int
}

func (e *PlacementExhaustedError) Error() string {
	return fmt.Sprintf("no valid placement for %s after %d attempts", e.Area, e.Attempts)
}

// UnreachableAreaError reports an isolated area with no boundary tile
// bordering free space, so no opening can be carved.
type UnreachableAreaError struct {
	Area string
}

func (e *UnreachableAreaError) Error() string {
	return fmt.Sprintf("%s has no boundary adjacent to free space, cannot place an opening", e.Area)
}

// InvariantError is a fatal internal defect: the simulation computed a state
// it promised never to reach, such as a robot on an impassable tile or a
// negative autonomy budget. The run aborts with full state context.
type InvariantError struct {
	Invariant string
	Robot     RobotID
	Pos       Pos
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q violated by robot %d at (%.3f, %.3f): %s",
		e.Invariant, e.Robot, e.Pos.X, e.Pos.Y, e.Detail)
}

// IsRecoverable reports whether the error is a data condition the caller may
// retry (placement exhaustion) rather than a defect or invalid input.
func IsRecoverable(err error) bool {
	var pe *PlacementExhaustedError
	return errors.As(err, &pe)
}
