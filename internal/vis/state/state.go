// Package state holds the viewer's recorded run and playback position.
package state

import (
	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/sim"
)

// State is everything the viewer renders: the static layout, the recorded
// frames, the final coverage heatmap, and the playback cursor.
type State struct {
	Layout     [][]core.TileType
	TileSize   float64
	Frames     []sim.Frame
	Cycles     []sim.CycleRecord
	Cumulative [][]int
	MaxCount   int

	Playback *PlaybackState
}

// NewState assembles viewer state from a finished run.
func NewState(s *sim.Simulator, rec *Recorder) *State {
	cumulative := s.Coverage().Cumulative()
	maxCount := 0
	for _, row := range cumulative {
		for _, v := range row {
			if v > maxCount {
				maxCount = v
			}
		}
	}
	return &State{
		Layout:     s.Coverage().TypeGrid(),
		TileSize:   s.Grid().TileSize,
		Frames:     rec.Frames,
		Cycles:     rec.Cycles,
		Cumulative: cumulative,
		MaxCount:   maxCount,
		Playback:   NewPlaybackState(float64(len(rec.Frames))),
	}
}

// FrameAt returns the recorded frame at the playback cursor.
func (s *State) FrameAt(t float64) *sim.Frame {
	if len(s.Frames) == 0 {
		return nil
	}
	i := int(t)
	if i >= len(s.Frames) {
		i = len(s.Frames) - 1
	}
	if i < 0 {
		i = 0
	}
	return &s.Frames[i]
}

// Recorder captures frames and cycle records during a run so the viewer can
// replay it. It implements sim.Observer.
type Recorder struct {
	Frames []sim.Frame
	Cycles []sim.CycleRecord
}

// OnTick implements sim.Observer.
func (r *Recorder) OnTick(f sim.Frame) {
	r.Frames = append(r.Frames, f)
}

// OnCycle implements sim.Observer.
func (r *Recorder) OnCycle(rec sim.CycleRecord) {
	r.Cycles = append(r.Cycles, rec)
}
