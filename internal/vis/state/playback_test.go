package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grasslab/mowsim/internal/sim"
)

func TestPlaybackControls(t *testing.T) {
	p := NewPlaybackState(200)
	assert.False(t, p.Playing)
	assert.Zero(t, p.Progress())

	p.TogglePlay()
	assert.True(t, p.Playing)
	p.Pause()
	assert.False(t, p.Playing)

	p.SetTime(500)
	assert.Equal(t, 200.0, p.CurrentTime, "cursor clamps to the recording length")
	p.SetTime(-10)
	assert.Zero(t, p.CurrentTime)

	p.StepForward()
	assert.Equal(t, 2.0, p.CurrentTime, "one percent of the recording")
	p.StepBack()
	assert.Zero(t, p.CurrentTime)

	p.SetTime(200)
	p.TogglePlay()
	assert.Zero(t, p.CurrentTime, "replaying from the end rewinds first")
}

func TestRecorderCapturesRun(t *testing.T) {
	rec := &Recorder{}
	rec.OnTick(sim.Frame{Tick: 1})
	rec.OnTick(sim.Frame{Tick: 2})
	rec.OnCycle(sim.CycleRecord{Index: 0})

	assert.Len(t, rec.Frames, 2)
	assert.Len(t, rec.Cycles, 1)
}

func TestFrameAtClamps(t *testing.T) {
	s := &State{
		Frames:   []sim.Frame{{Tick: 1}, {Tick: 2}, {Tick: 3}},
		Playback: NewPlaybackState(3),
	}

	assert.Equal(t, 1, s.FrameAt(0).Tick)
	assert.Equal(t, 2, s.FrameAt(1.7).Tick)
	assert.Equal(t, 3, s.FrameAt(99).Tick)
	assert.Nil(t, (&State{Playback: NewPlaybackState(0)}).FrameAt(0))
}
