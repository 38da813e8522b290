package state

import "time"

// PlaybackState manages replay timing over the recorded frames. Time is
// measured in frames; Speed is frames advanced per wall-clock second.
type PlaybackState struct {
	CurrentTime float64
	MaxTime     float64
	Speed       float64
	Playing     bool
	lastUpdate  time.Time
}

// NewPlaybackState creates a paused playback at the start of the recording.
func NewPlaybackState(maxTime float64) *PlaybackState {
	return &PlaybackState{
		MaxTime:    maxTime,
		Speed:      60,
		lastUpdate: time.Now(),
	}
}

// TogglePlay toggles playback on/off, rewinding when at the end.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = time.Now()
		if p.CurrentTime >= p.MaxTime {
			p.CurrentTime = 0
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset rewinds to the beginning.
func (p *PlaybackState) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance moves the cursor by the wall-clock time since the last update.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}
	now := time.Now()
	p.CurrentTime += now.Sub(p.lastUpdate).Seconds() * p.Speed
	p.lastUpdate = now
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime clamps and sets the cursor.
func (p *PlaybackState) SetTime(t float64) {
	if t < 0 {
		t = 0
	}
	if t > p.MaxTime {
		t = p.MaxTime
	}
	p.CurrentTime = t
}

// StepForward pauses and jumps ahead one percent of the recording.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(p.CurrentTime + p.step())
}

// StepBack pauses and jumps back one percent of the recording.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(p.CurrentTime - p.step())
}

func (p *PlaybackState) step() float64 {
	step := p.MaxTime / 100
	if step < 1 {
		step = 1
	}
	return step
}

// Progress returns the cursor position as 0-1.
func (p *PlaybackState) Progress() float64 {
	if p.MaxTime <= 0 {
		return 0
	}
	return p.CurrentTime / p.MaxTime
}
