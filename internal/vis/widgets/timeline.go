package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/grasslab/mowsim/internal/vis/state"
)

// Timeline is a tick scrubber over the recorded run.
type Timeline struct {
	state    *state.State
	dragging bool
}

// NewTimeline creates the scrubber widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{state: st}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 60
	margin := 20
	trackWidth := gtx.Constraints.Max.X - 2*margin

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	t.handlePointerEvents(gtx, height, margin, trackWidth)

	trackY := height / 2
	trackHeight := 6
	trackRect := image.Rect(margin, trackY-trackHeight/2, margin+trackWidth, trackY+trackHeight/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(trackRect).Op())

	fillWidth := int(float64(trackWidth) * t.state.Playback.Progress())
	if fillWidth > 0 {
		fillRect := image.Rect(margin, trackY-trackHeight/2, margin+fillWidth, trackY+trackHeight/2)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 140, G: 210, B: 120, A: 255}, clip.Rect(fillRect).Op())
	}

	playheadX := margin + fillWidth
	playheadSize := 12
	playheadRect := image.Rect(playheadX-playheadSize/2, trackY-playheadSize/2, playheadX+playheadSize/2, trackY+playheadSize/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, clip.Rect(playheadRect).Op())

	t.drawLabels(gtx, th)

	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	var cycle int
	if f := t.state.FrameAt(t.state.Playback.CurrentTime); f != nil {
		cycle = f.Cycle
	}

	tickLabel := material.Label(th, 12, fmt.Sprintf("tick %d / %d", int(t.state.Playback.CurrentTime), int(t.state.Playback.MaxTime)))
	tickLabel.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	tickLabel.Alignment = text.Start

	cycleLabel := material.Label(th, 12, fmt.Sprintf("cycle %d", cycle))
	cycleLabel.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}

	speedLabel := material.Label(th, 12, fmt.Sprintf("%.0f ticks/s", t.state.Playback.Speed))
	speedLabel.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	speedLabel.Alignment = text.End

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(tickLabel.Layout),
			layout.Rigid(cycleLabel.Layout),
			layout.Rigid(speedLabel.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context, height, margin, trackWidth int) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, height)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			switch pe.Kind {
			case pointer.Press:
				t.dragging = true
				t.seek(pe.Position.X, margin, trackWidth)
			case pointer.Drag:
				if t.dragging {
					t.seek(pe.Position.X, margin, trackWidth)
				}
			case pointer.Release:
				t.dragging = false
			}
		}
	}
}

func (t *Timeline) seek(screenX float32, margin, trackWidth int) {
	progress := (float64(screenX) - float64(margin)) / float64(trackWidth)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	t.state.Playback.SetTime(progress * t.state.Playback.MaxTime)
}
