// Package vis provides an interactive playback viewer for recorded
// mowing runs. It renders the field as a coverage heatmap with robot
// trails and a tick scrubber.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/grasslab/mowsim/internal/vis/state"
	"github.com/grasslab/mowsim/internal/vis/widgets"
)

// App owns the viewer window state and widgets.
type App struct {
	state    *state.State
	theme    *material.Theme
	heatmap  *widgets.Heatmap
	timeline *widgets.Timeline
}

// NewApp builds the viewer for a recorded run.
func NewApp(st *state.State) *App {
	return &App{
		state:    st,
		theme:    material.NewTheme(),
		heatmap:  widgets.NewHeatmap(st),
		timeline: widgets.NewTimeline(st),
	}
}

// Run drives the window event loop until the window is closed.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		a.state.Playback.TogglePlay()
	case key.NameLeftArrow:
		a.state.Playback.StepBack()
	case key.NameRightArrow:
		a.state.Playback.StepForward()
	case key.NameUpArrow:
		a.state.Playback.Speed *= 2
	case key.NameDownArrow:
		if a.state.Playback.Speed > 1 {
			a.state.Playback.Speed /= 2
		}
	case key.NameHome:
		a.state.Playback.Reset()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 24, G: 26, B: 28, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.heatmap.Layout(gtx, a.theme)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
