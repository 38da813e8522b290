// Package widgets provides Gio UI widgets for the coverage viewer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/grasslab/mowsim/internal/core"
	"github.com/grasslab/mowsim/internal/vis/state"
)

// Heatmap renders the field: tile types, visit-count shading, the robot
// trail up to the playback cursor, and the robots themselves.
type Heatmap struct {
	state *state.State
}

// NewHeatmap creates the field widget.
func NewHeatmap(st *state.State) *Heatmap {
	return &Heatmap{state: st}
}

var typeColors = map[core.TileType]color.NRGBA{
	core.TileGuideLine:      {R: 120, G: 144, B: 112, A: 255},
	core.TileOpening:        {R: 222, G: 196, B: 92, A: 255},
	core.TileSquaredBlocked: {R: 70, G: 72, B: 78, A: 255},
	core.TileCircledBlocked: {R: 88, G: 80, B: 72, A: 255},
	core.TileIsolated:       {R: 84, G: 110, B: 150, A: 255},
	core.TileBaseStation:    {R: 200, G: 80, B: 80, A: 255},
}

// Layout renders the heatmap.
func (h *Heatmap) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	rows := len(h.state.Layout)
	if rows == 0 {
		return layout.Dimensions{Size: bounds}
	}
	cols := len(h.state.Layout[0])

	// Fit the grid into the available area, preserving square tiles.
	cell := bounds.X / cols
	if alt := bounds.Y / rows; alt < cell {
		cell = alt
	}
	if cell < 1 {
		cell = 1
	}
	offX := (bounds.X - cell*cols) / 2
	offY := (bounds.Y - cell*rows) / 2

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			rect := image.Rect(offX+x*cell, offY+y*cell, offX+(x+1)*cell-1, offY+(y+1)*cell-1)
			paint.FillShape(gtx.Ops, h.tileColor(x, y), clip.Rect(rect).Op())
		}
	}

	h.drawTrail(gtx, cell, offX, offY)
	h.drawRobots(gtx, cell, offX, offY)

	return layout.Dimensions{Size: bounds}
}

// tileColor shades grass by its visit count; other types keep fixed colors.
func (h *Heatmap) tileColor(x, y int) color.NRGBA {
	t := h.state.Layout[y][x]
	if c, ok := typeColors[t]; ok {
		return c
	}
	// Grass: dark green to bright green by coverage.
	v := h.state.Cumulative[y][x]
	if h.state.MaxCount == 0 || v == 0 {
		return color.NRGBA{R: 34, G: 60, B: 36, A: 255}
	}
	f := float64(v) / float64(h.state.MaxCount)
	return color.NRGBA{
		R: uint8(34 + f*60),
		G: uint8(60 + f*170),
		B: uint8(36 + f*60),
		A: 255,
	}
}

func (h *Heatmap) drawTrail(gtx layout.Context, cell, offX, offY int) {
	cursor := int(h.state.Playback.CurrentTime)
	stride := len(h.state.Frames)/2000 + 1 // Cap the trail draw cost
	for i := 0; i < cursor && i < len(h.state.Frames); i += stride {
		for _, r := range h.state.Frames[i].Robots {
			px, py := h.toScreen(r.X, r.Y, cell, offX, offY)
			dot := image.Rect(px-1, py-1, px+1, py+1)
			paint.FillShape(gtx.Ops, color.NRGBA{R: 240, G: 240, B: 240, A: 90}, clip.Rect(dot).Op())
		}
	}
}

func (h *Heatmap) drawRobots(gtx layout.Context, cell, offX, offY int) {
	f := h.state.FrameAt(h.state.Playback.CurrentTime)
	if f == nil {
		return
	}
	for _, r := range f.Robots {
		px, py := h.toScreen(r.X, r.Y, cell, offX, offY)
		size := cell/2 + 2
		body := image.Rect(px-size/2, py-size/2, px+size/2, py+size/2)
		col := color.NRGBA{R: 255, G: 160, B: 40, A: 255}
		if r.State == core.StateRecharging.String() {
			col = color.NRGBA{R: 120, G: 160, B: 255, A: 255}
		}
		paint.FillShape(gtx.Ops, col, clip.Ellipse(body).Op(gtx.Ops))
	}
}

func (h *Heatmap) toScreen(wx, wy float64, cell, offX, offY int) (int, int) {
	return offX + int(wx/h.state.TileSize*float64(cell)),
		offY + int(wy/h.state.TileSize*float64(cell))
}
