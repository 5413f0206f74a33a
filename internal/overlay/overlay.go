// Package overlay turns trade intervals into shaded bands for the current frame of a chart.
//
// Project is pure: it reads the trades and the frame's axis mapping and returns paint commands.
// Paint replays those commands on a canvas. Nothing is kept between frames.
package overlay

import (
	"math"
	"time"

	"PairView/internal/domain/models"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// AxisMapper is the chart's mapping for the frame about to be drawn.
// TimeToPixelX returns NaN when t cannot be placed (zero time or axis not ready).
type AxisMapper interface {
	TimeToPixelX(t time.Time) float64
	VerticalBounds() (top, bottom float64)
}

var (
	// WinFill is translucent green, rgba(0,128,0,0.3).
	WinFill = drawing.Color{R: 0, G: 128, B: 0, A: 77}
	// LossFill is translucent red, rgba(255,0,0,0.3).
	LossFill = drawing.Color{R: 255, G: 0, B: 0, A: 77}
)

// Span is a closed horizontal pixel interval.
type Span struct {
	Min, Max float64
}

// Options tunes Project. Zero colors fall back to WinFill and LossFill.
type Options struct {
	WinFill  drawing.Color
	LossFill drawing.Color
	// Clip, when set, bounds bands to the plot area. Bands fully outside it are dropped.
	Clip *Span
}

// Rect is a band in pixel space.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns Right - Left.
func (r Rect) Width() float64 { return r.Right - r.Left }

// PaintCommand is one filled rectangle.
type PaintCommand struct {
	Rect    Rect
	Fill    drawing.Color
	Winning bool
	// Index is the trade's position in the input list.
	Index int
}

// Project maps every trade through m and returns one command per drawable trade, in input order.
// Trades whose entry or exit does not project to a finite pixel are skipped, as are bands
// lying entirely outside opts.Clip. Equal entry and exit produce a zero-width band.
func Project(trades []models.Trade, m AxisMapper, opts Options) []PaintCommand {
	if len(trades) == 0 || m == nil {
		return nil
	}
	win, loss := opts.WinFill, opts.LossFill
	if win == (drawing.Color{}) {
		win = WinFill
	}
	if loss == (drawing.Color{}) {
		loss = LossFill
	}

	top, bottom := m.VerticalBounds()
	if !finite(top) || !finite(bottom) {
		return nil
	}
	if top > bottom {
		top, bottom = bottom, top
	}

	cmds := make([]PaintCommand, 0, len(trades))
	for i, tr := range trades {
		x1 := m.TimeToPixelX(tr.EntryTime)
		x2 := m.TimeToPixelX(tr.ExitTime)
		if !finite(x1) || !finite(x2) {
			continue
		}
		left, right := math.Min(x1, x2), math.Max(x1, x2)

		if opts.Clip != nil {
			if right < opts.Clip.Min || left > opts.Clip.Max {
				continue
			}
			left = math.Max(left, opts.Clip.Min)
			right = math.Min(right, opts.Clip.Max)
		}

		fill := loss
		if tr.Winning() {
			fill = win
		}
		cmds = append(cmds, PaintCommand{
			Rect:    Rect{Left: left, Top: top, Right: right, Bottom: bottom},
			Fill:    fill,
			Winning: tr.Winning(),
			Index:   i,
		})
	}
	return cmds
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
