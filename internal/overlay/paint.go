package overlay

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Canvas is the subset of a chart renderer the overlay draws with.
type Canvas interface {
	SetFillColor(c drawing.Color)
	MoveTo(x, y int)
	LineTo(x, y int)
	Close()
	Fill()
	ResetStyle()
}

// Paint fills each command's rectangle and resets the canvas style after every band
// so no fill color leaks into the next band or the series drawn afterwards.
func Paint(c Canvas, cmds []PaintCommand) int {
	for _, cmd := range cmds {
		l, r := pixel(cmd.Rect.Left), pixel(cmd.Rect.Right)
		t, b := pixel(cmd.Rect.Top), pixel(cmd.Rect.Bottom)

		c.SetFillColor(cmd.Fill)
		c.MoveTo(l, t)
		c.LineTo(r, t)
		c.LineTo(r, b)
		c.LineTo(l, b)
		c.Close()
		c.Fill()
		c.ResetStyle()
	}
	return len(cmds)
}

func pixel(v float64) int {
	return int(math.Round(v))
}
