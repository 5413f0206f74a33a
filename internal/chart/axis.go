package chart

import (
	"math"
	"time"

	"PairView/internal/domain/models"
	"PairView/internal/overlay"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Bounds of time.Time values whose UnixNano is defined.
var (
	minNanoTime = time.Unix(0, math.MinInt64)
	maxNanoTime = time.Unix(0, math.MaxInt64)
)

// timeToFloat matches the x values go-chart derives from TimeSeries.
func timeToFloat(t time.Time) float64 {
	return float64(t.UnixNano())
}

// axisMapper reads the ranges go-chart finalized for the current frame.
type axisMapper struct {
	xrange gochart.Range
	box    gochart.Box
}

func (m axisMapper) TimeToPixelX(t time.Time) float64 {
	if t.IsZero() || m.xrange == nil || t.Before(minNanoTime) || t.After(maxNanoTime) {
		return math.NaN()
	}
	delta := m.xrange.GetDelta()
	domain := m.xrange.GetDomain()
	if delta == 0 || domain == 0 || math.IsNaN(delta) {
		return math.NaN()
	}
	ratio := (timeToFloat(t) - m.xrange.GetMin()) / delta
	if m.xrange.IsDescending() {
		ratio = 1 - ratio
	}
	return float64(m.box.Left) + ratio*float64(domain)
}

func (m axisMapper) VerticalBounds() (float64, float64) {
	if m.box.Height() <= 0 {
		return math.NaN(), math.NaN()
	}
	return float64(m.box.Top), float64(m.box.Bottom)
}

// overlaySeries paints trade bands. It sits first in the series list so the lines draw over it.
type overlaySeries struct {
	trades []models.Trade
	opts   overlay.Options

	last []overlay.PaintCommand
}

func (s *overlaySeries) GetName() string             { return "Trades" }
func (s *overlaySeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s *overlaySeries) GetStyle() gochart.Style     { return gochart.Style{} }
func (s *overlaySeries) Validate() error             { return nil }

// Render runs once per frame after go-chart has set ranges and domains.
func (s *overlaySeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, _ gochart.Range, _ gochart.Style) {
	opts := s.opts
	opts.Clip = &overlay.Span{Min: float64(canvasBox.Left), Max: float64(canvasBox.Right)}

	s.last = overlay.Project(s.trades, axisMapper{xrange: xrange, box: canvasBox}, opts)
	overlay.Paint(r, s.last)
}
