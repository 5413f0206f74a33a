package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	"PairView/internal/overlay"
	"PairView/pkg/util"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	spreadColor = drawing.Color{R: 0, G: 0, B: 255, A: 255}
	zScoreColor = drawing.Color{R: 255, G: 0, B: 0, A: 255}
)

const lineWidth = 2.0

// Render draws one frame of the current window to w. Every call re-projects the trade bands
// through the ranges of that frame.
func (v *View) Render(w io.Writer, f Format) (FrameStats, error) {
	return v.RenderSize(w, f, v.cfg.Width, v.cfg.Height)
}

// RenderSize is Render with an explicit image size.
func (v *View) RenderSize(w io.Writer, f Format, width, height int) (FrameStats, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var provider gochart.RendererProvider = gochart.SVG
	if f == FormatPNG {
		provider = gochart.PNG
	}

	graph, bands, stats := v.build()
	graph.Width, graph.Height = width, height
	if err := graph.Render(provider, w); err != nil {
		return stats, fmt.Errorf("render %s: %w", f, err)
	}

	stats.BandsPainted = len(bands.last)
	stats.BandsSkipped = len(v.payload.Trades) - len(bands.last)
	stats.Bands = make([]overlay.Rect, 0, len(bands.last))
	for _, cmd := range bands.last {
		stats.Bands = append(stats.Bands, cmd.Rect)
	}

	if v.rec != nil {
		v.rec.ObserveFrame(stats)
	}
	return stats, nil
}

// build assembles the go-chart graph for the current window. Caller holds v.mu.
func (v *View) build() (*gochart.Chart, *overlaySeries, FrameStats) {
	s := v.payload.Series
	stats := FrameStats{Window: v.win}

	bands := &overlaySeries{trades: v.payload.Trades, opts: v.overlay}
	spread := gochart.TimeSeries{
		Name:  "Spread",
		Style: lineStyle(spreadColor),
	}

	yMin, yMax := math.Inf(1), math.Inf(-1)
	observe := func(val float64) {
		yMin = math.Min(yMin, val)
		yMax = math.Max(yMax, val)
	}

	var (
		zSegments []gochart.Series
		segment   *gochart.TimeSeries
	)
	for i, t := range s.Time {
		if !v.win.Contains(t) {
			segment = nil
			continue
		}
		spread.XValues = append(spread.XValues, t)
		spread.YValues = append(spread.YValues, s.Spread[i])
		observe(s.Spread[i])
		stats.SpreadPoints++

		z := s.ZScore[i]
		if z == nil || math.IsNaN(*z) {
			segment = nil
			continue
		}
		if segment == nil {
			segment = &gochart.TimeSeries{Name: "Z-Score", Style: lineStyle(zScoreColor)}
			zSegments = append(zSegments, segment)
		}
		segment.XValues = append(segment.XValues, t)
		segment.YValues = append(segment.YValues, *z)
		observe(*z)
		stats.ZScorePoints++
	}

	series := []gochart.Series{bands}
	if stats.SpreadPoints > 0 {
		series = append(series, spread)
	}
	series = append(series, zSegments...)

	legend := &gochart.Chart{Series: []gochart.Series{
		gochart.TimeSeries{Name: "Spread", Style: lineStyle(spreadColor), XValues: []time.Time{v.win.From}, YValues: []float64{0}},
		gochart.TimeSeries{Name: "Z-Score", Style: lineStyle(zScoreColor), XValues: []time.Time{v.win.From}, YValues: []float64{0}},
	}}

	lo, hi := fitRange(yMin, yMax)
	graph := &gochart.Chart{
		Title:  v.cfg.Title,
		Width:  v.cfg.Width,
		Height: v.cfg.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: dateFormatter,
			Range: &gochart.ContinuousRange{
				Min: timeToFloat(v.win.From),
				Max: timeToFloat(v.win.To),
			},
		},
		YAxis: gochart.YAxis{
			Name:           "Values",
			ValueFormatter: gochart.FloatValueFormatter,
			Range:          &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(legend)}

	return graph, bands, stats
}

// fitRange pads the visible value range so it is never flat.
func fitRange(lo, hi float64) (float64, float64) {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return -1, 1
	}
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		return lo - pad, hi + pad
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func lineStyle(c drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor: c,
		StrokeWidth: lineWidth,
	}
}

func dateFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return util.FormatDate(time.Unix(0, int64(f)))
	}
	return ""
}
