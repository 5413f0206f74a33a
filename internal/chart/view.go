// Package chart owns the viewport of one displayed chart and draws frames of it with go-chart.
package chart

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"PairView/internal/domain/models"
	"PairView/internal/overlay"
)

var (
	ErrEmptySeries   = errors.New("chart: empty series")
	ErrInvalidFactor = errors.New("chart: zoom factor must be positive")
)

// Window is the visible time interval, inclusive at both ends.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Width returns To - From.
func (w Window) Width() time.Duration { return w.To.Sub(w.From) }

// Contains reports whether t lies in the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// FrameStats describes one drawn frame.
type FrameStats struct {
	SpreadPoints int            `json:"spread_points"`
	ZScorePoints int            `json:"zscore_points"`
	BandsPainted int            `json:"bands_painted"`
	BandsSkipped int            `json:"bands_skipped"`
	Bands        []overlay.Rect `json:"bands"`
	Window       Window         `json:"window"`
}

// FrameRecorder receives stats after each frame.
type FrameRecorder interface {
	ObserveFrame(FrameStats)
}

// ViewOption configures View.
type ViewOption func(*View)

// WithFrameRecorder reports every frame to r.
func WithFrameRecorder(r FrameRecorder) ViewOption {
	return func(v *View) { v.rec = r }
}

// WithOverlayOptions overrides band colors.
func WithOverlayOptions(o overlay.Options) ViewOption {
	return func(v *View) { v.overlay = o }
}

// View is the chart for one payload. Zoom and pan move the window along the time axis only;
// the vertical axis is refit to the visible points on every frame.
type View struct {
	mu      sync.Mutex
	payload *models.ChartPayload
	opts    Options
	cfg     RenderConfig
	overlay overlay.Options
	rec     FrameRecorder

	unit   time.Duration
	domain Window
	win    Window
}

// NewView builds a view showing the whole payload.
func NewView(payload *models.ChartPayload, opts Options, cfg RenderConfig, vopts ...ViewOption) (*View, error) {
	if payload == nil || payload.Series.Len() == 0 {
		return nil, ErrEmptySeries
	}
	unit, err := opts.Unit()
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("chart: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	v := &View{
		payload: payload,
		opts:    opts,
		cfg:     cfg,
		unit:    unit,
		domain:  dataDomain(payload.Series.Time, unit),
	}
	for _, o := range vopts {
		o(v)
	}
	v.win = v.domain
	return v, nil
}

// dataDomain spans all series times, widened to one unit around a single instant.
func dataDomain(times []time.Time, unit time.Duration) Window {
	from, to := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(from) {
			from = t
		}
		if t.After(to) {
			to = t
		}
	}
	if w := to.Sub(from); w < unit {
		pad := (unit - w) / 2
		from, to = from.Add(-pad), to.Add(unit-w-pad)
	}
	return Window{From: from, To: to}
}

// Options returns the pass-through configuration.
func (v *View) Options() Options { return v.opts }

// Window returns the visible interval.
func (v *View) Window() Window {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.win
}

// Domain returns the full data interval.
func (v *View) Domain() Window { return v.domain }

// ZoomAt scales the window by 1/factor keeping the instant at anchor (0 = left edge, 1 = right edge)
// fixed on screen. factor > 1 zooms in. The window never shrinks below one time unit and never
// leaves the data domain.
func (v *View) ZoomAt(factor, anchor float64) (Window, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v.Window(), ErrInvalidFactor
	}
	anchor = clampFloat(anchor, 0, 1)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.opts.Zoom.Wheel && !v.opts.Zoom.Pinch {
		return v.win, nil
	}

	width := float64(v.win.Width())
	newWidth := clampFloat(width/factor, float64(v.minWidth()), float64(v.domain.Width()))
	pivot := float64(v.win.From.UnixNano()) + anchor*width
	from := time.Unix(0, int64(pivot-anchor*newWidth)).UTC()

	v.win = v.clamp(from, time.Duration(newWidth))
	return v.win, nil
}

// Pan shifts the window by fraction of its width. Positive moves toward later times.
func (v *View) Pan(fraction float64) Window {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.opts.Pan.Enabled || math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return v.win
	}
	width := v.win.Width()
	shift := time.Duration(fraction * float64(width))
	v.win = v.clamp(v.win.From.Add(shift), width)
	return v.win
}

// Reset shows the whole domain again.
func (v *View) Reset() Window {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.win = v.domain
	return v.win
}

func (v *View) minWidth() time.Duration {
	if d := v.domain.Width(); d < v.unit {
		return d
	}
	return v.unit
}

// clamp places a window of width starting at from inside the domain.
func (v *View) clamp(from time.Time, width time.Duration) Window {
	if width >= v.domain.Width() {
		return v.domain
	}
	if from.Before(v.domain.From) {
		from = v.domain.From
	}
	if to := from.Add(width); to.After(v.domain.To) {
		from = v.domain.To.Add(-width)
	}
	return Window{From: from, To: from.Add(width)}
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
