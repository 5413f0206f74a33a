package chart

import (
	"fmt"
	"time"
)

// Options is handed to the page unchanged and drives the viewport granularity.
type Options struct {
	TimeUnit string      `json:"time_unit" yaml:"time_unit" default:"day"`
	Zoom     ZoomOptions `json:"zoom" yaml:"zoom"`
	Pan      PanOptions  `json:"pan" yaml:"pan"`
}

// ZoomOptions enables wheel and pinch zoom along Mode.
type ZoomOptions struct {
	Wheel bool   `json:"wheel"`
	Pinch bool   `json:"pinch"`
	Mode  string `json:"mode"`
}

// PanOptions enables dragging along Mode.
type PanOptions struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
}

// DefaultOptions returns day granularity with horizontal-only zoom and pan.
func DefaultOptions() Options {
	return Options{
		TimeUnit: "day",
		Zoom:     ZoomOptions{Wheel: true, Pinch: true, Mode: "x"},
		Pan:      PanOptions{Enabled: true, Mode: "x"},
	}
}

var timeUnits = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
}

// Unit returns the duration of one TimeUnit.
func (o Options) Unit() (time.Duration, error) {
	d, ok := timeUnits[o.TimeUnit]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q", o.TimeUnit)
	}
	return d, nil
}

// Format is an output encoding for a rendered frame.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// RenderConfig sizes the output image.
type RenderConfig struct {
	Width  int
	Height int
	Title  string
}
