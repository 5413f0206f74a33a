package models

import "time"

// ChartSeries holds index-aligned spread and z-score values.
// A nil ZScore entry is a missing value (JSON null).
type ChartSeries struct {
	Time   []time.Time `json:"time"`
	Spread []float64   `json:"spread"`
	ZScore []*float64  `json:"z_score"`
}

// Len returns the number of points.
func (s ChartSeries) Len() int {
	return len(s.Time)
}

// Aligned reports whether all sequences share the same length.
func (s ChartSeries) Aligned() bool {
	return len(s.Spread) == len(s.Time) && len(s.ZScore) == len(s.Time)
}

// Trade is one historical entry-to-exit window.
// A zero EntryTime or ExitTime marks a timestamp the backend sent in an unreadable form.
type Trade struct {
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	ProfitLoss float64   `json:"profit_loss"`
}

// Winning reports whether the trade closed at break-even or better.
func (t Trade) Winning() bool {
	return t.ProfitLoss >= 0
}

// ChartPayload is everything needed to draw one chart.
type ChartPayload struct {
	Series ChartSeries `json:"series"`
	Trades []Trade     `json:"trades"`
}
