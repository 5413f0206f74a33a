package metrics

import (
	"time"

	"PairView/internal/chart"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects chart service metrics.
type Recorder struct {
	submissions   *prometheus.CounterVec
	fetchesTotal  *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	framesTotal   prometheus.Counter
	bandsPainted  prometheus.Counter
	bandsSkipped  prometheus.Counter
	framePoints   prometheus.Histogram
	activeSession prometheus.Gauge
}

// New registers the recorder's collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairview",
				Name:      "submissions_total",
				Help:      "Form submissions by resulting phase or error kind",
			},
			[]string{"outcome"},
		),
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pairview",
				Subsystem: "backend",
				Name:      "fetches_total",
				Help:      "Chart data fetches by outcome",
			},
			[]string{"outcome"},
		),
		fetchLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pairview",
				Subsystem: "backend",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of chart data fetches",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		framesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pairview",
			Subsystem: "chart",
			Name:      "frames_total",
			Help:      "Chart frames drawn",
		}),
		bandsPainted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pairview",
			Subsystem: "overlay",
			Name:      "bands_painted_total",
			Help:      "Trade bands painted across frames",
		}),
		bandsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pairview",
			Subsystem: "overlay",
			Name:      "bands_skipped_total",
			Help:      "Trade bands skipped as out of the visible domain",
		}),
		framePoints: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pairview",
			Subsystem: "chart",
			Name:      "frame_points",
			Help:      "Spread points plotted per frame",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		activeSession: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "pairview",
			Name:      "sessions_active",
			Help:      "Live chart sessions",
		}),
	}
}

// ObserveSubmission counts one form submission.
func (r *Recorder) ObserveSubmission(outcome string) {
	r.submissions.WithLabelValues(outcome).Inc()
}

// ObserveFetch records a backend fetch outcome and its latency.
func (r *Recorder) ObserveFetch(outcome string, d time.Duration) {
	r.fetchesTotal.WithLabelValues(outcome).Inc()
	r.fetchLatency.Observe(d.Seconds())
}

// ObserveFrame records overlay and series stats for one frame.
func (r *Recorder) ObserveFrame(s chart.FrameStats) {
	r.framesTotal.Inc()
	r.bandsPainted.Add(float64(s.BandsPainted))
	r.bandsSkipped.Add(float64(s.BandsSkipped))
	r.framePoints.Observe(float64(s.SpreadPoints))
}

// SetActiveSessions reports the session count.
func (r *Recorder) SetActiveSessions(n int) {
	r.activeSession.Set(float64(n))
}
