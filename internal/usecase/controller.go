package usecase

import (
	"context"
	"fmt"
	"sync"

	"PairView/internal/chart"
	"PairView/internal/domain/models"
	applogger "PairView/pkg/logger"
)

// Fetcher loads the chart payload for a validated submission.
type Fetcher interface {
	Fetch(ctx context.Context, pair models.SymbolPair, rng models.DateRange) (*models.ChartPayload, *models.ViewError)
}

// SubmissionRecorder counts submissions by outcome.
type SubmissionRecorder interface {
	ObserveSubmission(outcome string)
}

// ControllerOption configures ChartViewController.
type ControllerOption func(*ChartViewController)

// WithChartOptions sets the configuration passed through to the chart.
func WithChartOptions(o chart.Options) ControllerOption {
	return func(c *ChartViewController) { c.opts = o }
}

// WithRenderConfig sets the output image size.
func WithRenderConfig(rc chart.RenderConfig) ControllerOption {
	return func(c *ChartViewController) { c.render = rc }
}

// WithViewOptions are applied to every chart view the controller builds.
func WithViewOptions(opts ...chart.ViewOption) ControllerOption {
	return func(c *ChartViewController) { c.viewOpts = append(c.viewOpts, opts...) }
}

// WithControllerLogger sets the logger.
func WithControllerLogger(l *applogger.Logger) ControllerOption {
	return func(c *ChartViewController) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSubmissionRecorder reports each submission outcome.
func WithSubmissionRecorder(r SubmissionRecorder) ControllerOption {
	return func(c *ChartViewController) { c.rec = r }
}

// ChartViewController holds the view state of one chart surface.
//
// A new submission supersedes any fetch still in flight: the older fetch's context is
// cancelled and its result, if it arrives anyway, is dropped by generation check.
type ChartViewController struct {
	validator *Validator
	fetcher   Fetcher
	opts      chart.Options
	render    chart.RenderConfig
	viewOpts  []chart.ViewOption
	log       *applogger.Logger
	rec       SubmissionRecorder

	mu     sync.Mutex
	state  models.ViewState
	view   *chart.View
	gen    uint64
	cancel context.CancelFunc
}

// NewChartViewController starts in Idle.
func NewChartViewController(v *Validator, f Fetcher, opts ...ControllerOption) *ChartViewController {
	c := &ChartViewController{
		validator: v,
		fetcher:   f,
		opts:      chart.DefaultOptions(),
		render:    chart.RenderConfig{Width: 1200, Height: 600},
		log:       applogger.Nop(),
		state:     models.Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit validates form and, when valid, fetches and stores the payload.
// It returns the state in effect when it finishes, which is a newer submission's state
// if this one was superseded meanwhile.
func (c *ChartViewController) Submit(ctx context.Context, form models.SubmitForm) models.ViewState {
	pair, rng, verr := c.validator.Validate(form)

	c.mu.Lock()
	c.supersedeLocked()
	if verr != nil {
		c.state = models.Failed{Err: verr}
		c.mu.Unlock()
		c.observe(string(verr.Kind))
		return models.Failed{Err: verr}
	}

	gen := c.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = models.Loading{Pair: pair, Range: rng}
	c.mu.Unlock()

	payload, ferr := c.fetcher.Fetch(fetchCtx, pair, rng)

	var view *chart.View
	if ferr == nil {
		var err error
		view, err = chart.NewView(payload, c.opts, c.renderConfig(pair, rng), c.viewOpts...)
		if err != nil {
			ferr = models.NewViewError(models.NetworkFailure, fmt.Errorf("build chart: %w", err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	cancel()

	if gen != c.gen {
		c.log.Debug("stale chart data dropped",
			applogger.String("symbol", pair.Key()),
			applogger.Uint64("generation", gen),
			applogger.Uint64("current", c.gen),
		)
		c.observe(string(models.Superseded))
		return c.state
	}
	c.cancel = nil

	if ferr != nil {
		c.state = models.Failed{Err: ferr}
		c.observe(string(ferr.Kind))
		return c.state
	}

	c.view = view
	c.state = models.Loaded{Pair: pair, Range: rng, Payload: payload}
	c.observe(string(models.PhaseLoaded))
	return c.state
}

// Reject records a submission refused before validation, e.g. by rate limiting.
func (c *ChartViewController) Reject(verr *models.ViewError) models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersedeLocked()
	c.state = models.Failed{Err: verr}
	c.observe(string(verr.Kind))
	return c.state
}

// supersedeLocked invalidates the in-flight fetch and discards the displayed chart.
func (c *ChartViewController) supersedeLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.view = nil
}

func (c *ChartViewController) renderConfig(pair models.SymbolPair, rng models.DateRange) chart.RenderConfig {
	rc := c.render
	if rc.Title == "" {
		rc.Title = fmt.Sprintf("%s / %s  %s to %s", pair.Symbol1, pair.Symbol2, rng.StartDate(), rng.EndDate())
	}
	return rc
}

func (c *ChartViewController) observe(outcome string) {
	if c.rec != nil {
		c.rec.ObserveSubmission(outcome)
	}
}

// State returns the current view state.
func (c *ChartViewController) State() models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payload returns the displayed payload, only while Loaded.
func (c *ChartViewController) Payload() (*models.ChartPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if loaded, ok := c.state.(models.Loaded); ok {
		return loaded.Payload, true
	}
	return nil, false
}

// View returns the chart view, only while Loaded.
func (c *ChartViewController) View() (*chart.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.state.(models.Loaded); !ok || c.view == nil {
		return nil, false
	}
	return c.view, true
}

// Options returns the configuration handed to the chart unchanged.
func (c *ChartViewController) Options() chart.Options {
	return c.opts
}
