package chartdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"PairView/internal/domain/models"
	xhttp "PairView/pkg/http"
	applogger "PairView/pkg/logger"
	"PairView/pkg/util"
)

const chartDataPath = "/api/chart-data"

var (
	errNullSpread     = errors.New("null spread value")
	errLengthMismatch = errors.New("series length mismatch")
)

// Recorder receives one observation per fetch.
type Recorder interface {
	ObserveFetch(outcome string, d time.Duration)
}

// Option configures Client.
type Option func(*Client)

// Client fetches chart data for one pair and date range from the analytics backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *xhttp.Client
	log     *applogger.Logger
	rec     Recorder
}

// NewClient builds a Client against baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 60 * time.Second,
		log:     applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout))
	}
	return c
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(h *xhttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for backend diagnostics.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRecorder reports fetch outcomes and latency.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.rec = r }
}

type chartBody struct {
	Time   *[]json.RawMessage `json:"time"`
	Spread *[]*float64        `json:"spread"`
	ZScore []*float64         `json:"z_score"`
}

type tradeBody struct {
	EntryDT    json.RawMessage `json:"entry_dt"`
	ExitDT     json.RawMessage `json:"exit_dt"`
	ProfitLoss float64         `json:"profit_loss"`
}

type chartDataResponse struct {
	Chart  *chartBody  `json:"chart"`
	Trades []tradeBody `json:"trades"`
	Error  string      `json:"error"`
}

// Fetch issues exactly one GET for the pair and range and normalizes the response.
// No retry is attempted.
func (c *Client) Fetch(ctx context.Context, pair models.SymbolPair, rng models.DateRange) (*models.ChartPayload, *models.ViewError) {
	start := time.Now()
	payload, verr := c.fetch(ctx, pair, rng)

	outcome := "ok"
	if verr != nil {
		outcome = string(verr.Kind)
		c.log.Warn("chart data fetch failed",
			applogger.String("symbol", pair.Key()),
			applogger.String("start_date", rng.StartDate()),
			applogger.String("end_date", rng.EndDate()),
			applogger.String("kind", string(verr.Kind)),
			applogger.Error(verr.Err),
		)
	} else {
		c.log.Debug("chart data fetched",
			applogger.String("symbol", pair.Key()),
			applogger.Int("points", payload.Series.Len()),
			applogger.Int("trades", len(payload.Trades)),
		)
	}
	if c.rec != nil {
		c.rec.ObserveFetch(outcome, time.Since(start))
	}
	return payload, verr
}

func (c *Client) fetch(ctx context.Context, pair models.SymbolPair, rng models.DateRange) (*models.ChartPayload, *models.ViewError) {
	var resp chartDataResponse
	status, err := c.http.SendAndDecode(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + chartDataPath,
		QueryParams: map[string][]string{
			"symbol":     {pair.Key()},
			"start_date": {rng.StartDate()},
			"end_date":   {rng.EndDate()},
		},
	}, &resp)
	if err != nil {
		return nil, models.NewViewError(models.NetworkFailure, fmt.Errorf("get %s: %w", chartDataPath, err))
	}
	if status >= http.StatusInternalServerError {
		return nil, models.NewViewError(models.NetworkFailure, fmt.Errorf("backend status %d: %s", status, resp.Error))
	}

	return normalize(&resp, status)
}

func normalize(resp *chartDataResponse, status int) (*models.ChartPayload, *models.ViewError) {
	if resp.Chart == nil || resp.Chart.Time == nil || resp.Chart.Spread == nil {
		return nil, models.NewViewError(models.NoData, fmt.Errorf("status %d: series missing: %s", status, resp.Error))
	}

	rawTimes := *resp.Chart.Time
	spread := *resp.Chart.Spread
	n := len(rawTimes)
	if n == 0 {
		return nil, models.NewViewError(models.EmptyRange, fmt.Errorf("status %d: empty time series", status))
	}

	series := models.ChartSeries{
		Time:   make([]time.Time, n),
		Spread: make([]float64, len(spread)),
		ZScore: resp.Chart.ZScore,
	}
	if !series.Aligned() {
		return nil, models.NewViewError(models.NetworkFailure, fmt.Errorf("time=%d spread=%d z_score=%d: %w",
			n, len(spread), len(resp.Chart.ZScore), errLengthMismatch))
	}
	for i, raw := range rawTimes {
		t, err := parseTimestamp(raw)
		if err != nil {
			return nil, models.NewViewError(models.NetworkFailure, fmt.Errorf("time[%d]: %w", i, err))
		}
		series.Time[i] = t
		if spread[i] == nil {
			return nil, models.NewViewError(models.NetworkFailure, fmt.Errorf("spread[%d]: %w", i, errNullSpread))
		}
		series.Spread[i] = *spread[i]
	}

	trades := make([]models.Trade, 0, len(resp.Trades))
	for _, tb := range resp.Trades {
		entry, _ := parseTimestamp(tb.EntryDT)
		exit, _ := parseTimestamp(tb.ExitDT)
		trades = append(trades, models.Trade{EntryTime: entry, ExitTime: exit, ProfitLoss: tb.ProfitLoss})
	}

	return &models.ChartPayload{Series: series, Trades: trades}, nil
}

// parseTimestamp accepts a JSON string in one of the util.ParseTime layouts or a number of epoch milliseconds.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, ok := util.ParseTime(s)
		if !ok {
			return time.Time{}, fmt.Errorf("unparseable time %q", s)
		}
		return t, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("time %s is neither string nor number", string(raw))
	}
	t, ok := util.FromEpochMillis(ms)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid epoch %v", ms)
	}
	return t, nil
}
