package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"PairView/internal/domain/models"
	"PairView/internal/service/chartdata"
	"PairView/internal/service/session"
	"PairView/internal/usecase"
	xhttp "PairView/pkg/http"
	xlogger "PairView/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"time":["2024-01-01","2024-01-02","2024-01-03","2024-01-04","2024-01-05","2024-01-06","2024-01-07","2024-01-08","2024-01-09","2024-01-10","2024-01-11","2024-01-12"],
"spread":[1,2,3,4,5,6,5,4,3,2,1,0],"z_score":[null,null,0.1,0.5,1.2,1.8,1.1,0.3,-0.4,-1.2,-1.9,-2.3]},
"trades":[{"entry_dt":"2024-01-05","exit_dt":"2024-01-10","profit_loss":-50}]}`

type denyAll struct{}

func (denyAll) Allow(context.Context, string) bool { return false }

type testEnv struct {
	e      *echo.Echo
	cookie *http.Cookie
	body   string
	status int
}

func newTestEnv(t *testing.T, limiter SubmitLimiter) *testEnv {
	t.Helper()
	env := &testEnv{body: chartBody, status: http.StatusOK}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(env.status)
		_, _ = w.Write([]byte(env.body))
	}))
	t.Cleanup(backend.Close)

	client := chartdata.NewClient(backend.URL)
	sessions := session.NewRegistry(time.Hour, func() *usecase.ChartViewController {
		return usecase.NewChartViewController(usecase.NewValidator(), client)
	})

	env.e = echo.New()
	NewHandler(xlogger.Nop(), sessions, limiter, Config{Width: 640, Height: 320, SessionTTL: time.Hour}).RegisterRoutes(env.e)
	return env
}

func (env *testEnv) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
		if contentType == echo.MIMEApplicationJSON {
			req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
		}
	}
	if env.cookie != nil {
		req.AddCookie(env.cookie)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			env.cookie = ck
		}
	}
	return rec
}

func (env *testEnv) submitJSON(form models.SubmitForm) *httptest.ResponseRecorder {
	b, _ := json.Marshal(form)
	return env.do(http.MethodPost, "/submit", echo.MIMEApplicationJSON, string(b))
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var env struct {
		Status int           `json:"status"`
		Data   stateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func decodeErrors(t *testing.T, rec *httptest.ResponseRecorder) []xhttp.AppError {
	t.Helper()
	var env struct {
		Data []xhttp.AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func btcEth() models.SubmitForm {
	return models.SubmitForm{Symbol1: "btcusdt", Symbol2: "ETHUSDT", StartDate: "2024-01-01", EndDate: "2024-02-01"}
}

func TestIndex_SetsSessionCookie(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.cookie)
	assert.Contains(t, rec.Body.String(), "Entry/Exit Analysis")
	assert.NotContains(t, rec.Body.String(), `id="chart"`)
}

func TestSubmit_JSONLoadedThenChart(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.submitJSON(btcEth())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decodeState(t, rec)
	assert.Equal(t, models.PhaseLoaded, st.Phase)
	assert.Equal(t, "BTCUSDT", st.Pair.Symbol1, "input is upper-cased")
	assert.Equal(t, 12, st.Points)
	assert.Equal(t, 1, st.Trades)
	require.NotNil(t, st.Window)

	rec = env.do(http.MethodGet, "/chart.svg", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = env.do(http.MethodGet, "/chart.png?w=300&h=200", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	rec = env.do(http.MethodGet, "/", "", "")
	assert.Contains(t, rec.Body.String(), `id="chart"`)
	assert.Contains(t, rec.Body.String(), `value="BTCUSDT"`)
}

func TestSubmit_ValidationErrorJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	form := btcEth()
	form.Symbol2 = "BTCUSDT"

	rec := env.submitJSON(form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decodeErrors(t, rec)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_DUPLICATE_SYMBOLS", errs[0].Code)
	assert.Equal(t, "The two symbols must be different", errs[0].Message)

	rec = env.do(http.MethodGet, "/chart.svg", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmit_EmptyRangeJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	env.body = `{"chart":{"time":[],"spread":[],"z_score":[]},"trades":[]}`

	rec := env.submitJSON(btcEth())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errs := decodeErrors(t, rec)
	require.Len(t, errs, 1)
	assert.Equal(t, "No data available for the date range of this pair from the tradesheet", errs[0].Message)
}

func TestSubmit_NetworkFailureHidesDiagnostics(t *testing.T) {
	env := newTestEnv(t, nil)
	env.status = http.StatusInternalServerError
	env.body = `{"error":"Traceback: secret internals"}`

	rec := env.submitJSON(btcEth())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Traceback")
	assert.Contains(t, rec.Body.String(), "An error occurred while fetching the data")
}

func TestSubmit_FormPostRendersPage(t *testing.T) {
	env := newTestEnv(t, nil)
	vals := url.Values{"symbol1": {"btcusdt"}, "symbol2": {""}, "start_date": {"2024-01-01"}, "end_date": {"2024-02-01"}}

	rec := env.do(http.MethodPost, "/submit", echo.MIMEApplicationForm, vals.Encode())
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "All fields are required")
	assert.Contains(t, body, `value="BTCUSDT"`)
}

func TestSubmit_RateLimited(t *testing.T) {
	env := newTestEnv(t, denyAll{})
	rec := env.submitJSON(btcEth())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	errs := decodeErrors(t, rec)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_RATE_LIMITED", errs[0].Code)
}

func TestViewAPI_ZoomPanReset(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/view/zoom", echo.MIMEApplicationJSON, `{"factor":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no chart yet")

	require.Equal(t, http.StatusOK, env.submitJSON(btcEth()).Code)
	full := decodeState(t, env.do(http.MethodGet, "/api/state", "", "")).Window
	require.NotNil(t, full)

	rec = env.do(http.MethodPost, "/api/view/zoom", echo.MIMEApplicationJSON, `{"factor":2,"anchor":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	zoomed := decodeState(t, env.do(http.MethodGet, "/api/state", "", "")).Window
	assert.Equal(t, full.From, zoomed.From)
	assert.Less(t, zoomed.Width(), full.Width())

	rec = env.do(http.MethodPost, "/api/view/pan", echo.MIMEApplicationJSON, `{"fraction":0.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	panned := decodeState(t, env.do(http.MethodGet, "/api/state", "", "")).Window
	assert.True(t, panned.From.After(zoomed.From))
	assert.Equal(t, zoomed.Width(), panned.Width())

	rec = env.do(http.MethodPost, "/api/view/zoom", echo.MIMEApplicationJSON, `{"factor":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/view/reset", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	reset := decodeState(t, env.do(http.MethodGet, "/api/state", "", "")).Window
	assert.Equal(t, full.From, reset.From)
	assert.Equal(t, full.To, reset.To)
}

func TestChartOptions(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/api/chart/options", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			TimeUnit string `json:"time_unit"`
			Zoom     struct {
				Wheel bool   `json:"wheel"`
				Pinch bool   `json:"pinch"`
				Mode  string `json:"mode"`
			} `json:"zoom"`
			Pan struct {
				Enabled bool   `json:"enabled"`
				Mode    string `json:"mode"`
			} `json:"pan"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "day", resp.Data.TimeUnit)
	assert.True(t, resp.Data.Zoom.Wheel && resp.Data.Zoom.Pinch)
	assert.Equal(t, "x", resp.Data.Zoom.Mode)
	assert.True(t, resp.Data.Pan.Enabled)
	assert.Equal(t, "x", resp.Data.Pan.Mode)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.submitJSON(btcEth()).Code)

	other := *env
	other.cookie = nil
	rec := other.do(http.MethodGet, "/chart.svg", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/chart.svg", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSessionCookie_RefreshedOnEveryRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodGet, "/", "", "")
	require.NotNil(t, env.cookie)
	first := env.cookie.Value

	rec := env.do(http.MethodGet, "/api/state", "", "")
	var refreshed *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			refreshed = ck
		}
	}
	require.NotNil(t, refreshed, "cookie must be re-issued for an existing session")
	assert.Equal(t, first, refreshed.Value)
	assert.Equal(t, int(time.Hour/time.Second), refreshed.MaxAge)
}
