package di

import (
	"fmt"

	"PairView/internal/chart"
	"PairView/internal/handler/web"
	"PairView/internal/service/chartdata"
	"PairView/internal/service/metrics"
	"PairView/internal/service/ratelimit"
	"PairView/internal/service/session"
	"PairView/internal/usecase"
	"PairView/pkg/cache"
	"PairView/pkg/config"
	xhttp "PairView/pkg/http"
	applogger "PairView/pkg/logger"
	"PairView/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry with runtime collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the chart service recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideChartDataClient creates the analytics backend client.
func ProvideChartDataClient(cfg *config.Config, l *applogger.Logger, rec *metrics.Recorder) *chartdata.Client {
	return chartdata.NewClient(cfg.Backend.BaseURL,
		chartdata.WithTimeout(cfg.Backend.Timeout),
		chartdata.WithLogger(l.With(applogger.String("component", "chartdata"))),
		chartdata.WithRecorder(rec),
	)
}

// ProvideValidator creates the form validator.
func ProvideValidator() *usecase.Validator {
	return usecase.NewValidator()
}

// ProvideSessionRegistry creates the per-browser controller registry.
func ProvideSessionRegistry(
	cfg *config.Config,
	v *usecase.Validator,
	client *chartdata.Client,
	rec *metrics.Recorder,
	l *applogger.Logger,
) *session.Registry {
	opts := chart.DefaultOptions()
	opts.TimeUnit = cfg.Chart.TimeUnit
	render := chart.RenderConfig{Width: cfg.Chart.Width, Height: cfg.Chart.Height}
	ctrlLog := l.With(applogger.String("component", "controller"))

	factory := func() *usecase.ChartViewController {
		return usecase.NewChartViewController(v, client,
			usecase.WithChartOptions(opts),
			usecase.WithRenderConfig(render),
			usecase.WithViewOptions(chart.WithFrameRecorder(rec)),
			usecase.WithControllerLogger(ctrlLog),
			usecase.WithSubmissionRecorder(rec),
		)
	}
	return session.NewRegistry(cfg.Session.TTL, factory, session.WithSizeObserver(rec.SetActiveSessions))
}

// ProvideCounterStore creates the rate limit counter store selected by config.
func ProvideCounterStore(cfg *config.Config) (cache.Counter, func(), error) {
	var (
		store cache.Counter
		err   error
	)
	switch cfg.RateLimit.Backend {
	case "redis":
		store, err = cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis counter store: %w", err)
		}
	default:
		store = cache.NewMemoryCache()
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideLimiter creates the submission rate limiter.
func ProvideLimiter(cfg *config.Config, store cache.Counter, l *applogger.Logger) *ratelimit.Limiter {
	return ratelimit.New(store, cfg.RateLimit.Limit, cfg.RateLimit.Window, l)
}

// ProvideWebHandler creates the page and API handler.
func ProvideWebHandler(cfg *config.Config, l *applogger.Logger, sessions *session.Registry, limiter *ratelimit.Limiter) *web.Handler {
	return web.NewHandler(l, sessions, limiter, web.Config{
		Width:      cfg.Chart.Width,
		Height:     cfg.Chart.Height,
		SessionTTL: cfg.Session.TTL,
	})
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h *web.Handler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l.With(applogger.String("component", "http"))),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, sessions *session.Registry) *server.App {
	return server.New(cfg, l, srv, sessions)
}
