package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PairView/internal/service/session"
	"PairView/pkg/config"
	xhttp "PairView/pkg/http"
	applogger "PairView/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	sessions   *session.Registry
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, sessions *session.Registry) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: srv,
		sessions:   sessions,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.sessions.Run(ctx, sweepInterval(a.cfg.Session.TTL))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("pairview started",
		applogger.String("addr", a.httpServer.Addr()),
		applogger.String("backend", a.cfg.Backend.BaseURL),
		applogger.String("ratelimit", a.cfg.RateLimit.Backend),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete", applogger.Int("sessions_dropped", a.sessions.Len()))
	return nil
}

func sweepInterval(ttl time.Duration) time.Duration {
	if d := ttl / 4; d >= time.Second {
		return d
	}
	return time.Second
}
