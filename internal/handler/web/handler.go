package web

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"PairView/internal/chart"
	"PairView/internal/domain/models"
	"PairView/internal/service/session"
	"PairView/internal/usecase"
	xhttp "PairView/pkg/http"
	xlogger "PairView/pkg/logger"
	"PairView/pkg/util"

	"github.com/labstack/echo/v4"
)

const sessionCookie = "pv_session"

// SubmitLimiter decides whether a client may submit again.
type SubmitLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// Config sizes the chart image and the session cookie.
type Config struct {
	Width      int
	Height     int
	SessionTTL time.Duration
}

// Handler serves the chart page, the submission endpoint and the view API.
type Handler struct {
	logger   *xlogger.Logger
	sessions *session.Registry
	limiter  SubmitLimiter
	cfg      Config
}

func NewHandler(logger *xlogger.Logger, sessions *session.Registry, limiter SubmitLimiter, cfg Config) *Handler {
	if cfg.Width <= 0 {
		cfg.Width = 1200
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	return &Handler{logger: logger, sessions: sessions, limiter: limiter, cfg: cfg}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	if e.Renderer == nil {
		r, err := NewTemplateRenderer()
		if err != nil {
			h.logger.Error("parse templates", xlogger.Error(err))
		} else {
			e.Renderer = r
		}
	}

	e.GET("/", h.Index)
	e.POST("/submit", h.Submit)
	e.GET("/chart.svg", h.ChartSVG)
	e.GET("/chart.png", h.ChartPNG)
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/state", h.State)
	g.GET("/chart/options", h.ChartOptions)
	g.POST("/view/zoom", h.Zoom)
	g.POST("/view/pan", h.Pan)
	g.POST("/view/reset", h.Reset)
}

// controller resolves the caller's session, creating one when needed. The cookie is
// re-issued on every request so its lifetime slides with the session's idle TTL.
func (h *Handler) controller(c echo.Context) *usecase.ChartViewController {
	var id string
	if ck, err := c.Cookie(sessionCookie); err == nil {
		id = ck.Value
	}
	id, ctrl := h.sessions.GetOrCreate(id)
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cfg.SessionTTL / time.Second),
	})
	return ctrl
}

func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func (h *Handler) Index(c echo.Context) error {
	ctrl := h.controller(c)
	data := newPageData(models.SubmitForm{}, ctrl.State(), ctrl.Options(), h.cfg.Width, h.cfg.Height)
	return c.Render(http.StatusOK, "index.html", data)
}

func (h *Handler) Submit(c echo.Context) error {
	ctrl := h.controller(c)

	var form models.SubmitForm
	if err := c.Bind(&form); err != nil {
		h.logger.Debug("submit bind failed", xlogger.Error(err))
	}
	form = form.Normalize()

	var st models.ViewState
	if h.limiter != nil && !h.limiter.Allow(c.Request().Context(), c.RealIP()) {
		st = ctrl.Reject(models.NewViewError(models.RateLimited, nil))
	} else {
		st = ctrl.Submit(c.Request().Context(), form)
	}

	if failed, ok := st.(models.Failed); ok {
		h.logger.Info("submission failed",
			xlogger.String("kind", string(failed.Err.Kind)),
			xlogger.String("symbol1", form.Symbol1),
			xlogger.String("symbol2", form.Symbol2),
		)
	}

	if wantsJSON(c) {
		if failed, ok := st.(models.Failed); ok {
			return xhttp.AppErrorResponse(c, appError(failed.Err))
		}
		view, _ := ctrl.View()
		return xhttp.SuccessResponse(c, newStateResponse(st, view))
	}

	data := newPageData(form, st, ctrl.Options(), h.cfg.Width, h.cfg.Height)
	return c.Render(http.StatusOK, "index.html", data)
}

func (h *Handler) State(c echo.Context) error {
	ctrl := h.controller(c)
	view, _ := ctrl.View()
	return xhttp.SuccessResponse(c, newStateResponse(ctrl.State(), view))
}

func (h *Handler) ChartOptions(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.controller(c).Options())
}

func (h *Handler) ChartSVG(c echo.Context) error {
	return h.renderChart(c, chart.FormatSVG)
}

func (h *Handler) ChartPNG(c echo.Context) error {
	return h.renderChart(c, chart.FormatPNG)
}

func (h *Handler) renderChart(c echo.Context, f chart.Format) error {
	view, ok := h.controller(c).View()
	if !ok {
		return xhttp.NotFoundResponse(c, "no chart loaded")
	}

	width := util.ClampInt(util.ParseIntDefault(c.QueryParam("w"), h.cfg.Width), 200, 4000)
	height := util.ClampInt(util.ParseIntDefault(c.QueryParam("h"), h.cfg.Height), 150, 3000)

	var buf bytes.Buffer
	stats, err := view.RenderSize(&buf, f, width, height)
	if err != nil {
		h.logger.Error("chart render failed", xlogger.Error(err), xlogger.String("format", string(f)))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("chart render failed").WithError(err))
	}
	h.logger.Debug("chart frame",
		xlogger.Int("points", stats.SpreadPoints),
		xlogger.Int("bands_painted", stats.BandsPainted),
		xlogger.Int("bands_skipped", stats.BandsSkipped),
	)

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, f.ContentType(), buf.Bytes())
}

type zoomRequest struct {
	Factor float64  `json:"factor" validate:"gt=0,lte=100"`
	Anchor *float64 `json:"anchor" validate:"omitempty,gte=0,lte=1"`
}

type panRequest struct {
	Fraction float64 `json:"fraction" validate:"gte=-1,lte=1"`
}

func (h *Handler) Zoom(c echo.Context) error {
	req := &zoomRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	view, ok := h.controller(c).View()
	if !ok {
		return xhttp.NotFoundResponse(c, "no chart loaded")
	}
	anchor := 0.5
	if req.Anchor != nil {
		anchor = *req.Anchor
	}
	w, err := view.ZoomAt(req.Factor, anchor)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, w)
}

func (h *Handler) Pan(c echo.Context) error {
	req := &panRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	view, ok := h.controller(c).View()
	if !ok {
		return xhttp.NotFoundResponse(c, "no chart loaded")
	}
	return xhttp.SuccessResponse(c, view.Pan(req.Fraction))
}

func (h *Handler) Reset(c echo.Context) error {
	view, ok := h.controller(c).View()
	if !ok {
		return xhttp.NotFoundResponse(c, "no chart loaded")
	}
	return xhttp.SuccessResponse(c, view.Reset())
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}
