package web

import (
	"strings"

	"PairView/internal/chart"
	"PairView/internal/domain/models"
	xhttp "PairView/pkg/http"
)

type errorBody struct {
	Kind    models.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// stateResponse is the JSON view of a ViewState.
type stateResponse struct {
	Phase     models.Phase       `json:"phase"`
	Error     *errorBody         `json:"error,omitempty"`
	Pair      *models.SymbolPair `json:"pair,omitempty"`
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
	Points    int                `json:"points,omitempty"`
	Trades    int                `json:"trades,omitempty"`
	Window    *chart.Window      `json:"window,omitempty"`
}

func newStateResponse(st models.ViewState, view *chart.View) stateResponse {
	resp := stateResponse{Phase: st.Phase()}
	switch s := st.(type) {
	case models.Loading:
		resp.Pair = &s.Pair
		resp.StartDate, resp.EndDate = s.Range.StartDate(), s.Range.EndDate()
	case models.Loaded:
		resp.Pair = &s.Pair
		resp.StartDate, resp.EndDate = s.Range.StartDate(), s.Range.EndDate()
		resp.Points = s.Payload.Series.Len()
		resp.Trades = len(s.Payload.Trades)
		if view != nil {
			w := view.Window()
			resp.Window = &w
		}
	case models.Failed:
		resp.Error = &errorBody{Kind: s.Err.Kind, Message: s.Err.Message()}
	}
	return resp
}

// appError maps a view error to the HTTP error envelope. The message is always the user text.
func appError(verr *models.ViewError) *xhttp.AppError {
	var e *xhttp.AppError
	switch verr.Kind {
	case models.MissingFields, models.DuplicateSymbols, models.InvalidSymbolFormat, models.InvalidDateOrder:
		e = xhttp.BadRequestError(verr.Message())
	case models.RateLimited:
		e = xhttp.TooManyRequestsError(verr.Message())
	case models.NoData, models.EmptyRange:
		e = xhttp.NotFoundError(verr.Message())
	default:
		e = xhttp.BadGatewayError(verr.Message())
	}
	e.Code = "ERR_" + strings.ToUpper(string(verr.Kind))
	return e.WithParam("kind", string(verr.Kind)).WithError(verr)
}

// pageData feeds templates/index.html.
type pageData struct {
	Form    models.SubmitForm
	Error   string
	Loading bool
	Loaded  bool
	Width   int
	Height  int
	Options chart.Options
}

func newPageData(form models.SubmitForm, st models.ViewState, opts chart.Options, width, height int) pageData {
	d := pageData{Form: form, Options: opts, Width: width, Height: height}
	switch s := st.(type) {
	case models.Loading:
		d.Loading = true
		d.Form = formOf(s.Pair, s.Range)
	case models.Loaded:
		d.Loaded = true
		d.Form = formOf(s.Pair, s.Range)
	case models.Failed:
		d.Error = s.Err.Message()
	}
	return d
}

func formOf(p models.SymbolPair, r models.DateRange) models.SubmitForm {
	return models.SubmitForm{
		Symbol1:   p.Symbol1,
		Symbol2:   p.Symbol2,
		StartDate: r.StartDate(),
		EndDate:   r.EndDate(),
	}
}
