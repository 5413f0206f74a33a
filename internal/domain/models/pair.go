package models

import (
	"strings"
	"time"

	"PairView/pkg/util"
)

// SymbolPair is the validated pair of symbols a chart is drawn for.
type SymbolPair struct {
	Symbol1 string `json:"symbol1"`
	Symbol2 string `json:"symbol2"`
}

// Key returns the combined backend key, e.g. BTCUSDT_ETHUSDT.
func (p SymbolPair) Key() string {
	return strings.ToUpper(p.Symbol1) + "_" + strings.ToUpper(p.Symbol2)
}

// DateRange holds UTC calendar dates with Start strictly before End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StartDate formats Start as YYYY-MM-DD.
func (r DateRange) StartDate() string { return util.FormatDate(r.Start) }

// EndDate formats End as YYYY-MM-DD.
func (r DateRange) EndDate() string { return util.FormatDate(r.End) }

// SubmitForm is the raw form as typed by the user.
type SubmitForm struct {
	Symbol1   string `json:"symbol1" form:"symbol1" validate:"required"`
	Symbol2   string `json:"symbol2" form:"symbol2" validate:"required"`
	StartDate string `json:"start_date" form:"start_date" validate:"required"`
	EndDate   string `json:"end_date" form:"end_date" validate:"required"`
}

// Normalize trims whitespace and upper-cases the symbols.
func (f SubmitForm) Normalize() SubmitForm {
	return SubmitForm{
		Symbol1:   strings.ToUpper(strings.TrimSpace(f.Symbol1)),
		Symbol2:   strings.ToUpper(strings.TrimSpace(f.Symbol2)),
		StartDate: strings.TrimSpace(f.StartDate),
		EndDate:   strings.TrimSpace(f.EndDate),
	}
}
