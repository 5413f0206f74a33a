package models

import "fmt"

// ErrorKind classifies why a submission did not produce a chart.
type ErrorKind string

const (
	MissingFields       ErrorKind = "missing_fields"
	DuplicateSymbols    ErrorKind = "duplicate_symbols"
	InvalidSymbolFormat ErrorKind = "invalid_symbol_format"
	InvalidDateOrder    ErrorKind = "invalid_date_order"
	NoData              ErrorKind = "no_data"
	EmptyRange          ErrorKind = "empty_range"
	NetworkFailure      ErrorKind = "network_failure"
	RateLimited         ErrorKind = "rate_limited"
	Superseded          ErrorKind = "superseded"
)

var messages = map[ErrorKind]string{
	MissingFields:       "All fields are required",
	DuplicateSymbols:    "The two symbols must be different",
	InvalidSymbolFormat: "Invalid symbols. Please ensure symbols end with 'USDT' (e.g., BTCUSDT, ETHUSDT)",
	InvalidDateOrder:    "The start date must be before the end date",
	NoData:              "No data available for this pair from the tradesheet",
	EmptyRange:          "No data available for the date range of this pair from the tradesheet",
	NetworkFailure:      "An error occurred while fetching the data",
	RateLimited:         "Too many submissions, please wait a moment",
	Superseded:          "A newer submission replaced this one",
}

// Message returns the fixed user-facing text for the kind.
func (k ErrorKind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return messages[NetworkFailure]
}

// ViewError is a classified failure. Err carries diagnostic detail for logs only.
type ViewError struct {
	Kind ErrorKind
	Err  error
}

// NewViewError builds a ViewError of kind wrapping err.
func NewViewError(kind ErrorKind, err error) *ViewError {
	return &ViewError{Kind: kind, Err: err}
}

// Message returns the user-facing text, never the diagnostic.
func (e *ViewError) Message() string {
	return e.Kind.Message()
}

func (e *ViewError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

// Unwrap returns underlying error.
func (e *ViewError) Unwrap() error {
	return e.Err
}
