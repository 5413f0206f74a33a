package models

// Phase names a ViewState variant.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// ViewState is one of Idle, Loading, Loaded or Failed.
type ViewState interface {
	Phase() Phase
	viewState()
}

// Idle is the state before any submission.
type Idle struct{}

// Loading holds the submission whose fetch is in flight.
type Loading struct {
	Pair  SymbolPair
	Range DateRange
}

// Loaded holds the payload of the displayed chart.
type Loaded struct {
	Pair    SymbolPair
	Range   DateRange
	Payload *ChartPayload
}

// Failed holds the reason the last submission produced no chart.
type Failed struct {
	Err *ViewError
}

func (Idle) Phase() Phase    { return PhaseIdle }
func (Loading) Phase() Phase { return PhaseLoading }
func (Loaded) Phase() Phase  { return PhaseLoaded }
func (Failed) Phase() Phase  { return PhaseFailed }

func (Idle) viewState()    {}
func (Loading) viewState() {}
func (Loaded) viewState()  {}
func (Failed) viewState()  {}
