package encounter

// State is a position in the encounter workflow.
type State string

const (
	StateEmpty           State = "empty"
	StatePartySelected   State = "party_selected"
	StateBuilding        State = "building"
	StateAwaitingPayment State = "awaiting_payment"
	StateCommitted       State = "committed"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s == StateCommitted || s == StateFailed }

// Stage names the commit step a failure happened in.
type Stage string

const (
	StageNone        Stage = "none"
	StageAppointment Stage = "appointment"
	StagePayment     Stage = "payment"
)
