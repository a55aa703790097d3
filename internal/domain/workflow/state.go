package workflow

// State represents a workflow state in the procurement decision lifecycle
type State string

const (
	StateInitialized      State = "INITIALIZED"
	StateForecasting      State = "FORECASTING"
	StateOptimizing       State = "OPTIMIZING"
	StateVendorSelection  State = "VENDOR_SELECTION"
	StateAwaitingApproval State = "AWAITING_APPROVAL"
	StateGeneratingPO     State = "GENERATING_PO"
	StateCompleted        State = "COMPLETED"
	StateRejected         State = "REJECTED"
	StateFailed           State = "FAILED"
)

var validStates = map[State]bool{
	StateInitialized:      true,
	StateForecasting:      true,
	StateOptimizing:       true,
	StateVendorSelection:  true,
	StateAwaitingApproval: true,
	StateGeneratingPO:     true,
	StateCompleted:        true,
	StateRejected:         true,
	StateFailed:           true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
	StateRejected:  true,
	StateFailed:    true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
