package enums

import "fmt"

// TransferState tracks the lifecycle of an inventory transfer.
type TransferState string

const (
	TransferStateDraft             TransferState = "draft"
	TransferStateSent              TransferState = "sent"
	TransferStatePartiallyReceived TransferState = "partially_received"
	TransferStateCompleted         TransferState = "completed"
	TransferStateCancelled         TransferState = "cancelled"
)

var validTransferStates = []TransferState{
	TransferStateDraft,
	TransferStateSent,
	TransferStatePartiallyReceived,
	TransferStateCompleted,
	TransferStateCancelled,
}

// String implements fmt.Stringer.
func (s TransferState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferState.
func (s TransferState) IsValid() bool {
	for _, candidate := range validTransferStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further mutation is legal from this state.
func (s TransferState) IsTerminal() bool {
	return s == TransferStateCompleted || s == TransferStateCancelled
}

// ParseTransferState converts raw input into a TransferState.
func ParseTransferState(value string) (TransferState, error) {
	for _, candidate := range validTransferStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer state %q", value)
}
