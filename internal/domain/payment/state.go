package payment

import "fmt"

// State is the lifecycle state of a payment attempt
type State string

const (
	StateInitiated       State = "initiated"
	StatePending         State = "pending"          // Manual receipt awaiting review
	StateAwaitingGateway State = "awaiting_gateway" // Bill created, tenant redirected
	StateApproved        State = "approved"
	StateRejected        State = "rejected"
	StateFailed          State = "failed" // Gateway reported unpaid or cancelled
)

var transitions = map[State][]State{
	StateInitiated:       {StatePending, StateAwaitingGateway},
	StateAwaitingGateway: {StateApproved, StateFailed},
	StateFailed:          {StateApproved},
	StatePending:         {StateApproved, StateRejected},
}

// IsValid checks if the state is known
func (s State) IsValid() bool {
	switch s {
	case StateInitiated, StatePending, StateAwaitingGateway, StateApproved, StateRejected, StateFailed:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsFinal returns true for states no transition leaves
func (s State) IsFinal() bool {
	return s == StateApproved || s == StateRejected
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LedgerStatus is the status shown on both ledger and history records
func (s State) LedgerStatus() Status {
	switch s {
	case StateApproved:
		return StatusApproved
	case StateRejected, StateFailed:
		return StatusRejected
	}
	return StatusPending
}

func invalidTransition(from, to State) error {
	return newInvalidStateError(fmt.Sprintf("Cannot move payment from %s to %s", from, to))
}

// Status is the accounting status of a ledger row
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Method is how a tenant paid
type Method string

const (
	MethodManual  Method = "manual"  // Bank transfer with uploaded receipt
	MethodGateway Method = "gateway" // Online payment through Billplz
)

// IsValid checks if the method is known
func (m Method) IsValid() bool {
	return m == MethodManual || m == MethodGateway
}

// Decision is an admin review outcome
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// IsValid checks if the decision is known
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}
