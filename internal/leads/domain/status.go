// Package domain provides core business rules for the leads bounded context:
// the lead lifecycle state machine, license eligibility matching, and the
// advisory contractor prioritization used by manual assignment.
package domain

// Status is the lead lifecycle state. Statuses form a closed enumeration so
// illegal states are unrepresentable outside this package's constructors.
type Status string

const (
	// StatusOpen is the initial state: the lead sits in the unassigned pool.
	StatusOpen Status = "OPEN"
	// StatusAssigned means a contractor is bound but contact info is hidden.
	StatusAssigned Status = "ASSIGNED"
	// StatusClaimed means the assigned contractor paid for and received the
	// contact info.
	StatusClaimed Status = "CLAIMED"
	// StatusMatched means the requester confirmed contact was made,
	// completing the double opt-in handshake.
	StatusMatched Status = "MATCHED"
	// StatusClosed is the terminal absorbing state reached by administrative
	// cancellation from any other state.
	StatusClosed Status = "CLOSED"
)

// RevealStatus tracks whether the lead's contact info has been disclosed.
type RevealStatus string

const (
	RevealStatusNotRevealed RevealStatus = "not_revealed"
	RevealStatusRevealed    RevealStatus = "revealed"
)

// Tier is the lead pricing tier. It is a data attribute affecting the price
// charged on a payment-path reveal, not a business-rule computation.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ParseStatus returns the Status for a stored value, or false when the value
// is not a member of the enumeration.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusOpen, StatusAssigned, StatusClaimed, StatusMatched, StatusClosed:
		return Status(value), true
	}
	return "", false
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusClosed
}

// happyPath holds the single legal successor on the assignment→reveal→
// handshake path. CLOSED is reachable from every non-terminal state and is
// handled separately in CanTransition.
var happyPath = map[Status]Status{
	StatusOpen:     StatusAssigned,
	StatusAssigned: StatusClaimed,
	StatusClaimed:  StatusMatched,
}

// CanTransition reports whether moving from one status to another is legal.
// Transitions must occur in order: a reveal on an OPEN lead is illegal and
// must fail rather than auto-assign.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusClosed {
		return true
	}
	return happyPath[from] == to
}
