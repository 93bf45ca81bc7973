package domain

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusOpen, StatusAssigned, true},
		{StatusAssigned, StatusClaimed, true},
		{StatusClaimed, StatusMatched, true},

		// Out-of-order transitions are illegal.
		{StatusOpen, StatusClaimed, false},
		{StatusOpen, StatusMatched, false},
		{StatusAssigned, StatusMatched, false},
		{StatusClaimed, StatusAssigned, false},
		{StatusMatched, StatusClaimed, false},
		{StatusAssigned, StatusOpen, false},

		// Administrative cancellation is legal from every non-terminal state.
		{StatusOpen, StatusClosed, true},
		{StatusAssigned, StatusClosed, true},
		{StatusClaimed, StatusClosed, true},
		{StatusMatched, StatusClosed, true},

		// CLOSED is absorbing.
		{StatusClosed, StatusOpen, false},
		{StatusClosed, StatusAssigned, false},
		{StatusClosed, StatusClosed, false},
	}

	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"OPEN", "ASSIGNED", "CLAIMED", "MATCHED", "CLOSED"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) rejected a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "open", "PENDING", "DONE"} {
		if _, ok := ParseStatus(invalid); ok {
			t.Errorf("ParseStatus(%q) accepted an invalid status", invalid)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusClosed.IsTerminal() {
		t.Error("CLOSED should be terminal")
	}
	for _, s := range []Status{StatusOpen, StatusAssigned, StatusClaimed, StatusMatched} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
