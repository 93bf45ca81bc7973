package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ContractorActivity summarizes a contractor's assignment history for ranking.
type ContractorActivity struct {
	ContractorID      uuid.UUID
	AssignedLeadCount int
	LastAssignedAt    *time.Time
}

// Suggestion is one ranked row of the manual-assignment picker.
type Suggestion struct {
	ContractorID      uuid.UUID
	AssignedLeadCount int
	LastAssignedAt    *time.Time
	Suggested         bool
}

// RankContractors orders contractors for the manual-assignment picker:
// lowest historical lead count first, ties broken by contractor id so the
// ordering is deterministic. A contractor is flagged as suggested when they
// have never been assigned a lead, or their most recent assignment is older
// than the rolling window.
//
// The ranking is advisory only; it is a pure function of (history, now) with
// no correctness requirement beyond stability.
func RankContractors(activities []ContractorActivity, now time.Time, window time.Duration) []Suggestion {
	ranked := make([]Suggestion, 0, len(activities))
	for _, a := range activities {
		suggested := a.AssignedLeadCount == 0 ||
			(a.LastAssignedAt != nil && now.Sub(*a.LastAssignedAt) > window)
		ranked = append(ranked, Suggestion{
			ContractorID:      a.ContractorID,
			AssignedLeadCount: a.AssignedLeadCount,
			LastAssignedAt:    a.LastAssignedAt,
			Suggested:         suggested,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AssignedLeadCount != ranked[j].AssignedLeadCount {
			return ranked[i].AssignedLeadCount < ranked[j].AssignedLeadCount
		}
		return ranked[i].ContractorID.String() < ranked[j].ContractorID.String()
	})

	return ranked
}
