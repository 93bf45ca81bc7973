package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRankContractorsOrdersByCountThenID(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	recent := now.Add(-24 * time.Hour)
	input := []ContractorActivity{
		{ContractorID: idC, AssignedLeadCount: 5, LastAssignedAt: &recent},
		{ContractorID: idB, AssignedLeadCount: 2, LastAssignedAt: &recent},
		{ContractorID: idA, AssignedLeadCount: 2, LastAssignedAt: &recent},
	}

	ranked := RankContractors(input, now, 30*24*time.Hour)

	wantOrder := []uuid.UUID{idA, idB, idC}
	for i, want := range wantOrder {
		if ranked[i].ContractorID != want {
			t.Fatalf("position %d: got %s, want %s", i, ranked[i].ContractorID, want)
		}
	}
}

func TestRankContractorsSuggestedFlag(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stale := now.Add(-45 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	input := []ContractorActivity{
		{ContractorID: uuid.New(), AssignedLeadCount: 0},                          // never assigned
		{ContractorID: uuid.New(), AssignedLeadCount: 3, LastAssignedAt: &stale},  // idle past window
		{ContractorID: uuid.New(), AssignedLeadCount: 1, LastAssignedAt: &recent}, // recently active
	}

	ranked := RankContractors(input, now, 30*24*time.Hour)

	byCount := map[int]bool{}
	for _, s := range ranked {
		byCount[s.AssignedLeadCount] = s.Suggested
	}
	if !byCount[0] {
		t.Error("contractor with zero assignments should be suggested")
	}
	if !byCount[3] {
		t.Error("contractor idle past the window should be suggested")
	}
	if byCount[1] {
		t.Error("recently active contractor should not be suggested")
	}
}

func TestRankContractorsIsStable(t *testing.T) {
	now := time.Now()
	input := []ContractorActivity{
		{ContractorID: uuid.MustParse("99999999-9999-9999-9999-999999999999"), AssignedLeadCount: 1},
		{ContractorID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), AssignedLeadCount: 1},
	}

	first := RankContractors(input, now, time.Hour)
	second := RankContractors(input, now, time.Hour)

	for i := range first {
		if first[i].ContractorID != second[i].ContractorID {
			t.Fatal("ranking is not deterministic across calls")
		}
	}
}
