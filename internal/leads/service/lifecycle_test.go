package service

import (
	"context"
	"testing"

	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/internal/leads/transport"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

// Full lifecycle: intake, assignment, paid reveal, requester confirmation.
func TestLeadLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	contractor := activeContractor("Electrical (C-10)")
	requesterID := uuid.New()

	store := newFakeStore()
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 5
	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	created, err := svc.Create(ctx, &requesterID, transport.CreateLeadRequest{
		ContactName: "Pat Jones",
		Phone:       "(555) 234-5678",
		ZipCode:     "94107",
		TradeType:   "Electrical (C-10)",
		Description: "Panel upgrade and two new circuits",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != domain.StatusOpen {
		t.Fatalf("created status = %s, want OPEN", created.Status)
	}
	if created.PriceCents == nil || *created.PriceCents != 2500 {
		t.Errorf("price = %v, want standard tier default 2500", created.PriceCents)
	}

	if _, err := svc.Assign(ctx, created.ID, contractor.ID, AssignOptions{}); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	reveal, err := svc.Reveal(ctx, created.ID, contractor.ID)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if reveal.RemainingCredits != 4 {
		t.Errorf("remaining credits = %d, want 4", reveal.RemainingCredits)
	}
	if reveal.Contact.Name != "Pat Jones" {
		t.Errorf("contact name = %q, want Pat Jones", reveal.Contact.Name)
	}

	matched, err := svc.ConfirmContact(ctx, created.ID, requesterID)
	if err != nil {
		t.Fatalf("ConfirmContact() error = %v", err)
	}
	if matched.Status != domain.StatusMatched {
		t.Errorf("final status = %s, want MATCHED", matched.Status)
	}

	timeline, err := svc.Timeline(ctx, created.ID)
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	wantEvents := []string{
		repository.EventLeadCreated,
		repository.EventLeadAssigned,
		repository.EventLeadRevealed,
		repository.EventLeadMatched,
	}
	if len(timeline) != len(wantEvents) {
		t.Fatalf("timeline entries = %d, want %d", len(timeline), len(wantEvents))
	}
	for i, want := range wantEvents {
		if timeline[i].EventType != want {
			t.Errorf("timeline[%d] = %s, want %s", i, timeline[i].EventType, want)
		}
	}
}

func TestCreateDefaultsPremiumPricing(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeDirectory(), newFakeLedger())

	created, err := svc.Create(context.Background(), nil, transport.CreateLeadRequest{
		ContactName: "Sam Lee",
		Phone:       "+15559876543",
		ZipCode:     "90210",
		TradeType:   "Roofing (C-39)",
		Description: "Full tear-off and replacement",
		Tier:        domain.TierPremium,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.PriceCents == nil || *created.PriceCents != 4500 {
		t.Errorf("price = %v, want premium tier 4500", created.PriceCents)
	}
	if created.RequesterID != nil {
		t.Error("anonymous lead must have no requester")
	}
}

func TestCloseIsAbsorbing(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)
	admin := uuid.New()

	store := newFakeStore()
	store.put(lead)
	svc := newTestService(store, newFakeDirectory(contractor), newFakeLedger())

	closed, err := svc.Close(context.Background(), lead.ID, admin)
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if closed.Status != domain.StatusClosed {
		t.Fatalf("status = %s, want CLOSED", closed.Status)
	}

	if _, err := svc.Close(context.Background(), lead.ID, admin); apperr.GetCode(err) != CodeWrongState {
		t.Errorf("second Close() code = %q, want %q (err=%v)", apperr.GetCode(err), CodeWrongState, err)
	}

	if _, err := svc.Reveal(context.Background(), lead.ID, contractor.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Reveal() on closed lead error = %v, want conflict", err)
	}
}

func TestListByContractorMasksUnrevealedContact(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	unrevealed := assignedLead("Electrical (C-10)", contractor.ID)
	revealed := assignedLead("Electrical (C-10)", contractor.ID)
	revealed.Status = domain.StatusClaimed
	revealed.RevealStatus = domain.RevealStatusRevealed

	store := newFakeStore()
	store.put(unrevealed)
	store.put(revealed)
	svc := newTestService(store, newFakeDirectory(contractor), newFakeLedger())

	leads, err := svc.ListByContractor(context.Background(), contractor.ID)
	if err != nil {
		t.Fatalf("ListByContractor() error = %v", err)
	}
	for _, l := range leads {
		switch l.ID {
		case unrevealed.ID:
			if l.Contact != nil {
				t.Error("unrevealed lead leaked contact info")
			}
		case revealed.ID:
			if l.Contact == nil {
				t.Error("revealed lead missing contact info")
			}
		}
	}
}
