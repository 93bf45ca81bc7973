package service

import (
	"context"
	"testing"

	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestConfirmContactHappyPath(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)
	lead.Status = domain.StatusClaimed
	lead.RevealStatus = domain.RevealStatusRevealed

	store := newFakeStore()
	store.put(lead)
	svc := newTestService(store, newFakeDirectory(contractor), newFakeLedger())

	resp, err := svc.ConfirmContact(context.Background(), lead.ID, *lead.RequesterID)
	if err != nil {
		t.Fatalf("ConfirmContact() error = %v", err)
	}
	if resp.Status != domain.StatusMatched {
		t.Errorf("status = %s, want MATCHED", resp.Status)
	}
}

func TestConfirmContactRejectsNonOwner(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)
	lead.Status = domain.StatusClaimed

	store := newFakeStore()
	store.put(lead)
	svc := newTestService(store, newFakeDirectory(contractor), newFakeLedger())

	_, err := svc.ConfirmContact(context.Background(), lead.ID, uuid.New())
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("ConfirmContact() error = %v, want forbidden", err)
	}
	if apperr.GetCode(err) != CodeNotOwner {
		t.Errorf("code = %q, want %q", apperr.GetCode(err), CodeNotOwner)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != domain.StatusClaimed {
		t.Errorf("status = %s, want CLAIMED untouched", stored.Status)
	}
}

func TestConfirmContactWrongState(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")

	for _, status := range []domain.Status{domain.StatusOpen, domain.StatusAssigned, domain.StatusMatched, domain.StatusClosed} {
		lead := assignedLead("Electrical (C-10)", contractor.ID)
		lead.Status = status

		store := newFakeStore()
		store.put(lead)
		svc := newTestService(store, newFakeDirectory(contractor), newFakeLedger())

		_, err := svc.ConfirmContact(context.Background(), lead.ID, *lead.RequesterID)
		if !apperr.Is(err, apperr.KindConflict) {
			t.Errorf("status %s: error = %v, want conflict", status, err)
			continue
		}
		if apperr.GetCode(err) != CodeWrongState {
			t.Errorf("status %s: code = %q, want %q", status, apperr.GetCode(err), CodeWrongState)
		}
	}
}

func TestConfirmContactUnknownLead(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeDirectory(), newFakeLedger())

	_, err := svc.ConfirmContact(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("ConfirmContact() error = %v, want not-found", err)
	}
}
