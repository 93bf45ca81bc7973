package service

import (
	"context"
	"sync"
	"testing"

	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/internal/leads/ports"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestRevealHappyPathChargesOneCredit(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 3

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	resp, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if resp.AlreadyRevealed {
		t.Error("first reveal reported AlreadyRevealed")
	}
	if resp.RemainingCredits != 2 {
		t.Errorf("RemainingCredits = %d, want 2", resp.RemainingCredits)
	}
	if resp.Contact.Phone != lead.Phone {
		t.Errorf("Contact.Phone = %q, want %q", resp.Contact.Phone, lead.Phone)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != domain.StatusClaimed {
		t.Errorf("status = %s, want CLAIMED", stored.Status)
	}
	if stored.RevealStatus != domain.RevealStatusRevealed {
		t.Errorf("reveal status = %s, want revealed", stored.RevealStatus)
	}
	if stored.RevealedAt == nil {
		t.Error("RevealedAt not set")
	}
}

func TestRevealIsIdempotentForAssignee(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 2

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	if _, err := svc.Reveal(context.Background(), lead.ID, contractor.ID); err != nil {
		t.Fatalf("first Reveal() error = %v", err)
	}
	second, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if err != nil {
		t.Fatalf("second Reveal() error = %v", err)
	}
	if !second.AlreadyRevealed {
		t.Error("repeat reveal did not report AlreadyRevealed")
	}
	if second.Contact.Name != lead.ContactName {
		t.Errorf("repeat reveal contact name = %q, want %q", second.Contact.Name, lead.ContactName)
	}
	if ledger.debits != 1 {
		t.Errorf("debits = %d, want exactly 1", ledger.debits)
	}
	if got := ledger.balances[contractor.ID]; got != 1 {
		t.Errorf("balance = %d, want 1", got)
	}
}

func TestRevealZeroCreditsChargesNothing(t *testing.T) {
	contractor := activeContractor("Roofing (C-39)")
	lead := assignedLead("Roofing (C-39)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger() // zero balance

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	_, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if !apperr.Is(err, apperr.KindPaymentRequired) {
		t.Fatalf("Reveal() error = %v, want payment-required", err)
	}
	if apperr.GetCode(err) != CodeInsufficientCredits {
		t.Errorf("code = %q, want %q", apperr.GetCode(err), CodeInsufficientCredits)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != domain.StatusAssigned {
		t.Errorf("status = %s, want ASSIGNED untouched", stored.Status)
	}
	if stored.RevealStatus != domain.RevealStatusNotRevealed {
		t.Errorf("reveal status = %s, want not_revealed", stored.RevealStatus)
	}
	if ledger.debits != 0 {
		t.Errorf("debits = %d, want 0", ledger.debits)
	}
}

func TestRevealInsufficientCreditsIncludesCheckoutRedirect(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)
	price := int64(4500)
	lead.PriceCents = &price

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger()
	payments := &fakePayments{url: "https://pay.example/session/abc"}

	svc := newTestService(store, newFakeDirectory(contractor), ledger)
	svc.SetPaymentInitiator(payments)

	_, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if !apperr.Is(err, apperr.KindPaymentRequired) {
		t.Fatalf("Reveal() error = %v, want payment-required", err)
	}

	appErr := err.(*apperr.Error)
	details, ok := appErr.Details.(map[string]interface{})
	if !ok {
		t.Fatalf("details = %#v, want map with checkoutUrl", appErr.Details)
	}
	if details["checkoutUrl"] != payments.url {
		t.Errorf("checkoutUrl = %v, want %q", details["checkoutUrl"], payments.url)
	}
	if payments.sessions != 1 {
		t.Errorf("sessions created = %d, want 1", payments.sessions)
	}
}

func TestRevealRejectsNonAssignee(t *testing.T) {
	assignee := activeContractor("Electrical (C-10)")
	other := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", assignee.ID)

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger()
	ledger.balances[other.ID] = 5

	svc := newTestService(store, newFakeDirectory(assignee, other), ledger)

	_, err := svc.Reveal(context.Background(), lead.ID, other.ID)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("Reveal() by non-assignee error = %v, want forbidden", err)
	}
	if apperr.GetCode(err) != CodeNotAssignedToYou {
		t.Errorf("code = %q, want %q", apperr.GetCode(err), CodeNotAssignedToYou)
	}
	if ledger.debits != 0 {
		t.Errorf("debits = %d, want 0", ledger.debits)
	}
}

func TestRevealUnknownLead(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	svc := newTestService(newFakeStore(), newFakeDirectory(contractor), newFakeLedger())

	_, err := svc.Reveal(context.Background(), uuid.New(), contractor.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Reveal() error = %v, want not-found", err)
	}
}

// When both the lead and the contractor are missing, the lead error must win
// regardless of which concurrent fetch fails first.
func TestRevealMissingLeadReportedBeforeMissingContractor(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failBalance = ports.ErrContractorNotFound
	svc := newTestService(newFakeStore(), newFakeDirectory(), ledger)

	for i := 0; i < 25; i++ {
		_, err := svc.Reveal(context.Background(), uuid.New(), uuid.New())
		if apperr.GetCode(err) != CodeLeadNotFound {
			t.Fatalf("code = %q, want %q (err=%v)", apperr.GetCode(err), CodeLeadNotFound, err)
		}
	}
}

func TestRevealClosedLeadWrongState(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)
	lead.Status = domain.StatusClosed

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 3

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	_, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if apperr.GetCode(err) != CodeWrongState {
		t.Fatalf("code = %q, want %q (err=%v)", apperr.GetCode(err), CodeWrongState, err)
	}
	if ledger.debits != 0 {
		t.Errorf("debits = %d, want 0 for a terminal lead", ledger.debits)
	}
}

func TestRevealCompensatesWhenMarkFails(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	store.failMarkRevealed = errBoom
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 2

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	_, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("Reveal() error = %v, want unavailable", err)
	}
	if got := ledger.balances[contractor.ID]; got != 2 {
		t.Errorf("balance after compensation = %d, want 2", got)
	}
	if !store.hasEvent(repository.EventRevealCompensated) {
		t.Error("compensation was not recorded on the timeline")
	}
}

func TestRevealCompensationRetriesThenSucceeds(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	store.failMarkRevealed = errBoom
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 1
	ledger.failNextRefunds = 2 // succeed on the third attempt

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	_, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("Reveal() error = %v, want unavailable", err)
	}
	if got := ledger.balances[contractor.ID]; got != 1 {
		t.Errorf("balance after retried compensation = %d, want 1", got)
	}
}

func TestRevealUnreconciledWhenRefundFails(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	store.failMarkRevealed = errBoom
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 1
	ledger.failNextRefunds = -1

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	_, err := svc.Reveal(context.Background(), lead.ID, contractor.ID)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("Reveal() error = %v, want internal", err)
	}
	if apperr.GetCode(err) != CodeRevealUnreconciled {
		t.Errorf("code = %q, want %q", apperr.GetCode(err), CodeRevealUnreconciled)
	}
	if !store.hasEvent(repository.EventRevealUnreconciled) {
		t.Error("unreconciled failure was not recorded on the timeline")
	}
}

func TestConcurrentRevealsChargeOnce(t *testing.T) {
	contractor := activeContractor("Electrical (C-10)")
	lead := assignedLead("Electrical (C-10)", contractor.ID)

	store := newFakeStore()
	store.put(lead)
	ledger := newFakeLedger()
	ledger.balances[contractor.ID] = 10

	svc := newTestService(store, newFakeDirectory(contractor), ledger)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reveal(context.Background(), lead.ID, contractor.ID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: Reveal() error = %v", i, err)
		}
	}
	if got := ledger.balances[contractor.ID]; got != 9 {
		t.Errorf("balance = %d, want 9 (exactly one charge)", got)
	}
}

func TestConcurrentDebitsNeverGoNegative(t *testing.T) {
	contractorA := activeContractor("Electrical (C-10)")
	contractorB := activeContractor("Electrical (C-10)")
	leadA := assignedLead("Electrical (C-10)", contractorA.ID)
	leadB := assignedLead("Electrical (C-10)", contractorB.ID)

	store := newFakeStore()
	store.put(leadA)
	store.put(leadB)
	ledger := newFakeLedger()
	ledger.balances[contractorA.ID] = 1
	ledger.balances[contractorB.ID] = 1

	svc := newTestService(store, newFakeDirectory(contractorA, contractorB), ledger)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Reveal(context.Background(), leadA.ID, contractorA.ID)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Reveal(context.Background(), leadB.ID, contractorB.ID)
		}()
	}
	wg.Wait()

	if got := ledger.balances[contractorA.ID]; got < 0 {
		t.Errorf("contractor A balance went negative: %d", got)
	}
	if got := ledger.balances[contractorB.ID]; got < 0 {
		t.Errorf("contractor B balance went negative: %d", got)
	}
}
