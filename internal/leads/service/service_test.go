package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/internal/leads/ports"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// In-memory fakes mirroring the repository and port contracts, including the
// conditional-update semantics (ErrNoMatch on a failed guard).

type fakeStore struct {
	mu    sync.Mutex
	leads map[uuid.UUID]repository.Lead
	trail []repository.TimelineEvent

	assignCalls int

	failMarkRevealed error
	failGetByID      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeStore) put(lead repository.Lead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads[lead.ID] = lead
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := repository.Lead{
		ID:           uuid.New(),
		RequesterID:  params.RequesterID,
		ContactName:  params.ContactName,
		Phone:        params.Phone,
		Email:        params.Email,
		ZipCode:      params.ZipCode,
		TradeType:    params.TradeType,
		Description:  params.Description,
		Status:       domain.StatusOpen,
		RevealStatus: domain.RevealStatusNotRevealed,
		Tier:         params.Tier,
		PriceCents:   params.PriceCents,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGetByID != nil {
		return repository.Lead{}, f.failGetByID
	}
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) ListUnassigned(_ context.Context) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0)
	for _, lead := range f.leads {
		if lead.AssignedContractorID == nil && lead.Status == domain.StatusOpen {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByRequester(_ context.Context, requesterID uuid.UUID) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0)
	for _, lead := range f.leads {
		if lead.RequesterID != nil && *lead.RequesterID == requesterID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByContractor(_ context.Context, contractorID uuid.UUID) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0)
	for _, lead := range f.leads {
		if lead.AssignedContractorID != nil && *lead.AssignedContractorID == contractorID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) AssignContractor(_ context.Context, leadID, contractorID uuid.UUID, at time.Time) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignCalls++
	lead, ok := f.leads[leadID]
	if !ok || lead.AssignedContractorID != nil || lead.Status != domain.StatusOpen {
		return repository.Lead{}, repository.ErrNoMatch
	}
	lead.AssignedContractorID = &contractorID
	lead.AssignedAt = &at
	lead.Status = domain.StatusAssigned
	f.leads[leadID] = lead
	return lead, nil
}

func (f *fakeStore) MarkRevealed(_ context.Context, leadID, contractorID uuid.UUID, at time.Time) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkRevealed != nil {
		return repository.Lead{}, f.failMarkRevealed
	}
	lead, ok := f.leads[leadID]
	if !ok || lead.AssignedContractorID == nil || *lead.AssignedContractorID != contractorID ||
		lead.Status != domain.StatusAssigned || lead.RevealStatus != domain.RevealStatusNotRevealed {
		return repository.Lead{}, repository.ErrNoMatch
	}
	lead.RevealStatus = domain.RevealStatusRevealed
	lead.RevealedAt = &at
	lead.Status = domain.StatusClaimed
	f.leads[leadID] = lead
	return lead, nil
}

func (f *fakeStore) ConfirmMatch(_ context.Context, leadID, requesterID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[leadID]
	if !ok || lead.RequesterID == nil || *lead.RequesterID != requesterID || lead.Status != domain.StatusClaimed {
		return repository.Lead{}, repository.ErrNoMatch
	}
	lead.Status = domain.StatusMatched
	f.leads[leadID] = lead
	return lead, nil
}

func (f *fakeStore) Close(_ context.Context, leadID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[leadID]
	if !ok || lead.Status == domain.StatusClosed {
		return repository.Lead{}, repository.ErrNoMatch
	}
	lead.Status = domain.StatusClosed
	f.leads[leadID] = lead
	return lead, nil
}

func (f *fakeStore) ContractorActivity(_ context.Context) (map[uuid.UUID]domain.ContractorActivity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity := make(map[uuid.UUID]domain.ContractorActivity)
	for _, lead := range f.leads {
		if lead.AssignedContractorID == nil {
			continue
		}
		a := activity[*lead.AssignedContractorID]
		a.ContractorID = *lead.AssignedContractorID
		a.AssignedLeadCount++
		if lead.AssignedAt != nil && (a.LastAssignedAt == nil || lead.AssignedAt.After(*a.LastAssignedAt)) {
			at := *lead.AssignedAt
			a.LastAssignedAt = &at
		}
		activity[*lead.AssignedContractorID] = a
	}
	return activity, nil
}

func (f *fakeStore) AddEvent(_ context.Context, leadID uuid.UUID, actorID *uuid.UUID, eventType string, metadata map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trail = append(f.trail, repository.TimelineEvent{
		ID:        uuid.New(),
		LeadID:    leadID,
		ActorID:   actorID,
		EventType: eventType,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) ListEvents(_ context.Context, leadID uuid.UUID) ([]repository.TimelineEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.TimelineEvent, 0)
	for _, e := range f.trail {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) hasEvent(eventType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.trail {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

var _ repository.Store = (*fakeStore)(nil)

type fakeDirectory struct {
	mu          sync.Mutex
	contractors map[uuid.UUID]ports.Contractor
}

func newFakeDirectory(contractors ...ports.Contractor) *fakeDirectory {
	d := &fakeDirectory{contractors: make(map[uuid.UUID]ports.Contractor)}
	for _, c := range contractors {
		d.contractors[c.ID] = c
	}
	return d
}

func (d *fakeDirectory) GetContractor(_ context.Context, id uuid.UUID) (ports.Contractor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.contractors[id]
	if !ok {
		return ports.Contractor{}, ports.ErrContractorNotFound
	}
	return c, nil
}

func (d *fakeDirectory) ListActive(_ context.Context) ([]ports.Contractor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ports.Contractor, 0)
	for _, c := range d.contractors {
		if c.LicenseStatus == ports.LicenseStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int
	debits   int
	refunds  int

	failBalance error
	// failNextRefunds makes the next N Refund calls fail with errBoom;
	// -1 means fail forever.
	failNextRefunds int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[uuid.UUID]int)}
}

func (l *fakeLedger) Balance(_ context.Context, contractorID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failBalance != nil {
		return 0, l.failBalance
	}
	return l.balances[contractorID], nil
}

func (l *fakeLedger) DebitOne(_ context.Context, contractorID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[contractorID] <= 0 {
		return 0, ports.ErrInsufficientCredits
	}
	l.balances[contractorID]--
	l.debits++
	return l.balances[contractorID], nil
}

func (l *fakeLedger) Refund(_ context.Context, contractorID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNextRefunds != 0 {
		if l.failNextRefunds > 0 {
			l.failNextRefunds--
		}
		return 0, errBoom
	}
	l.balances[contractorID]++
	l.refunds++
	return l.balances[contractorID], nil
}

type fakePayments struct {
	url      string
	err      error
	sessions int
}

func (p *fakePayments) CreateCheckoutSession(_ context.Context, _, _ uuid.UUID, _ int64) (string, error) {
	p.sessions++
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

type testConfig struct {
	base             int64
	premium          int64
	allowBypass      bool
	suggestionWindow time.Duration
}

func (c testConfig) GetBaseRevealPriceCents() int64    { return c.base }
func (c testConfig) GetPremiumRevealPriceCents() int64 { return c.premium }
func (c testConfig) GetAllowEligibilityBypass() bool   { return c.allowBypass }
func (c testConfig) GetSuggestionWindow() time.Duration {
	if c.suggestionWindow == 0 {
		return 30 * 24 * time.Hour
	}
	return c.suggestionWindow
}

func defaultTestConfig() testConfig {
	return testConfig{base: 2500, premium: 4500, allowBypass: true}
}

func newTestService(store *fakeStore, dir *fakeDirectory, ledger *fakeLedger) *Service {
	return New(store, dir, ledger, defaultTestConfig(), logger.New("development"))
}

func activeContractor(licenseClass string) ports.Contractor {
	return ports.Contractor{
		ID:            uuid.New(),
		Name:          "Dana Smith",
		BusinessName:  "Smith Trades LLC",
		LicenseClass:  licenseClass,
		LicenseStatus: ports.LicenseStatusActive,
		Verified:      true,
	}
}

func openLead(tradeType string) repository.Lead {
	requesterID := uuid.New()
	return repository.Lead{
		ID:           uuid.New(),
		RequesterID:  &requesterID,
		ContactName:  "Pat Jones",
		Phone:        "+15552345678",
		ZipCode:      "94107",
		TradeType:    tradeType,
		Description:  "Panel upgrade",
		Status:       domain.StatusOpen,
		RevealStatus: domain.RevealStatusNotRevealed,
		Tier:         domain.TierStandard,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func assignedLead(tradeType string, contractorID uuid.UUID) repository.Lead {
	lead := openLead(tradeType)
	now := time.Now()
	lead.Status = domain.StatusAssigned
	lead.AssignedContractorID = &contractorID
	lead.AssignedAt = &now
	return lead
}

var errBoom = errors.New("boom")
