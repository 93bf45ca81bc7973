package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadmarket_backend/internal/contractors/repository"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore mirrors the repository contract, including the
// decrement-if-positive debit guard.
type fakeStore struct {
	mu          sync.Mutex
	contractors map[uuid.UUID]repository.Contractor
}

func newFakeStore() *fakeStore {
	return &fakeStore{contractors: make(map[uuid.UUID]repository.Contractor)}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateContractorParams) (repository.Contractor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := repository.Contractor{
		ID:            params.ID,
		Name:          params.Name,
		BusinessName:  params.BusinessName,
		LicenseNumber: params.LicenseNumber,
		LicenseClass:  params.LicenseClass,
		LicenseStatus: repository.LicenseStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.contractors[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Contractor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contractors[id]
	if !ok {
		return repository.Contractor{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) List(_ context.Context, licenseStatus string) ([]repository.Contractor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Contractor, 0)
	for _, c := range f.contractors {
		if licenseStatus == "" || c.LicenseStatus == licenseStatus {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLicenseStatus(_ context.Context, id uuid.UUID, status string) (repository.Contractor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contractors[id]
	if !ok {
		return repository.Contractor{}, repository.ErrNotFound
	}
	c.LicenseStatus = status
	f.contractors[id] = c
	return c, nil
}

func (f *fakeStore) SetVerified(_ context.Context, id uuid.UUID, verified bool) (repository.Contractor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contractors[id]
	if !ok {
		return repository.Contractor{}, repository.ErrNotFound
	}
	c.Verified = verified
	f.contractors[id] = c
	return c, nil
}

func (f *fakeStore) Balance(_ context.Context, id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contractors[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return c.CreditBalance, nil
}

func (f *fakeStore) DebitOne(_ context.Context, id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contractors[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if c.CreditBalance <= 0 {
		return 0, repository.ErrInsufficientCredits
	}
	c.CreditBalance--
	f.contractors[id] = c
	return c.CreditBalance, nil
}

func (f *fakeStore) AddCredits(_ context.Context, id uuid.UUID, amount int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contractors[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	c.CreditBalance += amount
	f.contractors[id] = c
	return c.CreditBalance, nil
}

var _ repository.Store = (*fakeStore)(nil)

func newTestService(store *fakeStore) *Service {
	return New(store, logger.New("development"))
}

func registerContractor(t *testing.T, svc *Service) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := svc.Register(context.Background(), repository.CreateContractorParams{
		ID:            id,
		Name:          "Dana Smith",
		BusinessName:  "Smith Trades LLC",
		LicenseNumber: "1054321",
		LicenseClass:  "Electrical (C-10)",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return id
}

// License review and identity verification are separate admin decisions:
// approving a license must not flip the verification flag.
func TestReviewLicenseLeavesVerificationUntouched(t *testing.T) {
	svc := newTestService(newFakeStore())
	id := registerContractor(t, svc)

	reviewed, err := svc.ReviewLicense(context.Background(), id, repository.LicenseStatusActive)
	if err != nil {
		t.Fatalf("ReviewLicense() error = %v", err)
	}
	if reviewed.LicenseStatus != repository.LicenseStatusActive {
		t.Errorf("license status = %s, want ACTIVE", reviewed.LicenseStatus)
	}
	if reviewed.Verified {
		t.Error("license approval flipped the verification flag")
	}
}

func TestSetVerifiedIndependentOfLicenseStatus(t *testing.T) {
	svc := newTestService(newFakeStore())
	id := registerContractor(t, svc)

	verified, err := svc.SetVerified(context.Background(), id, true)
	if err != nil {
		t.Fatalf("SetVerified() error = %v", err)
	}
	if !verified.Verified {
		t.Error("contractor not marked verified")
	}
	if verified.LicenseStatus != repository.LicenseStatusPending {
		t.Errorf("license status = %s, want PENDING untouched", verified.LicenseStatus)
	}

	rejected, err := svc.ReviewLicense(context.Background(), id, repository.LicenseStatusRejected)
	if err != nil {
		t.Fatalf("ReviewLicense() error = %v", err)
	}
	if !rejected.Verified {
		t.Error("license rejection cleared the verification flag")
	}
}

func TestSetVerifiedUnknownContractor(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.SetVerified(context.Background(), uuid.New(), true)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("SetVerified() error = %v, want not-found", err)
	}
}

func TestGrantCreditsRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(newFakeStore())
	id := registerContractor(t, svc)

	if _, err := svc.GrantCredits(context.Background(), id, 0); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("GrantCredits(0) error = %v, want validation", err)
	}
	if _, err := svc.GrantCredits(context.Background(), id, -5); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("GrantCredits(-5) error = %v, want validation", err)
	}

	balance, err := svc.GrantCredits(context.Background(), id, 10)
	if err != nil {
		t.Fatalf("GrantCredits(10) error = %v", err)
	}
	if balance != 10 {
		t.Errorf("balance = %d, want 10", balance)
	}
}
