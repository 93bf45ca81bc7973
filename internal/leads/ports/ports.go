// Package ports defines the interfaces the leads module needs from other
// bounded contexts. Implementations live in internal/adapters, keeping this
// module free of cross-context imports.
package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInsufficientCredits is returned by DebitOne when the contractor's
// balance is zero. It signals resource exhaustion, not a bug; callers route
// the contractor to the payment flow.
var ErrInsufficientCredits = errors.New("insufficient credits")

// ErrContractorNotFound is returned when a contractor does not exist.
var ErrContractorNotFound = errors.New("contractor not found")

// Contractor is the slice of contractor state the leads module depends on.
type Contractor struct {
	ID            uuid.UUID
	Name          string
	BusinessName  string
	LicenseClass  string
	LicenseStatus string
	Verified      bool
}

// LicenseStatusActive is the only license status eligible for assignment.
const LicenseStatusActive = "ACTIVE"

// ContractorDirectory resolves contractor records for eligibility checks and
// the manual-assignment picker.
type ContractorDirectory interface {
	GetContractor(ctx context.Context, id uuid.UUID) (Contractor, error)
	ListActive(ctx context.Context) ([]Contractor, error)
}

// CreditLedger is the contractor credit balance, mutated only through atomic
// primitives: DebitOne never drives a balance negative, and concurrent debits
// racing for the last credit cannot both succeed.
type CreditLedger interface {
	// Balance returns the current credit balance.
	Balance(ctx context.Context, contractorID uuid.UUID) (int, error)
	// DebitOne atomically decrements the balance by one if it is positive,
	// returning the remaining balance or ErrInsufficientCredits.
	DebitOne(ctx context.Context, contractorID uuid.UUID) (int, error)
	// Refund restores one credit; the compensating write for a failed reveal.
	Refund(ctx context.Context, contractorID uuid.UUID) (int, error)
}

// PaymentInitiator starts a checkout flow when a reveal is blocked on
// credits. The core never touches card data; it only hands off identifiers
// and receives a redirect URL.
type PaymentInitiator interface {
	CreateCheckoutSession(ctx context.Context, leadID, contractorID uuid.UUID, amountCents int64) (string, error)
}
