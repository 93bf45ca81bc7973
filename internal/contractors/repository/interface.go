package repository

import (
	"context"

	"github.com/google/uuid"
)

// ProfileStore covers contractor profile reads and admin mutations.
type ProfileStore interface {
	Create(ctx context.Context, params CreateContractorParams) (Contractor, error)
	GetByID(ctx context.Context, id uuid.UUID) (Contractor, error)
	List(ctx context.Context, licenseStatus string) ([]Contractor, error)
	UpdateLicenseStatus(ctx context.Context, id uuid.UUID, status string) (Contractor, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (Contractor, error)
}

// LedgerStore is the credit balance surface. DebitOne decrements only a
// positive balance and AddCredits serves grants and refunds, so the balance
// can never go negative.
type LedgerStore interface {
	Balance(ctx context.Context, id uuid.UUID) (int, error)
	DebitOne(ctx context.Context, id uuid.UUID) (int, error)
	AddCredits(ctx context.Context, id uuid.UUID, amount int) (int, error)
}

// Store is the full contractor persistence surface consumed by the service
// layer and the cross-context adapters.
type Store interface {
	ProfileStore
	LedgerStore
}

// Compile-time check that Repository implements Store.
var _ Store = (*Repository)(nil)
