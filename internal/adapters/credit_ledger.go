package adapters

import (
	"context"
	"errors"

	contractorrepo "leadmarket_backend/internal/contractors/repository"
	"leadmarket_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// CreditLedgerAdapter exposes the contractor credit ledger to the leads
// module. All mutations go through the repository's atomic primitives.
type CreditLedgerAdapter struct {
	repo contractorrepo.LedgerStore
}

func NewCreditLedgerAdapter(repo contractorrepo.LedgerStore) *CreditLedgerAdapter {
	return &CreditLedgerAdapter{repo: repo}
}

func (a *CreditLedgerAdapter) Balance(ctx context.Context, contractorID uuid.UUID) (int, error) {
	balance, err := a.repo.Balance(ctx, contractorID)
	if errors.Is(err, contractorrepo.ErrNotFound) {
		return 0, ports.ErrContractorNotFound
	}
	return balance, err
}

func (a *CreditLedgerAdapter) DebitOne(ctx context.Context, contractorID uuid.UUID) (int, error) {
	balance, err := a.repo.DebitOne(ctx, contractorID)
	if err != nil {
		switch {
		case errors.Is(err, contractorrepo.ErrInsufficientCredits):
			return 0, ports.ErrInsufficientCredits
		case errors.Is(err, contractorrepo.ErrNotFound):
			return 0, ports.ErrContractorNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (a *CreditLedgerAdapter) Refund(ctx context.Context, contractorID uuid.UUID) (int, error) {
	balance, err := a.repo.AddCredits(ctx, contractorID, 1)
	if errors.Is(err, contractorrepo.ErrNotFound) {
		return 0, ports.ErrContractorNotFound
	}
	return balance, err
}

// Compile-time check.
var _ ports.CreditLedger = (*CreditLedgerAdapter)(nil)
