// Package adapters implements the ports each bounded context needs from the
// others, keeping the contexts free of direct cross-imports.
package adapters

import (
	"context"
	"errors"

	contractorrepo "leadmarket_backend/internal/contractors/repository"
	"leadmarket_backend/internal/leads/ports"

	"github.com/google/uuid"
)

// ContractorDirectoryAdapter exposes contractor records to the leads module.
type ContractorDirectoryAdapter struct {
	repo contractorrepo.ProfileStore
}

func NewContractorDirectoryAdapter(repo contractorrepo.ProfileStore) *ContractorDirectoryAdapter {
	return &ContractorDirectoryAdapter{repo: repo}
}

func (a *ContractorDirectoryAdapter) GetContractor(ctx context.Context, id uuid.UUID) (ports.Contractor, error) {
	c, err := a.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, contractorrepo.ErrNotFound) {
			return ports.Contractor{}, ports.ErrContractorNotFound
		}
		return ports.Contractor{}, err
	}
	return toPortContractor(c), nil
}

func (a *ContractorDirectoryAdapter) ListActive(ctx context.Context) ([]ports.Contractor, error) {
	contractors, err := a.repo.List(ctx, contractorrepo.LicenseStatusActive)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Contractor, 0, len(contractors))
	for _, c := range contractors {
		out = append(out, toPortContractor(c))
	}
	return out, nil
}

func toPortContractor(c contractorrepo.Contractor) ports.Contractor {
	return ports.Contractor{
		ID:            c.ID,
		Name:          c.Name,
		BusinessName:  c.BusinessName,
		LicenseClass:  c.LicenseClass,
		LicenseStatus: c.LicenseStatus,
		Verified:      c.Verified,
	}
}

// Compile-time check.
var _ ports.ContractorDirectory = (*ContractorDirectoryAdapter)(nil)
