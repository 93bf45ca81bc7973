// Package service implements contractor profile management, the admin
// license review, and the credit ledger operations consumed by the lead
// reveal flow.
package service

import (
	"context"
	"errors"

	"leadmarket_backend/internal/contractors/repository"
	"leadmarket_backend/internal/contractors/transport"
	"leadmarket_backend/internal/events"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// Stable error codes returned to API clients.
const (
	CodeContractorNotFound = "CONTRACTOR_NOT_FOUND"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
)

type Service struct {
	repo repository.Store
	bus  events.Bus
	log  *logger.Logger
}

func New(repo repository.Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetEventBus wires the domain event bus. Optional.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// Register creates a contractor profile in the PENDING license state. The id
// is the contractor's user id; license review happens before any lead can be
// assigned to them.
func (s *Service) Register(ctx context.Context, params repository.CreateContractorParams) (transport.ContractorResponse, error) {
	contractor, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.ContractorResponse{}, s.storeErr("contractors.register", err)
	}
	return toResponse(contractor), nil
}

// GetByID returns a contractor profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ContractorResponse, error) {
	contractor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ContractorResponse{}, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
		}
		return transport.ContractorResponse{}, s.storeErr("contractors.get", err)
	}
	return toResponse(contractor), nil
}

// List returns contractors for the admin view, optionally filtered by
// license status.
func (s *Service) List(ctx context.Context, licenseStatus string) ([]transport.ContractorResponse, error) {
	contractors, err := s.repo.List(ctx, licenseStatus)
	if err != nil {
		return nil, s.storeErr("contractors.list", err)
	}
	responses := make([]transport.ContractorResponse, 0, len(contractors))
	for _, c := range contractors {
		responses = append(responses, toResponse(c))
	}
	return responses, nil
}

// ReviewLicense records the admin decision on a contractor's license.
func (s *Service) ReviewLicense(ctx context.Context, id uuid.UUID, decision string) (transport.ContractorResponse, error) {
	contractor, err := s.repo.UpdateLicenseStatus(ctx, id, decision)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ContractorResponse{}, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
		}
		return transport.ContractorResponse{}, s.storeErr("contractors.review_license", err)
	}

	s.log.Info("license reviewed",
		"contractorId", contractor.ID.String(),
		"decision", decision,
	)
	return toResponse(contractor), nil
}

// SetVerified records the admin identity-verification decision. It is
// independent of the license review: an approved license does not imply a
// verified identity, and vice versa.
func (s *Service) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (transport.ContractorResponse, error) {
	contractor, err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ContractorResponse{}, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
		}
		return transport.ContractorResponse{}, s.storeErr("contractors.set_verified", err)
	}

	s.log.Info("verification updated",
		"contractorId", contractor.ID.String(),
		"verified", verified,
	)
	return toResponse(contractor), nil
}

// Balance returns the contractor's current credit balance.
func (s *Service) Balance(ctx context.Context, id uuid.UUID) (transport.CreditBalanceResponse, error) {
	balance, err := s.repo.Balance(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CreditBalanceResponse{}, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
		}
		return transport.CreditBalanceResponse{}, s.storeErr("contractors.balance", err)
	}
	return transport.CreditBalanceResponse{ContractorID: id, Balance: balance}, nil
}

// GrantCredits adds purchased credits to a contractor's balance and
// announces the grant.
func (s *Service) GrantCredits(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperr.Validation("credit amount must be positive")
	}

	balance, err := s.repo.AddCredits(ctx, id, amount)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
		}
		return 0, s.storeErr("contractors.grant_credits", err)
	}

	s.log.CreditEvent("grant", id.String(), balance)
	if s.bus != nil {
		s.bus.Publish(ctx, events.CreditsGranted{
			BaseEvent:    events.NewBaseEvent(),
			ContractorID: id,
			Amount:       amount,
		})
	}
	return balance, nil
}

// Repository exposes the raw store for the cross-context adapters.
func (s *Service) Repository() repository.Store {
	return s.repo
}

func (s *Service) storeErr(op string, err error) error {
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindUnavailable, "temporary storage failure, try again", err).
		WithCode(CodeStoreUnavailable).WithOp(op)
}

func toResponse(c repository.Contractor) transport.ContractorResponse {
	return transport.ContractorResponse{
		ID:            c.ID,
		Name:          c.Name,
		BusinessName:  c.BusinessName,
		LicenseNumber: c.LicenseNumber,
		LicenseClass:  c.LicenseClass,
		LicenseStatus: c.LicenseStatus,
		Verified:      c.Verified,
		CreditBalance: c.CreditBalance,
		CreatedAt:     c.CreatedAt,
	}
}
