// Package service implements requester profile management.
package service

import (
	"context"
	"errors"

	"leadmarket_backend/internal/requesters/repository"
	"leadmarket_backend/internal/requesters/transport"
	"leadmarket_backend/platform/apperr"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// Stable error codes returned to API clients.
const (
	CodeRequesterNotFound = "REQUESTER_NOT_FOUND"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
)

type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates a requester profile for a new account.
func (s *Service) Register(ctx context.Context, id uuid.UUID, name, email, phone string) (transport.RequesterResponse, error) {
	req, err := s.repo.Create(ctx, id, name, email, phone)
	if err != nil {
		return transport.RequesterResponse{}, s.storeErr("requesters.register", err)
	}
	return toResponse(req), nil
}

// GetByID returns a requester profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.RequesterResponse, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.RequesterResponse{}, apperr.NotFound("requester not found").WithCode(CodeRequesterNotFound)
		}
		return transport.RequesterResponse{}, s.storeErr("requesters.get", err)
	}
	return toResponse(req), nil
}

// MarkVerified flags a requester as verified (admin support action).
func (s *Service) MarkVerified(ctx context.Context, id uuid.UUID) (transport.RequesterResponse, error) {
	req, err := s.repo.MarkVerified(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.RequesterResponse{}, apperr.NotFound("requester not found").WithCode(CodeRequesterNotFound)
		}
		return transport.RequesterResponse{}, s.storeErr("requesters.mark_verified", err)
	}
	return toResponse(req), nil
}

func (s *Service) storeErr(op string, err error) error {
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindUnavailable, "temporary storage failure, try again", err).
		WithCode(CodeStoreUnavailable).WithOp(op)
}

func toResponse(r repository.Requester) transport.RequesterResponse {
	return transport.RequesterResponse{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		IsVerified: r.IsVerified,
		CreatedAt:  r.CreatedAt,
	}
}
