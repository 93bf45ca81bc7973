package service

import (
	"context"
	"errors"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/internal/leads/transport"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

// ConfirmContact is the requester-side handshake: after the contractor
// revealed and reached out, the owning requester confirms contact was made,
// moving the lead from CLAIMED to MATCHED. Only the owner may confirm; no
// contractor or credit state changes here.
func (s *Service) ConfirmContact(ctx context.Context, leadID, requesterID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.ConfirmMatch(ctx, leadID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return transport.LeadResponse{}, s.classifyConfirmConflict(ctx, leadID, requesterID)
		}
		return transport.LeadResponse{}, s.storeErr("leads.confirm", err)
	}

	s.log.LeadTransition(lead.ID.String(), string(domain.StatusClaimed), string(domain.StatusMatched), "confirm_contact")
	s.audit(ctx, lead.ID, &requesterID, repository.EventLeadMatched, nil)
	if s.bus != nil && lead.AssignedContractorID != nil {
		s.bus.Publish(ctx, events.LeadMatched{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			ContractorID: *lead.AssignedContractorID,
		})
	}

	return toLeadResponse(lead, true), nil
}

// classifyConfirmConflict reloads the lead after a failed conditional confirm
// to distinguish ownership from state problems.
func (s *Service) classifyConfirmConflict(ctx context.Context, leadID, requesterID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return s.storeErr("leads.confirm", err)
	}

	if current.RequesterID == nil || *current.RequesterID != requesterID {
		return apperr.Forbidden("only the lead's requester can confirm contact").WithCode(CodeNotOwner)
	}
	if !domain.CanTransition(current.Status, domain.StatusMatched) {
		return apperr.Conflict("lead must be claimed before contact can be confirmed").WithCode(CodeWrongState)
	}
	// Owner and state both check out on the reload, so the CAS lost to a
	// writer that has since been undone. Surface a retryable conflict.
	return apperr.Conflict("confirmation conflicted with a concurrent update, try again").WithCode(CodeWrongState)
}
