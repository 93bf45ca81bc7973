package service

import (
	"context"
	"errors"
	"time"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/internal/leads/ports"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/internal/leads/transport"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// refundAttempts bounds the compensating refund after a failed reveal write.
const refundAttempts = 3

// Reveal discloses the lead's contact info to its assigned contractor,
// charging exactly one credit the first time. Repeat calls by the same
// contractor return the contact again without charging.
//
// Precondition checks run in a fixed order so concurrent callers observe
// stable error semantics: existence, assignment, idempotency, credits.
func (s *Service) Reveal(ctx context.Context, leadID, contractorID uuid.UUID) (transport.RevealResponse, error) {
	var (
		lead    repository.Lead
		balance int
		leadErr error
		balErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lead, leadErr = s.repo.GetByID(gctx, leadID)
		return leadErr
	})
	g.Go(func() error {
		balance, balErr = s.credits.Balance(gctx, contractorID)
		return balErr
	})
	// The fetches race, but the precondition order must not: a missing lead
	// wins over a missing contractor no matter which goroutine failed first.
	waitErr := g.Wait()
	if errors.Is(leadErr, repository.ErrNotFound) {
		return transport.RevealResponse{}, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
	}
	if errors.Is(balErr, ports.ErrContractorNotFound) {
		return transport.RevealResponse{}, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
	}
	if waitErr != nil {
		return transport.RevealResponse{}, s.storeErr("leads.reveal", waitErr)
	}

	if lead.AssignedContractorID == nil || *lead.AssignedContractorID != contractorID {
		return transport.RevealResponse{}, apperr.Forbidden("lead is not assigned to you").
			WithCode(CodeNotAssignedToYou)
	}

	// Idempotent short-circuit: already revealed to this contractor, no
	// charge.
	if lead.RevealStatus == domain.RevealStatusRevealed {
		return revealResponse(lead, balance, true), nil
	}

	if !domain.CanTransition(lead.Status, domain.StatusClaimed) {
		return transport.RevealResponse{}, apperr.Conflict("lead is not in a revealable state").
			WithCode(CodeWrongState)
	}

	if balance <= 0 {
		return transport.RevealResponse{}, s.insufficientCredits(ctx, lead, contractorID)
	}

	remaining, err := s.credits.DebitOne(ctx, contractorID)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientCredits) {
			// Lost a race with another debit since the snapshot.
			return transport.RevealResponse{}, s.insufficientCredits(ctx, lead, contractorID)
		}
		return transport.RevealResponse{}, s.storeErr("leads.reveal", err)
	}
	s.log.CreditEvent("debit", contractorID.String(), remaining)

	updated, err := s.repo.MarkRevealed(ctx, leadID, contractorID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			// A concurrent call won the reveal. The credit we took must go
			// back; the lead is revealed either way.
			if refundErr := s.refundWithRetry(ctx, contractorID); refundErr != nil {
				return transport.RevealResponse{}, s.unreconciled(ctx, leadID, contractorID, refundErr)
			}
			current, getErr := s.repo.GetByID(ctx, leadID)
			if getErr == nil && current.RevealStatus == domain.RevealStatusRevealed &&
				current.AssignedContractorID != nil && *current.AssignedContractorID == contractorID {
				return revealResponse(current, remaining+1, true), nil
			}
			return transport.RevealResponse{}, apperr.Conflict("lead is not in a revealable state").
				WithCode(CodeWrongState)
		}
		// Store failure after the debit: compensate before surfacing.
		if refundErr := s.refundWithRetry(ctx, contractorID); refundErr != nil {
			return transport.RevealResponse{}, s.unreconciled(ctx, leadID, contractorID, refundErr)
		}
		s.audit(ctx, leadID, &contractorID, repository.EventRevealCompensated, map[string]interface{}{
			"contractorId": contractorID.String(),
		})
		return transport.RevealResponse{}, s.storeErr("leads.reveal", err)
	}

	s.log.LeadTransition(updated.ID.String(), string(domain.StatusAssigned), string(domain.StatusClaimed), "reveal")
	s.audit(ctx, updated.ID, &contractorID, repository.EventLeadRevealed, map[string]interface{}{
		"contractorId":     contractorID.String(),
		"remainingCredits": remaining,
	})
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadRevealed{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       updated.ID,
			ContractorID: contractorID,
		})
	}

	return revealResponse(updated, remaining, false), nil
}

// insufficientCredits builds the 402 response, attaching a checkout redirect
// when a payment provider is wired.
func (s *Service) insufficientCredits(ctx context.Context, lead repository.Lead, contractorID uuid.UUID) error {
	appErr := apperr.PaymentRequired("not enough credits to reveal this lead").
		WithCode(CodeInsufficientCredits)
	if s.payments == nil {
		return appErr
	}

	price := s.cfg.GetBaseRevealPriceCents()
	if lead.Tier == domain.TierPremium {
		price = s.cfg.GetPremiumRevealPriceCents()
	}
	if lead.PriceCents != nil {
		price = *lead.PriceCents
	}

	url, err := s.payments.CreateCheckoutSession(ctx, lead.ID, contractorID, price)
	if err != nil {
		s.log.Error("checkout session creation failed", "leadId", lead.ID.String(), "error", err)
		return appErr
	}
	s.audit(ctx, lead.ID, &contractorID, repository.EventCheckoutInitiated, map[string]interface{}{
		"contractorId": contractorID.String(),
		"amountCents":  price,
	})
	return appErr.WithDetails(map[string]interface{}{"checkoutUrl": url})
}

// refundWithRetry compensates a debited credit after the reveal write failed.
// Bounded retries with short backoff; no background queue, callers hold the
// request open.
func (s *Service) refundWithRetry(ctx context.Context, contractorID uuid.UUID) error {
	var lastErr error
	for attempt := 0; attempt < refundAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
		balance, err := s.credits.Refund(ctx, contractorID)
		if err == nil {
			s.log.CreditEvent("refund", contractorID.String(), balance)
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// unreconciled is the terminal failure of the reveal saga: the credit was
// taken, the reveal did not happen, and the refund could not be applied.
// Operators reconcile from the alert and the audit row.
func (s *Service) unreconciled(ctx context.Context, leadID, contractorID uuid.UUID, refundErr error) error {
	s.log.ReconciliationAlert(leadID.String(), contractorID.String(), refundErr)
	s.audit(ctx, leadID, &contractorID, repository.EventRevealUnreconciled, map[string]interface{}{
		"contractorId": contractorID.String(),
		"error":        refundErr.Error(),
	})
	return apperr.Wrap(apperr.KindInternal, "reveal failed and the credit refund did not apply; support has been alerted", refundErr).
		WithCode(CodeRevealUnreconciled).WithOp("leads.reveal")
}

func revealResponse(lead repository.Lead, remainingCredits int, alreadyRevealed bool) transport.RevealResponse {
	return transport.RevealResponse{
		LeadID: lead.ID,
		Contact: transport.ContactInfoResponse{
			Name:  lead.ContactName,
			Phone: lead.Phone,
			Email: lead.Email,
		},
		AlreadyRevealed:  alreadyRevealed,
		RemainingCredits: remainingCredits,
	}
}
