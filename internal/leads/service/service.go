// Package service implements the lead distribution engine: lead intake,
// assignment, credit-gated reveal, and the handshake confirmation.
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
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/phone"

	"github.com/google/uuid"
)

// Stable error codes returned to API clients.
const (
	CodeLeadNotFound        = "LEAD_NOT_FOUND"
	CodeContractorNotFound  = "CONTRACTOR_NOT_FOUND"
	CodeNotEligible         = "NOT_ELIGIBLE"
	CodeAlreadyAssigned     = "ALREADY_ASSIGNED"
	CodeContractorNotActive = "CONTRACTOR_NOT_ACTIVE"
	CodeNotAssignedToYou    = "NOT_ASSIGNED_TO_YOU"
	CodeNotOwner            = "NOT_OWNER"
	CodeWrongState          = "WRONG_STATE"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeRevealUnreconciled  = "REVEAL_UNRECONCILED"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
)

// Config narrows platform config to what the engine needs.
type Config interface {
	config.PricingConfig
	config.AssignmentConfig
}

type Service struct {
	repo        repository.Store
	contractors ports.ContractorDirectory
	credits     ports.CreditLedger
	payments    ports.PaymentInitiator
	bus         events.Bus
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
}

func New(repo repository.Store, contractors ports.ContractorDirectory, credits ports.CreditLedger, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		contractors: contractors,
		credits:     credits,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// SetEventBus wires the domain event bus. Optional; without it no events are
// published.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// SetPaymentInitiator wires the checkout provider used when a reveal is
// blocked on credits. Optional; without it the insufficient-credits error
// carries no redirect URL.
func (s *Service) SetPaymentInitiator(payments ports.PaymentInitiator) {
	s.payments = payments
}

// Create registers a new lead in the OPEN state. RequesterID is nil for
// anonymous submissions. The price attribute defaults from the tier.
func (s *Service) Create(ctx context.Context, requesterID *uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	tier := req.Tier
	if tier == "" {
		tier = domain.TierStandard
	}
	price := s.cfg.GetBaseRevealPriceCents()
	if tier == domain.TierPremium {
		price = s.cfg.GetPremiumRevealPriceCents()
	}

	params := repository.CreateLeadParams{
		RequesterID: requesterID,
		ContactName: req.ContactName,
		Phone:       phone.NormalizeE164(req.Phone),
		ZipCode:     req.ZipCode,
		TradeType:   req.TradeType,
		Description: req.Description,
		Tier:        tier,
		PriceCents:  &price,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, s.storeErr("leads.create", err)
	}

	s.audit(ctx, lead.ID, requesterID, repository.EventLeadCreated, map[string]interface{}{
		"tradeType": lead.TradeType,
		"tier":      string(lead.Tier),
	})

	return toLeadResponse(lead, true), nil
}

// GetByID returns a lead. Contact info is included only when includeContact
// is set; callers decide based on the caller's relationship to the lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, includeContact bool) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return transport.LeadResponse{}, s.storeErr("leads.get", err)
	}
	return toLeadResponse(lead, includeContact), nil
}

// GetForViewer returns a lead with contact info included only when the
// viewer is entitled to it: admins, the owning requester, or the assigned
// contractor after a successful reveal.
func (s *Service) GetForViewer(ctx context.Context, id, viewerID uuid.UUID, isAdmin bool) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return transport.LeadResponse{}, s.storeErr("leads.get", err)
	}

	includeContact := isAdmin ||
		(lead.RequesterID != nil && *lead.RequesterID == viewerID) ||
		(lead.AssignedContractorID != nil && *lead.AssignedContractorID == viewerID &&
			lead.RevealStatus == domain.RevealStatusRevealed)
	return toLeadResponse(lead, includeContact), nil
}

// ListUnassigned returns the unassigned pool for the admin assignment view.
func (s *Service) ListUnassigned(ctx context.Context) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListUnassigned(ctx)
	if err != nil {
		return nil, s.storeErr("leads.list_unassigned", err)
	}
	return toLeadResponses(leads, true), nil
}

// ListByRequester returns a requester's own leads, contact included.
func (s *Service) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, s.storeErr("leads.list_by_requester", err)
	}
	return toLeadResponses(leads, true), nil
}

// ListByContractor returns a contractor's assigned leads. Contact info is
// included only for leads already revealed; unrevealed leads stay masked
// regardless of assignment.
func (s *Service) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListByContractor(ctx, contractorID)
	if err != nil {
		return nil, s.storeErr("leads.list_by_contractor", err)
	}
	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, toLeadResponse(lead, lead.RevealStatus == domain.RevealStatusRevealed))
	}
	return responses, nil
}

// Close moves a lead to the terminal CLOSED state (administrative override).
func (s *Service) Close(ctx context.Context, leadID uuid.UUID, actorID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.Close(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			current, getErr := s.repo.GetByID(ctx, leadID)
			if errors.Is(getErr, repository.ErrNotFound) {
				return transport.LeadResponse{}, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
			}
			if getErr != nil {
				return transport.LeadResponse{}, s.storeErr("leads.close", getErr)
			}
			if current.Status.IsTerminal() {
				return transport.LeadResponse{}, apperr.Conflict("lead is already closed").WithCode(CodeWrongState)
			}
			return transport.LeadResponse{}, apperr.Conflict("close conflicted with a concurrent update, try again").WithCode(CodeWrongState)
		}
		return transport.LeadResponse{}, s.storeErr("leads.close", err)
	}

	s.log.LeadTransition(lead.ID.String(), "", string(domain.StatusClosed), "admin_close")
	s.audit(ctx, lead.ID, &actorID, repository.EventLeadClosed, nil)
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadClosed{BaseEvent: events.NewBaseEvent(), LeadID: lead.ID})
	}
	return toLeadResponse(lead, true), nil
}

// Timeline returns a lead's audit trail.
func (s *Service) Timeline(ctx context.Context, leadID uuid.UUID) ([]transport.TimelineEventResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return nil, s.storeErr("leads.timeline", err)
	}

	entries, err := s.repo.ListEvents(ctx, leadID)
	if err != nil {
		return nil, s.storeErr("leads.timeline", err)
	}

	responses := make([]transport.TimelineEventResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, transport.TimelineEventResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			EventType: e.EventType,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		})
	}
	return responses, nil
}

// audit appends a timeline entry. Audit failures are logged, never surfaced:
// the business operation has already committed.
func (s *Service) audit(ctx context.Context, leadID uuid.UUID, actorID *uuid.UUID, eventType string, metadata map[string]interface{}) {
	if err := s.repo.AddEvent(ctx, leadID, actorID, eventType, metadata); err != nil {
		s.log.DatabaseError("leads.audit."+eventType, err)
	}
}

func (s *Service) storeErr(op string, err error) error {
	s.log.DatabaseError(op, err)
	return apperr.Wrap(apperr.KindUnavailable, "temporary storage failure, try again", err).
		WithCode(CodeStoreUnavailable).WithOp(op)
}

func toLeadResponse(lead repository.Lead, includeContact bool) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                   lead.ID,
		RequesterID:          lead.RequesterID,
		ZipCode:              lead.ZipCode,
		TradeType:            lead.TradeType,
		Description:          lead.Description,
		Status:               lead.Status,
		AssignedContractorID: lead.AssignedContractorID,
		RevealStatus:         lead.RevealStatus,
		RevealedAt:           lead.RevealedAt,
		Tier:                 lead.Tier,
		PriceCents:           lead.PriceCents,
		CreatedAt:            lead.CreatedAt,
	}
	if includeContact {
		resp.Contact = &transport.ContactInfoResponse{
			Name:  lead.ContactName,
			Phone: lead.Phone,
			Email: lead.Email,
		}
	}
	return resp
}

func toLeadResponses(leads []repository.Lead, includeContact bool) []transport.LeadResponse {
	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, toLeadResponse(lead, includeContact))
	}
	return responses
}
