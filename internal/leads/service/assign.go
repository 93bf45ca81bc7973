package service

import (
	"context"
	"errors"

	"leadmarket_backend/internal/events"
	"leadmarket_backend/internal/leads/domain"
	"leadmarket_backend/internal/leads/ports"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/internal/leads/transport"
	"leadmarket_backend/platform/apperr"

	"github.com/google/uuid"
)

// AssignOptions distinguishes automatic matching from a manual admin bind.
type AssignOptions struct {
	// Manual marks an admin-initiated assignment.
	Manual bool
	// BypassEligibility requests skipping the eligibility matcher. Honored
	// only for manual assignments when policy allows it; always audited.
	BypassEligibility bool
	// ActorID is the admin performing a manual assignment.
	ActorID *uuid.UUID
	// Reason is free text recorded with a bypass.
	Reason string
}

// Assign binds a contractor to an OPEN lead and transitions it to ASSIGNED.
// It is this operation, not reveal, that removes the lead from the
// unassigned pool.
func (s *Service) Assign(ctx context.Context, leadID, contractorID uuid.UUID, opts AssignOptions) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return transport.LeadResponse{}, s.storeErr("leads.assign", err)
	}

	contractor, err := s.contractors.GetContractor(ctx, contractorID)
	if err != nil {
		if errors.Is(err, ports.ErrContractorNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("contractor not found").WithCode(CodeContractorNotFound)
		}
		return transport.LeadResponse{}, s.storeErr("leads.assign", err)
	}

	if contractor.LicenseStatus != ports.LicenseStatusActive {
		return transport.LeadResponse{}, apperr.Conflict("contractor license is not active").
			WithCode(CodeContractorNotActive)
	}

	eligible := domain.IsEligible(contractor.LicenseClass, lead.TradeType)
	bypassed := false
	if !eligible {
		if !(opts.Manual && opts.BypassEligibility && s.cfg.GetAllowEligibilityBypass()) {
			return transport.LeadResponse{}, apperr.Conflict("contractor license does not qualify for this trade").
				WithCode(CodeNotEligible)
		}
		bypassed = true
	}

	// The state machine rules the transition; the conditional update below
	// re-checks the same guard atomically against concurrent writers.
	if !domain.CanTransition(lead.Status, domain.StatusAssigned) {
		return transport.LeadResponse{}, assignStateConflict(lead)
	}

	updated, err := s.repo.AssignContractor(ctx, leadID, contractorID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return transport.LeadResponse{}, s.classifyAssignConflict(ctx, leadID)
		}
		return transport.LeadResponse{}, s.storeErr("leads.assign", err)
	}

	s.log.LeadTransition(updated.ID.String(), string(domain.StatusOpen), string(domain.StatusAssigned), "assign")
	s.audit(ctx, updated.ID, opts.ActorID, repository.EventLeadAssigned, map[string]interface{}{
		"contractorId": contractorID.String(),
		"manual":       opts.Manual,
	})
	if bypassed {
		actor := ""
		if opts.ActorID != nil {
			actor = opts.ActorID.String()
		}
		s.log.ManualOverride("eligibility_bypass", updated.ID.String(), actor, opts.Reason)
		s.audit(ctx, updated.ID, opts.ActorID, repository.EventEligibilityBypassed, map[string]interface{}{
			"contractorId": contractorID.String(),
			"licenseClass": contractor.LicenseClass,
			"tradeType":    updated.TradeType,
			"reason":       opts.Reason,
		})
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:           events.NewBaseEvent(),
			LeadID:              updated.ID,
			ContractorID:        contractorID,
			Manual:              opts.Manual,
			EligibilityBypassed: bypassed,
		})
	}

	return toLeadResponse(updated, false), nil
}

// classifyAssignConflict reloads the lead after a failed conditional assign
// to tell the caller why it lost.
func (s *Service) classifyAssignConflict(ctx context.Context, leadID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return s.storeErr("leads.assign", err)
	}

	return assignStateConflict(current)
}

// assignStateConflict maps an unassignable lead to the caller-facing error.
func assignStateConflict(lead repository.Lead) error {
	if lead.AssignedContractorID != nil {
		return apperr.Conflict("lead is already assigned").WithCode(CodeAlreadyAssigned)
	}
	return apperr.Conflict("lead is not open for assignment").WithCode(CodeWrongState)
}

// SuggestContractors ranks eligible, ACTIVE contractors for the
// manual-assignment picker. Advisory only; assignment still enforces
// eligibility unless explicitly bypassed.
func (s *Service) SuggestContractors(ctx context.Context, leadID uuid.UUID) ([]transport.SuggestionResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
		}
		return nil, s.storeErr("leads.suggest", err)
	}

	contractors, err := s.contractors.ListActive(ctx)
	if err != nil {
		return nil, s.storeErr("leads.suggest", err)
	}

	activity, err := s.repo.ContractorActivity(ctx)
	if err != nil {
		return nil, s.storeErr("leads.suggest", err)
	}

	byID := make(map[uuid.UUID]ports.Contractor, len(contractors))
	candidates := make([]domain.ContractorActivity, 0, len(contractors))
	for _, c := range contractors {
		if !domain.IsEligible(c.LicenseClass, lead.TradeType) {
			continue
		}
		byID[c.ID] = c
		candidates = append(candidates, activity[c.ID])
		candidates[len(candidates)-1].ContractorID = c.ID
	}

	ranked := domain.RankContractors(candidates, s.now(), s.cfg.GetSuggestionWindow())

	responses := make([]transport.SuggestionResponse, 0, len(ranked))
	for _, r := range ranked {
		c := byID[r.ContractorID]
		responses = append(responses, transport.SuggestionResponse{
			ContractorID:      r.ContractorID,
			Name:              c.Name,
			BusinessName:      c.BusinessName,
			LicenseClass:      c.LicenseClass,
			AssignedLeadCount: r.AssignedLeadCount,
			LastAssignedAt:    r.LastAssignedAt,
			Suggested:         r.Suggested,
		})
	}
	return responses, nil
}
