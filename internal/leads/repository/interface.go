package repository

import (
	"context"
	"time"

	"leadmarket_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	ListUnassigned(ctx context.Context) ([]Lead, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]Lead, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Lead, error)
}

// LeadCreator persists new leads.
type LeadCreator interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
}

// LeadStateWriter applies guarded lifecycle transitions. Every method uses a
// conditional update and returns ErrNoMatch when the guard fails, so
// concurrent writers cannot both succeed.
type LeadStateWriter interface {
	AssignContractor(ctx context.Context, leadID, contractorID uuid.UUID, at time.Time) (Lead, error)
	MarkRevealed(ctx context.Context, leadID, contractorID uuid.UUID, at time.Time) (Lead, error)
	ConfirmMatch(ctx context.Context, leadID, requesterID uuid.UUID) (Lead, error)
	Close(ctx context.Context, leadID uuid.UUID) (Lead, error)
}

// ActivityReader aggregates assignment history for the advisory ranking.
type ActivityReader interface {
	ContractorActivity(ctx context.Context) (map[uuid.UUID]domain.ContractorActivity, error)
}

// TimelineStore records and reads the per-lead audit trail.
type TimelineStore interface {
	AddEvent(ctx context.Context, leadID uuid.UUID, actorID *uuid.UUID, eventType string, metadata map[string]interface{}) error
	ListEvents(ctx context.Context, leadID uuid.UUID) ([]TimelineEvent, error)
}

// Store is the full lead persistence surface consumed by the service layer.
type Store interface {
	LeadReader
	LeadCreator
	LeadStateWriter
	ActivityReader
	TimelineStore
}

// Compile-time check that Repository implements Store.
var _ Store = (*Repository)(nil)
