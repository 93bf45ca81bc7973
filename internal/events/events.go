// Package events defines the domain events exchanged between modules and
// re-exports the platform event bus for convenience.
package events

import (
	platformevents "leadmarket_backend/platform/events"
	"leadmarket_backend/platform/logger"

	"github.com/google/uuid"
)

// InMemoryBus is a type alias to the platform InMemoryBus.
type InMemoryBus = platformevents.InMemoryBus

// Bus is a type alias to the platform Bus interface.
type Bus = platformevents.Bus

// Event is a type alias to the platform Event interface.
type Event = platformevents.Event

// BaseEvent is a type alias to the platform BaseEvent.
type BaseEvent = platformevents.BaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// Event names.
const (
	EventLeadAssigned   = "lead.assigned"
	EventLeadRevealed   = "lead.revealed"
	EventLeadMatched    = "lead.matched"
	EventLeadClosed     = "lead.closed"
	EventCreditsGranted = "credits.granted"
)

// LeadAssigned is published when a contractor is bound to a lead.
type LeadAssigned struct {
	platformevents.BaseEvent
	LeadID              uuid.UUID `json:"leadId"`
	ContractorID        uuid.UUID `json:"contractorId"`
	Manual              bool      `json:"manual"`
	EligibilityBypassed bool      `json:"eligibilityBypassed"`
}

func (LeadAssigned) EventName() string { return EventLeadAssigned }

// LeadRevealed is published after contact info is first disclosed.
type LeadRevealed struct {
	platformevents.BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	ContractorID uuid.UUID `json:"contractorId"`
}

func (LeadRevealed) EventName() string { return EventLeadRevealed }

// LeadMatched is published when the requester confirms contact was made.
type LeadMatched struct {
	platformevents.BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	ContractorID uuid.UUID `json:"contractorId"`
}

func (LeadMatched) EventName() string { return EventLeadMatched }

// LeadClosed is published on administrative cancellation.
type LeadClosed struct {
	platformevents.BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (LeadClosed) EventName() string { return EventLeadClosed }

// CreditsGranted is published when a checkout completes and credits land on
// a contractor's balance.
type CreditsGranted struct {
	platformevents.BaseEvent
	ContractorID uuid.UUID `json:"contractorId"`
	Amount       int       `json:"amount"`
}

func (CreditsGranted) EventName() string { return EventCreditsGranted }
