package transport

import (
	"time"

	"leadmarket_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	ContactName string      `json:"contactName" validate:"required,min=1,max=100"`
	Phone       string      `json:"phone" validate:"required,min=5,max=20"`
	Email       string      `json:"email,omitempty" validate:"omitempty,email"`
	ZipCode     string      `json:"zipCode" validate:"required,min=3,max=10"`
	TradeType   string      `json:"tradeType" validate:"required,min=1,max=100"`
	Description string      `json:"description" validate:"required,min=1,max=2000"`
	Tier        domain.Tier `json:"tier,omitempty" validate:"omitempty,oneof=standard premium"`
}

type AssignLeadRequest struct {
	ContractorID      uuid.UUID `json:"contractorId" validate:"required"`
	BypassEligibility bool      `json:"bypassEligibility,omitempty"`
	Reason            string    `json:"reason,omitempty" validate:"max=500"`
}

// Response DTOs

type ContactInfoResponse struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

type LeadResponse struct {
	ID                   uuid.UUID           `json:"id"`
	RequesterID          *uuid.UUID          `json:"requesterId,omitempty"`
	ZipCode              string              `json:"zipCode"`
	TradeType            string              `json:"tradeType"`
	Description          string              `json:"description"`
	Status               domain.Status       `json:"status"`
	AssignedContractorID *uuid.UUID          `json:"assignedContractorId,omitempty"`
	RevealStatus         domain.RevealStatus `json:"revealStatus"`
	RevealedAt           *time.Time          `json:"revealedAt,omitempty"`
	Tier                 domain.Tier         `json:"tier"`
	PriceCents           *int64              `json:"priceCents,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`

	// Contact is present only for callers authorized to see it: the owning
	// requester, admins, and contractors after a successful reveal.
	Contact *ContactInfoResponse `json:"contact,omitempty"`
}

type RevealResponse struct {
	LeadID           uuid.UUID           `json:"leadId"`
	Contact          ContactInfoResponse `json:"contact"`
	AlreadyRevealed  bool                `json:"alreadyRevealed"`
	RemainingCredits int                 `json:"remainingCredits"`
}

type SuggestionResponse struct {
	ContractorID      uuid.UUID  `json:"contractorId"`
	Name              string     `json:"name"`
	BusinessName      string     `json:"businessName"`
	LicenseClass      string     `json:"licenseClass"`
	AssignedLeadCount int        `json:"assignedLeadCount"`
	LastAssignedAt    *time.Time `json:"lastAssignedAt,omitempty"`
	Suggested         bool       `json:"suggested"`
}

type TimelineEventResponse struct {
	ID        uuid.UUID              `json:"id"`
	ActorID   *uuid.UUID             `json:"actorId,omitempty"`
	EventType string                 `json:"eventType"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}
