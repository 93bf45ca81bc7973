package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LicenseReviewRequest struct {
	// Decision is ACTIVE to approve the license or REJECTED to deny it.
	Decision string `json:"decision" validate:"required,oneof=ACTIVE REJECTED"`
}

type VerificationRequest struct {
	// Verified is a pointer so an explicit false is distinguishable from a
	// missing field.
	Verified *bool `json:"verified" validate:"required"`
}

// Response DTOs

type ContractorResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	BusinessName  string    `json:"businessName"`
	LicenseNumber string    `json:"licenseNumber"`
	LicenseClass  string    `json:"licenseClass"`
	LicenseStatus string    `json:"licenseStatus"`
	Verified      bool      `json:"verified"`
	CreditBalance int       `json:"creditBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreditBalanceResponse struct {
	ContractorID uuid.UUID `json:"contractorId"`
	Balance      int       `json:"balance"`
}
