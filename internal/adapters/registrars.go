package adapters

import (
	"context"

	authservice "leadmarket_backend/internal/auth/service"
	contractorrepo "leadmarket_backend/internal/contractors/repository"
	contractorservice "leadmarket_backend/internal/contractors/service"
	requesterservice "leadmarket_backend/internal/requesters/service"

	"github.com/google/uuid"
)

// RequesterRegistrarAdapter creates requester profiles for the auth module.
type RequesterRegistrarAdapter struct {
	svc *requesterservice.Service
}

func NewRequesterRegistrarAdapter(svc *requesterservice.Service) *RequesterRegistrarAdapter {
	return &RequesterRegistrarAdapter{svc: svc}
}

func (a *RequesterRegistrarAdapter) RegisterRequester(ctx context.Context, userID uuid.UUID, name, email, phone string) error {
	_, err := a.svc.Register(ctx, userID, name, email, phone)
	return err
}

// ContractorRegistrarAdapter creates contractor profiles for the auth module.
type ContractorRegistrarAdapter struct {
	svc *contractorservice.Service
}

func NewContractorRegistrarAdapter(svc *contractorservice.Service) *ContractorRegistrarAdapter {
	return &ContractorRegistrarAdapter{svc: svc}
}

func (a *ContractorRegistrarAdapter) RegisterContractor(ctx context.Context, userID uuid.UUID, name, businessName, licenseNumber, licenseClass string) error {
	_, err := a.svc.Register(ctx, contractorrepo.CreateContractorParams{
		ID:            userID,
		Name:          name,
		BusinessName:  businessName,
		LicenseNumber: licenseNumber,
		LicenseClass:  licenseClass,
	})
	return err
}

// Compile-time checks.
var (
	_ authservice.RequesterRegistrar  = (*RequesterRegistrarAdapter)(nil)
	_ authservice.ContractorRegistrar = (*ContractorRegistrarAdapter)(nil)
)
