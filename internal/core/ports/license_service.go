package ports

import (
	"context"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// AllocateInput is the DTO passed from the transport layer to the allocator.
type AllocateInput struct {
	UserID   string
	NodeType string // optional category filter
}

// ListLicensesInput carries the optional list filters.
type ListLicensesInput struct {
	Status   string
	NodeType string
	UserID   string
}

// ProvisionInput asks for Count fresh available licenses of NodeType.
type ProvisionInput struct {
	NodeType string
	Count    int
}

// LicenseService defines use-case operations for licenses.
type LicenseService interface {
	Allocate(ctx context.Context, input AllocateInput) (*domain.License, error)
	List(ctx context.Context, input ListLicensesInput) ([]*domain.License, error)
	Provision(ctx context.Context, input ProvisionInput) ([]*domain.License, error)
	Activate(ctx context.Context, licenseID string) (*domain.License, error)
}
