package ports

import (
	"context"
	"time"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// LicenseFilter narrows license queries. Zero-valued fields are ignored.
type LicenseFilter struct {
	Status         domain.LicenseStatus
	NodeType       domain.NodeType
	UserID         string
	GeneratedSince time.Time // generated_at >= GeneratedSince
}

// StatusUpdate describes a conditional status transition. The store applies
// it only while the record is still in Expected.
type StatusUpdate struct {
	ID       string
	Expected domain.LicenseStatus
	Next     domain.LicenseStatus
	// UserID is stamped when Next is generated.
	UserID string
	// At becomes generated_at or used_at depending on Next.
	At time.Time
}

// LicenseRepository is the license inventory store.
type LicenseRepository interface {
	// FindOldest returns one record matching filter, oldest created_at first.
	// Returns domain.ErrLicenseNotFound when nothing matches.
	FindOldest(ctx context.Context, filter LicenseFilter) (*domain.License, error)
	// FindFirstByUserAndStatus returns domain.ErrLicenseNotFound when the
	// requester holds no license in status.
	FindFirstByUserAndStatus(ctx context.Context, userID string, status domain.LicenseStatus) (*domain.License, error)
	// UpdateStatus applies u atomically and returns the updated record.
	// Returns domain.ErrStaleLicense when the record left u.Expected,
	// domain.ErrLicenseNotFound when it does not exist and
	// domain.ErrDuplicateClaim when the requester already holds a generated license.
	UpdateStatus(ctx context.Context, u StatusUpdate) (*domain.License, error)
	Count(ctx context.Context, filter LicenseFilter) (int64, error)
	// List returns matching records, newest first.
	List(ctx context.Context, filter LicenseFilter) ([]*domain.License, error)
	FindByID(ctx context.Context, id string) (*domain.License, error)
	// CreateBatch inserts all licenses or none. A key collision returns
	// domain.ErrDuplicateLicenseKey.
	CreateBatch(ctx context.Context, licenses []*domain.License) error
}
