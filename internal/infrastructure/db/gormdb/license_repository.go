package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
)

type LicenseRepository struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

func applyFilter(q *gorm.DB, f ports.LicenseFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.NodeType != "" {
		q = q.Where("node_type = ?", string(f.NodeType))
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.GeneratedSince.IsZero() {
		q = q.Where("generated_at >= ?", f.GeneratedSince.UTC())
	}
	return q
}

func (r *LicenseRepository) FindOldest(ctx context.Context, f ports.LicenseFilter) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row licenseModel
	err := applyFilter(r.db.WithContext(ctx), f).
		Order("created_at ASC").
		Order("id ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLicenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *LicenseRepository) FindFirstByUserAndStatus(ctx context.Context, userID string, status domain.LicenseStatus) (*domain.License, error) {
	return r.FindOldest(ctx, ports.LicenseFilter{UserID: userID, Status: status})
}

// UpdateStatus performs a compare-and-set on status. Zero rows affected means
// either the record is gone or another writer moved it first.
func (r *LicenseRepository) UpdateStatus(ctx context.Context, u ports.StatusUpdate) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	at := u.At.UTC()
	changes := map[string]any{"status": string(u.Next)}
	switch u.Next {
	case domain.StatusGenerated:
		changes["user_id"] = u.UserID
		changes["generated_at"] = at
	case domain.StatusUsed:
		changes["used_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("id = ?", u.ID).
		Where("status = ?", string(u.Expected)).
		Updates(changes)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateClaim
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&licenseModel{}).Where("id = ?", u.ID).Count(&exists).Error; err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, domain.ErrLicenseNotFound
		}
		return nil, domain.ErrStaleLicense
	}

	return r.FindByID(ctx, u.ID)
}

func (r *LicenseRepository) Count(ctx context.Context, f ports.LicenseFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := applyFilter(r.db.WithContext(ctx).Model(&licenseModel{}), f).Count(&n).Error
	return n, err
}

func (r *LicenseRepository) List(ctx context.Context, f ports.LicenseFilter) ([]*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []licenseModel
	err := applyFilter(r.db.WithContext(ctx), f).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.License, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LicenseRepository) FindByID(ctx context.Context, id string) (*domain.License, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row licenseModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLicenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *LicenseRepository) CreateBatch(ctx context.Context, licenses []*domain.License) error {
	if len(licenses) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows := make([]licenseModel, 0, len(licenses))
	for _, l := range licenses {
		rows = append(rows, toLicenseModel(l))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, 100).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateLicenseKey
	}
	return err
}
