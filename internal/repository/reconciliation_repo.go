package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	// Append persists one run snapshot. Snapshots are write-once.
	Append(ctx context.Context, rec *model.ReconciliationRecord) error
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.ReconciliationRecord, error)
}

type reconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Append(ctx context.Context, rec *model.ReconciliationRecord) error {
	if err := GetDB(ctx, r.db).Create(rec).Error; err != nil {
		return queryErr("reconciliation snapshot insert", err)
	}
	return nil
}

func (r *reconciliationRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.ReconciliationRecord, error) {
	var records []model.ReconciliationRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, queryErr("reconciliation history", err)
	}
	return records, nil
}
