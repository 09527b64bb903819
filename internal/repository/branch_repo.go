package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BranchRepository interface {
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]model.Branch, error)
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Branch, error)
}

type branchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("code").
		Find(&branches).Error
	if err != nil {
		return nil, queryErr("branch listing", err)
	}
	return branches, nil
}

func (r *branchRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("code").
		Find(&branches).Error
	if err != nil {
		return nil, queryErr("branch lookup", err)
	}
	if len(branches) != len(ids) {
		return nil, apperror.New(apperror.KindNotFound, "one or more branches not found")
	}
	return branches, nil
}
