package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettlementListFilter narrows settlement listings.
type SettlementListFilter struct {
	Status   string
	BranchID *uuid.UUID // matches either side of the settlement
	Offset   int
	Limit    int
}

type SettlementRepository interface {
	Create(ctx context.Context, s *model.Settlement) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Settlement, error)
	// GetForUpdate row-locks the settlement inside the caller's transaction.
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Settlement, error)
	List(ctx context.Context, tenantID uuid.UUID, filter SettlementListFilter) ([]model.Settlement, int64, error)
	Save(ctx context.Context, s *model.Settlement) error
	AppendHistory(ctx context.Context, h *model.SettlementHistory) error
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(ctx context.Context, s *model.Settlement) error {
	if err := GetDB(ctx, r.db).Create(s).Error; err != nil {
		return queryErr("settlement create", err)
	}
	return nil
}

func (r *settlementRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Settlement, error) {
	var s model.Settlement
	err := GetDB(ctx, r.db).
		Preload("FromBranch").
		Preload("ToBranch").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&s, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "settlement not found")
		}
		return nil, queryErr("settlement lookup", err)
	}
	return &s, nil
}

func (r *settlementRepository) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Settlement, error) {
	var s model.Settlement
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "settlement not found")
		}
		return nil, queryErr("settlement lookup", err)
	}
	return &s, nil
}

func (r *settlementRepository) List(ctx context.Context, tenantID uuid.UUID, filter SettlementListFilter) ([]model.Settlement, int64, error) {
	base := GetDB(ctx, r.db).Model(&model.Settlement{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if filter.BranchID != nil {
		base = base.Where("from_branch_id = ? OR to_branch_id = ?", *filter.BranchID, *filter.BranchID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, queryErr("settlement count", err)
	}

	var settlements []model.Settlement
	err := base.
		Preload("FromBranch").
		Preload("ToBranch").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&settlements).Error
	if err != nil {
		return nil, 0, queryErr("settlement listing", err)
	}
	return settlements, total, nil
}

func (r *settlementRepository) Save(ctx context.Context, s *model.Settlement) error {
	if err := GetDB(ctx, r.db).Save(s).Error; err != nil {
		return queryErr("settlement update", err)
	}
	return nil
}

func (r *settlementRepository) AppendHistory(ctx context.Context, h *model.SettlementHistory) error {
	if err := GetDB(ctx, r.db).Create(h).Error; err != nil {
		return queryErr("settlement history insert", err)
	}
	return nil
}

// NextSettlementNo issues a daily-sequenced settlement number. An advisory
// lock keyed on the prefix prevents concurrent duplicates.
func NextSettlementNo(ctx context.Context, db *gorm.DB, now time.Time) (string, error) {
	prefix := "STL-" + now.Format("20060102") + "-"
	GetDB(ctx, db).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)

	var count int64
	if err := GetDB(ctx, db).Model(&model.Settlement{}).
		Where("settlement_no LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", queryErr("settlement numbering", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}
