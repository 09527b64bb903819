package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/notification"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger category used for the paired entries a settlement payment creates.
const ledgerCategorySettlement = "inter_branch_settlement"

// --- DTOs ---

type CreateSettlementRequest struct {
	FromBranchID string `json:"from_branch_id" binding:"required"`
	ToBranchID   string `json:"to_branch_id" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	DueDate      string `json:"due_date"`
	Notes        string `json:"notes"`
}

type SettlementTransitionRequest struct {
	Action           string `json:"action" binding:"required"`
	Notes            string `json:"notes"`
	PaymentMethod    string `json:"paymentMethod"`
	PaymentReference string `json:"paymentReference"`
}

type SettlementListQuery struct {
	Status   string
	BranchID string
	Page     int
	Limit    int
}

// --- Interface ---

type SettlementService interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req CreateSettlementRequest) (*model.Settlement, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Settlement, error)
	List(ctx context.Context, tenantID uuid.UUID, query SettlementListQuery) ([]model.Settlement, int64, error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, req SettlementTransitionRequest) (*model.Settlement, error)
}

type settlementService struct {
	db             *gorm.DB
	settlementRepo repository.SettlementRepository
	branchRepo     repository.BranchRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	dispatcher     *notification.Dispatcher
}

func NewSettlementService(
	db *gorm.DB,
	settlementRepo repository.SettlementRepository,
	branchRepo repository.BranchRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	dispatcher *notification.Dispatcher,
) SettlementService {
	return &settlementService{
		db:             db,
		settlementRepo: settlementRepo,
		branchRepo:     branchRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		dispatcher:     dispatcher,
	}
}

// --- Implementation ---

func (s *settlementService) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req CreateSettlementRequest) (*model.Settlement, error) {
	fromID, err := uuid.Parse(req.FromBranchID)
	if err != nil {
		return nil, apperror.New(apperror.KindInvalidParameter, "invalid from_branch_id")
	}
	toID, err := uuid.Parse(req.ToBranchID)
	if err != nil {
		return nil, apperror.New(apperror.KindInvalidParameter, "invalid to_branch_id")
	}
	if fromID == toID {
		return nil, apperror.New(apperror.KindInvalidParameter, "from and to branch must differ")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, apperror.New(apperror.KindInvalidParameter, "amount must be a positive decimal")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, apperror.New(apperror.KindInvalidParameter, "invalid due_date: expected RFC3339")
		}
		dueDate = &parsed
	}

	if _, err := s.branchRepo.GetByIDs(ctx, tenantID, []uuid.UUID{fromID, toID}); err != nil {
		return nil, err
	}

	settlement := &model.Settlement{
		TenantID:     tenantID,
		FromBranchID: fromID,
		ToBranchID:   toID,
		Amount:       amount,
		Status:       model.SettlementPending,
		DueDate:      dueDate,
		Notes:        req.Notes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		no, err := repository.NextSettlementNo(txCtx, s.db, time.Now())
		if err != nil {
			return err
		}
		settlement.SettlementNo = no

		if err := s.settlementRepo.Create(txCtx, settlement); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"settlement_no": settlement.SettlementNo,
			"amount":        settlement.Amount.StringFixed(2),
			"from_branch":   fromID.String(),
			"to_branch":     toID.String(),
		})
		return s.auditRepo.Append(txCtx, &model.AuditLog{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     model.ActionCreateSettlement,
			EntityID:   settlement.ID.String(),
			EntityName: settlement.SettlementNo,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.settlementRepo.GetByID(ctx, tenantID, settlement.ID)
}

func (s *settlementService) Get(ctx context.Context, tenantID, id uuid.UUID) (*model.Settlement, error) {
	return s.settlementRepo.GetByID(ctx, tenantID, id)
}

func (s *settlementService) List(ctx context.Context, tenantID uuid.UUID, query SettlementListQuery) ([]model.Settlement, int64, error) {
	filter := repository.SettlementListFilter{Status: query.Status}
	if query.BranchID != "" {
		id, err := uuid.Parse(query.BranchID)
		if err != nil {
			return nil, 0, apperror.New(apperror.KindInvalidParameter, "invalid branch id")
		}
		filter.BranchID = &id
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	filter.Offset = (query.Page - 1) * query.Limit
	filter.Limit = query.Limit

	return s.settlementRepo.List(ctx, tenantID, filter)
}

// Transition applies a lifecycle action atomically: the status change, the
// paired ledger entries (for payments), the history row, and the audit entry
// all commit together or not at all.
func (s *settlementService) Transition(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, req SettlementTransitionRequest) (*model.Settlement, error) {
	switch req.Action {
	case model.SettlementActionApprove, model.SettlementActionPay, model.SettlementActionCancel, model.SettlementActionMarkOverdue:
	default:
		return nil, apperror.New(apperror.KindInvalidParameter,
			"invalid action: must be one of approve, pay, cancel, mark_overdue")
	}
	if req.Action == model.SettlementActionPay && req.PaymentMethod == "" {
		return nil, apperror.New(apperror.KindInvalidParameter, "paymentMethod is required for pay")
	}

	var settlement *model.Settlement
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		settlement, err = s.settlementRepo.GetForUpdate(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		next, ok := model.NextSettlementStatus(settlement.Status, req.Action)
		if !ok {
			return apperror.New(apperror.KindInvalidStateTransition,
				fmt.Sprintf("cannot %s a settlement in status %s", req.Action, settlement.Status))
		}

		now := time.Now()
		if req.Action == model.SettlementActionMarkOverdue {
			if settlement.DueDate == nil || now.Before(*settlement.DueDate) {
				return apperror.New(apperror.KindInvalidStateTransition, "settlement is not past its due date")
			}
		}

		previous := settlement.Status
		settlement.Status = next
		if req.Notes != "" {
			settlement.Notes = req.Notes
		}
		if req.Action == model.SettlementActionPay {
			settlement.PaymentMethod = req.PaymentMethod
			settlement.PaymentReference = req.PaymentReference
			settlement.PaidAt = &now
		}

		if err := s.settlementRepo.Save(txCtx, settlement); err != nil {
			return err
		}

		if req.Action == model.SettlementActionPay {
			if err := s.createPaymentLedgerEntries(txCtx, settlement, now); err != nil {
				return err
			}
		}

		history := &model.SettlementHistory{
			SettlementID: settlement.ID,
			FromStatus:   previous,
			ToStatus:     next,
			Action:       req.Action,
			ActorID:      userID,
			Notes:        req.Notes,
		}
		if err := s.settlementRepo.AppendHistory(txCtx, history); err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"from_status": previous,
			"to_status":   next,
			"amount":      settlement.Amount.StringFixed(2),
		})
		return s.auditRepo.Append(txCtx, &model.AuditLog{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     auditActionFor(req.Action),
			EntityID:   settlement.ID.String(),
			EntityName: settlement.SettlementNo,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, err
	}

	if req.Action == model.SettlementActionPay || req.Action == model.SettlementActionMarkOverdue {
		event := notification.EventSettlementPaid
		if req.Action == model.SettlementActionMarkOverdue {
			event = notification.EventSettlementOverdue
		}
		s.dispatcher.Dispatch(ctx, notification.Payload{
			Event:    event,
			TenantID: tenantID.String(),
			Data: map[string]interface{}{
				"settlement_id": settlement.ID.String(),
				"settlement_no": settlement.SettlementNo,
				"status":        settlement.Status,
				"amount":        settlement.Amount.StringFixed(2),
			},
		})
	}

	return s.settlementRepo.GetByID(ctx, tenantID, settlement.ID)
}

// createPaymentLedgerEntries posts the paired finance rows a payment produces:
// an expense on the paying branch and an income on the receiving branch, both
// for the settlement's exact amount and referencing it.
func (s *settlementService) createPaymentLedgerEntries(txCtx context.Context, settlement *model.Settlement, now time.Time) error {
	settlementID := settlement.ID
	entries := []model.LedgerEntry{
		{
			TenantID:     settlement.TenantID,
			BranchID:     settlement.FromBranchID,
			Type:         model.LedgerExpense,
			Category:     ledgerCategorySettlement,
			Amount:       settlement.Amount,
			SettlementID: &settlementID,
			Description:  "settlement " + settlement.SettlementNo + " paid",
			OccurredAt:   now,
		},
		{
			TenantID:     settlement.TenantID,
			BranchID:     settlement.ToBranchID,
			Type:         model.LedgerIncome,
			Category:     ledgerCategorySettlement,
			Amount:       settlement.Amount,
			SettlementID: &settlementID,
			Description:  "settlement " + settlement.SettlementNo + " received",
			OccurredAt:   now,
		},
	}

	for i := range entries {
		if err := repository.GetDB(txCtx, s.db).Create(&entries[i]).Error; err != nil {
			return apperror.Wrap(apperror.KindDataUnavailable, "failed to post settlement ledger entries", err)
		}
	}
	return nil
}

func auditActionFor(action string) string {
	switch action {
	case model.SettlementActionApprove:
		return model.ActionApproveSettlement
	case model.SettlementActionPay:
		return model.ActionPaySettlement
	case model.SettlementActionCancel:
		return model.ActionCancelSettlement
	default:
		return model.ActionOverdueSettlement
	}
}
