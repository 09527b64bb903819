package service

import (
	"context"
	"encoding/json"
	"time"

	"backend/internal/model"
	"backend/internal/notification"
	"backend/internal/report"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// --- DTOs ---

type ReconciliationRequest struct {
	BranchID            string `json:"branchId"`
	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate"`
	IncludeTransactions bool   `json:"includeTransactions"`
}

type PosSummaryDTO struct {
	SalesTotal       string `json:"sales_total"`
	TaxTotal         string `json:"tax_total"`
	DiscountTotal    string `json:"discount_total"`
	TransactionCount int64  `json:"transaction_count"`
	ExpectedIncome   string `json:"expected_income"` // sales + tax - discount
}

type FinanceCategoryDTO struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Total    string `json:"total"`
}

type FinanceSummaryDTO struct {
	IncomeTotal  string               `json:"income_total"`
	ExpenseTotal string               `json:"expense_total"`
	Net          string               `json:"net"`
	ByCategory   []FinanceCategoryDTO `json:"by_category"`
}

type BranchCashDTO struct {
	BranchID     string `json:"branch_id"`
	BranchName   string `json:"branch_name"`
	BranchCode   string `json:"branch_code"`
	ShiftCount   int64  `json:"shift_count"`
	ExpectedCash string `json:"expected_cash"`
	ActualCash   string `json:"actual_cash"`
	Difference   string `json:"difference"`
}

type ShiftBreakdownDTO struct {
	ShiftID      string  `json:"shift_id"`
	BranchID     string  `json:"branch_id"`
	CashierName  string  `json:"cashier_name"`
	OpenedAt     string  `json:"opened_at"`
	ClosedAt     *string `json:"closed_at"`
	ExpectedCash string  `json:"expected_cash"`
	FinalCash    string  `json:"final_cash"`
	Difference   string  `json:"difference"`
}

type CashReconciliationDTO struct {
	ExpectedTotal   string              `json:"expected_total"`
	ActualTotal     string              `json:"actual_total"`
	DifferenceTotal string              `json:"difference_total"`
	Branches        []BranchCashDTO     `json:"branches"`
	Shifts          []ShiftBreakdownDTO `json:"shifts"`
}

type SettlementLineDTO struct {
	ID           string `json:"id"`
	SettlementNo string `json:"settlement_no"`
	FromBranch   string `json:"from_branch"`
	ToBranch     string `json:"to_branch"`
	Amount       string `json:"amount"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type InterBranchSettlementsDTO struct {
	PayableTotal    string              `json:"payable_total"`
	ReceivableTotal string              `json:"receivable_total"`
	NetPosition     string              `json:"net_position"`
	Transactions    []SettlementLineDTO `json:"transactions"`
}

type TransactionLineDTO struct {
	ID            string `json:"id"`
	BranchID      string `json:"branch_id"`
	TotalAmount   string `json:"total_amount"`
	TaxAmount     string `json:"tax_amount"`
	Discount      string `json:"discount"`
	PaymentMethod string `json:"payment_method"`
	OccurredAt    string `json:"occurred_at"`
}

type ReconciliationResult struct {
	RecordID               string                       `json:"record_id"`
	Period                 PeriodDTO                    `json:"period"`
	PosSummary             PosSummaryDTO                `json:"posSummary"`
	FinanceSummary         FinanceSummaryDTO            `json:"financeSummary"`
	CashReconciliation     CashReconciliationDTO        `json:"cashReconciliation"`
	InterBranchSettlements InterBranchSettlementsDTO    `json:"interBranchSettlements"`
	Discrepancies          []report.Discrepancy         `json:"discrepancies"`
	Status                 string                       `json:"status"`
	Transactions           []TransactionLineDTO         `json:"transactions,omitempty"`
	Notifications          []notification.ChannelResult `json:"notifications"`
}

// --- Interface ---

type ReconciliationService interface {
	Run(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req ReconciliationRequest) (*ReconciliationResult, error)
	History(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.ReconciliationRecord, error)
}

type reconciliationService struct {
	reportRepo   repository.ReportRepository
	branchRepo   repository.BranchRepository
	reconRepo    repository.ReconciliationRepository
	auditRepo    repository.AuditRepository
	dispatcher   *notification.Dispatcher
	thresholds   report.Thresholds
	queryTimeout time.Duration
}

func NewReconciliationService(
	reportRepo repository.ReportRepository,
	branchRepo repository.BranchRepository,
	reconRepo repository.ReconciliationRepository,
	auditRepo repository.AuditRepository,
	dispatcher *notification.Dispatcher,
	thresholds report.Thresholds,
	queryTimeout time.Duration,
) ReconciliationService {
	return &reconciliationService{
		reportRepo:   reportRepo,
		branchRepo:   branchRepo,
		reconRepo:    reconRepo,
		auditRepo:    auditRepo,
		dispatcher:   dispatcher,
		thresholds:   thresholds,
		queryTimeout: queryTimeout,
	}
}

// --- Implementation ---

func (s *reconciliationService) Run(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req ReconciliationRequest) (*ReconciliationResult, error) {
	start, end, err := report.ResolvePeriod(report.PeriodToday, req.StartDate, req.EndDate, time.Now())
	if err != nil {
		return nil, err
	}

	branchIDs, err := report.ResolveBranchIDs(req.BranchID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	// Reconciliation accounts for every branch in scope, even silent ones.
	// Zero transactions where history predicts some is itself informative.
	var branches []model.Branch
	if len(branchIDs) > 0 {
		branches, err = s.branchRepo.GetByIDs(ctx, tenantID, branchIDs)
	} else {
		branches, err = s.branchRepo.ListActive(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}

	// Independent aggregations fan out in parallel; the first failure
	// cancels the rest.
	var (
		salesRows   []repository.BranchSalesRow
		ledgerRows  []repository.LedgerTotalRow
		cashRows    []repository.ShiftCashRow
		shifts      []model.Shift
		payable     decimal.Decimal
		receivable  decimal.Decimal
		settlements []model.Settlement
		txs         []model.PosTransaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		salesRows, err = s.reportRepo.SalesByBranch(gctx, tenantID, start, end, branchIDs)
		return err
	})
	g.Go(func() error {
		var err error
		ledgerRows, err = s.reportRepo.LedgerTotals(gctx, tenantID, start, end, branchIDs)
		return err
	})
	g.Go(func() error {
		var err error
		cashRows, err = s.reportRepo.ShiftCashByBranch(gctx, tenantID, start, end, branchIDs)
		return err
	})
	g.Go(func() error {
		var err error
		shifts, err = s.reportRepo.ListShifts(gctx, tenantID, start, end, branchIDs)
		return err
	})
	g.Go(func() error {
		var err error
		payable, receivable, err = s.reportRepo.SettlementTotals(gctx, tenantID, start, end, branchIDs)
		if err != nil {
			return err
		}
		settlements, err = s.reportRepo.ListSettlementsInWindow(gctx, tenantID, start, end, branchIDs)
		return err
	})
	if req.IncludeTransactions {
		g.Go(func() error {
			var err error
			txs, err = s.reportRepo.ListCompletedTransactions(gctx, tenantID, start, end, branchIDs, 500)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	posSummary, expectedIncome := buildPosSummary(salesRows)
	financeSummary, incomeTotal := buildFinanceSummary(ledgerRows)
	cashEntries, cashTotals := buildCashEntries(branches, cashRows)

	discrepancies := make([]report.Discrepancy, 0)
	for _, entry := range cashTotals.perBranch {
		if d := report.CheckCashDifference(entry.branchID, entry.difference, s.thresholds); d != nil {
			discrepancies = append(discrepancies, *d)
		}
	}
	if d := report.CheckFinanceMismatch(incomeTotal, expectedIncome, s.thresholds); d != nil {
		discrepancies = append(discrepancies, *d)
	}
	status := report.OverallStatus(discrepancies)

	result := &ReconciliationResult{
		Period:         PeriodDTO{Start: start.Format(time.RFC3339), End: end.Format(time.RFC3339)},
		PosSummary:     posSummary,
		FinanceSummary: financeSummary,
		CashReconciliation: CashReconciliationDTO{
			ExpectedTotal:   cashTotals.expected.StringFixed(2),
			ActualTotal:     cashTotals.actual.StringFixed(2),
			DifferenceTotal: cashTotals.difference.StringFixed(2),
			Branches:        cashEntries,
			Shifts:          buildShiftBreakdown(shifts),
		},
		InterBranchSettlements: InterBranchSettlementsDTO{
			PayableTotal:    payable.StringFixed(2),
			ReceivableTotal: receivable.StringFixed(2),
			NetPosition:     receivable.Sub(payable).StringFixed(2),
			Transactions:    buildSettlementLines(settlements),
		},
		Discrepancies: discrepancies,
		Status:        status,
	}
	if req.IncludeTransactions {
		result.Transactions = buildTransactionLines(txs)
	}

	// Persist the run snapshot (append-only, one row per run).
	record, err := s.persistSnapshot(ctx, tenantID, userID, branchIDs, start, end, result, expectedIncome, incomeTotal, cashTotals.difference)
	if err != nil {
		return nil, err
	}
	result.RecordID = record.ID.String()

	// Notification fan-out: per-channel results are reported back, but a
	// channel failure never fails the reconciliation itself.
	result.Notifications = s.dispatcher.Dispatch(ctx, notification.Payload{
		Event:    notification.EventReconciliationCompleted,
		TenantID: tenantID.String(),
		Data: map[string]interface{}{
			"record_id":     record.ID.String(),
			"status":        status,
			"discrepancies": len(discrepancies),
			"period_start":  start.Format(time.RFC3339),
			"period_end":    end.Format(time.RFC3339),
		},
	})

	return result, nil
}

// History returns the most recent run snapshots, newest first.
func (s *reconciliationService) History(ctx context.Context, tenantID uuid.UUID, limit int) ([]model.ReconciliationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.reconRepo.ListRecent(ctx, tenantID, limit)
}

func (s *reconciliationService) persistSnapshot(
	ctx context.Context,
	tenantID uuid.UUID,
	userID *uuid.UUID,
	branchIDs []uuid.UUID,
	start, end time.Time,
	result *ReconciliationResult,
	posTotal, ledgerIncome, cashDifference decimal.Decimal,
) (*model.ReconciliationRecord, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to serialize reconciliation result", err)
	}

	record := &model.ReconciliationRecord{
		TenantID:         tenantID,
		PeriodStart:      start,
		PeriodEnd:        end,
		PosTotal:         posTotal,
		LedgerIncome:     ledgerIncome,
		CashDifference:   cashDifference,
		DiscrepancyCount: len(result.Discrepancies),
		Status:           result.Status,
		Payload:          string(payload),
		RunBy:            userID,
	}
	if len(branchIDs) == 1 {
		record.BranchID = &branchIDs[0]
	}
	if err := s.reconRepo.Append(ctx, record); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"status":        result.Status,
		"discrepancies": len(result.Discrepancies),
	})
	audit := &model.AuditLog{
		TenantID: tenantID,
		UserID:   userID,
		Action:   model.ActionRunReconciliation,
		EntityID: record.ID.String(),
		Details:  string(details),
	}
	if err := s.auditRepo.Append(ctx, audit); err != nil {
		return nil, err
	}

	return record, nil
}

// --- Composition helpers (pure over aggregator output) ---

func buildPosSummary(rows []repository.BranchSalesRow) (PosSummaryDTO, decimal.Decimal) {
	sales, tax, discount := decimal.Zero, decimal.Zero, decimal.Zero
	var count int64
	for _, row := range rows {
		sales = sales.Add(row.SalesTotal)
		tax = tax.Add(row.TaxTotal)
		discount = discount.Add(row.DiscountTotal)
		count += row.TransactionCount
	}
	expected := sales.Add(tax).Sub(discount)
	return PosSummaryDTO{
		SalesTotal:       sales.StringFixed(2),
		TaxTotal:         tax.StringFixed(2),
		DiscountTotal:    discount.StringFixed(2),
		TransactionCount: count,
		ExpectedIncome:   expected.StringFixed(2),
	}, expected
}

func buildFinanceSummary(rows []repository.LedgerTotalRow) (FinanceSummaryDTO, decimal.Decimal) {
	income, expense := decimal.Zero, decimal.Zero
	byCategory := make([]FinanceCategoryDTO, 0, len(rows))
	for _, row := range rows {
		switch row.Type {
		case model.LedgerIncome:
			income = income.Add(row.Total)
		case model.LedgerExpense:
			expense = expense.Add(row.Total)
		}
		byCategory = append(byCategory, FinanceCategoryDTO{
			Type:     row.Type,
			Category: row.Category,
			Total:    row.Total.StringFixed(2),
		})
	}
	return FinanceSummaryDTO{
		IncomeTotal:  income.StringFixed(2),
		ExpenseTotal: expense.StringFixed(2),
		Net:          income.Sub(expense).StringFixed(2),
		ByCategory:   byCategory,
	}, income
}

type branchCashTotal struct {
	branchID   uuid.UUID
	difference decimal.Decimal
}

type cashTotals struct {
	expected   decimal.Decimal
	actual     decimal.Decimal
	difference decimal.Decimal
	perBranch  []branchCashTotal
}

// buildCashEntries emits exactly one entry per branch in scope, zero-filled
// when the branch recorded no shifts in the window.
func buildCashEntries(branches []model.Branch, rows []repository.ShiftCashRow) ([]BranchCashDTO, cashTotals) {
	byBranch := make(map[uuid.UUID]repository.ShiftCashRow, len(rows))
	for _, row := range rows {
		byBranch[row.BranchID] = row
	}

	totals := cashTotals{expected: decimal.Zero, actual: decimal.Zero, difference: decimal.Zero}
	entries := make([]BranchCashDTO, 0, len(branches))
	for _, branch := range branches {
		row := byBranch[branch.ID] // zero value when absent
		totals.expected = totals.expected.Add(row.ExpectedTotal)
		totals.actual = totals.actual.Add(row.FinalTotal)
		totals.difference = totals.difference.Add(row.DifferenceTotal)
		totals.perBranch = append(totals.perBranch, branchCashTotal{branchID: branch.ID, difference: row.DifferenceTotal})
		entries = append(entries, BranchCashDTO{
			BranchID:     branch.ID.String(),
			BranchName:   branch.Name,
			BranchCode:   branch.Code,
			ShiftCount:   row.ShiftCount,
			ExpectedCash: row.ExpectedTotal.StringFixed(2),
			ActualCash:   row.FinalTotal.StringFixed(2),
			Difference:   row.DifferenceTotal.StringFixed(2),
		})
	}
	return entries, totals
}

func buildShiftBreakdown(shifts []model.Shift) []ShiftBreakdownDTO {
	out := make([]ShiftBreakdownDTO, 0, len(shifts))
	for _, shift := range shifts {
		dto := ShiftBreakdownDTO{
			ShiftID:      shift.ID.String(),
			BranchID:     shift.BranchID.String(),
			CashierName:  shift.CashierName,
			OpenedAt:     shift.OpenedAt.Format(time.RFC3339),
			ExpectedCash: shift.ExpectedCash.StringFixed(2),
			FinalCash:    shift.FinalCash.StringFixed(2),
			Difference:   shift.CashDifference.StringFixed(2),
		}
		if shift.ClosedAt != nil {
			closed := shift.ClosedAt.Format(time.RFC3339)
			dto.ClosedAt = &closed
		}
		out = append(out, dto)
	}
	return out
}

func buildSettlementLines(settlements []model.Settlement) []SettlementLineDTO {
	out := make([]SettlementLineDTO, 0, len(settlements))
	for _, s := range settlements {
		line := SettlementLineDTO{
			ID:           s.ID.String(),
			SettlementNo: s.SettlementNo,
			Amount:       s.Amount.StringFixed(2),
			Status:       s.Status,
			CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		}
		if s.FromBranch != nil {
			line.FromBranch = s.FromBranch.Name
		}
		if s.ToBranch != nil {
			line.ToBranch = s.ToBranch.Name
		}
		out = append(out, line)
	}
	return out
}

func buildTransactionLines(txs []model.PosTransaction) []TransactionLineDTO {
	out := make([]TransactionLineDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionLineDTO{
			ID:            tx.ID.String(),
			BranchID:      tx.BranchID.String(),
			TotalAmount:   tx.TotalAmount.StringFixed(2),
			TaxAmount:     tx.TaxAmount.StringFixed(2),
			Discount:      tx.Discount.StringFixed(2),
			PaymentMethod: tx.PaymentMethod,
			OccurredAt:    tx.OccurredAt.Format(time.RFC3339),
		})
	}
	return out
}
