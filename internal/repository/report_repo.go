package repository

import (
	"context"
	"errors"
	"time"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BranchSalesRow is one per-branch summary over completed transactions.
type BranchSalesRow struct {
	BranchID         uuid.UUID       `gorm:"column:branch_id"`
	BranchName       string          `gorm:"column:branch_name"`
	BranchCode       string          `gorm:"column:branch_code"`
	SalesTotal       decimal.Decimal `gorm:"column:sales_total"`
	TaxTotal         decimal.Decimal `gorm:"column:tax_total"`
	DiscountTotal    decimal.Decimal `gorm:"column:discount_total"`
	TransactionCount int64           `gorm:"column:transaction_count"`
	UniqueCustomers  int64           `gorm:"column:unique_customers"`
	AvgTransaction   decimal.Decimal `gorm:"column:avg_transaction"`
}

// LedgerTotalRow is a finance-ledger sum grouped by type and category.
type LedgerTotalRow struct {
	Type     string          `gorm:"column:type"`
	Category string          `gorm:"column:category"`
	Total    decimal.Decimal `gorm:"column:total"`
}

// ShiftCashRow aggregates register cash per branch.
type ShiftCashRow struct {
	BranchID        uuid.UUID       `gorm:"column:branch_id"`
	ShiftCount      int64           `gorm:"column:shift_count"`
	InitialTotal    decimal.Decimal `gorm:"column:initial_total"`
	ExpectedTotal   decimal.Decimal `gorm:"column:expected_total"`
	FinalTotal      decimal.Decimal `gorm:"column:final_total"`
	DifferenceTotal decimal.Decimal `gorm:"column:difference_total"`
}

// WastageBranchRow is recorded waste value per branch.
type WastageBranchRow struct {
	BranchID      uuid.UUID       `gorm:"column:branch_id"`
	BranchName    string          `gorm:"column:branch_name"`
	BranchCode    string          `gorm:"column:branch_code"`
	TotalQuantity decimal.Decimal `gorm:"column:total_quantity"`
	WasteValue    decimal.Decimal `gorm:"column:waste_value"`
}

// WastageProductRow ranks products by accumulated waste value.
type WastageProductRow struct {
	ProductID     uuid.UUID       `gorm:"column:product_id"`
	ProductName   string          `gorm:"column:product_name"`
	Category      string          `gorm:"column:category"`
	TotalQuantity decimal.Decimal `gorm:"column:total_quantity"`
	WasteValue    decimal.Decimal `gorm:"column:waste_value"`
}

// WastageCategoryRow groups waste value by product category.
type WastageCategoryRow struct {
	Category      string          `gorm:"column:category"`
	TotalQuantity decimal.Decimal `gorm:"column:total_quantity"`
	WasteValue    decimal.Decimal `gorm:"column:waste_value"`
}

// DailyTrendRow is one day's total for trend charts.
type DailyTrendRow struct {
	Day      string          `gorm:"column:day"`
	Value    decimal.Decimal `gorm:"column:value"`
	RowCount int64           `gorm:"column:row_count"`
}

// WastageFilter narrows wastage aggregation; nil/empty fields are skipped.
type WastageFilter struct {
	Start      time.Time
	End        time.Time
	BranchIDs  []uuid.UUID
	CategoryID *uuid.UUID
	ProductID  *uuid.UUID
	WasteType  string
}

type ReportRepository interface {
	SalesByBranch(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]BranchSalesRow, error)
	DailySalesTrend(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]DailyTrendRow, error)
	LedgerTotals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]LedgerTotalRow, error)
	ShiftCashByBranch(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]ShiftCashRow, error)
	ListShifts(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]model.Shift, error)
	WastageByBranch(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) ([]WastageBranchRow, error)
	WastageByProduct(ctx context.Context, tenantID uuid.UUID, filter WastageFilter, limit int) ([]WastageProductRow, error)
	WastageByCategory(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) ([]WastageCategoryRow, error)
	WastageDailyTrend(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) ([]DailyTrendRow, error)
	SettlementTotals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) (payable, receivable decimal.Decimal, err error)
	ListSettlementsInWindow(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]model.Settlement, error)
	ListCompletedTransactions(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID, limit int) ([]model.PosTransaction, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// queryErr classifies aggregation failures. Financial reads never substitute
// fabricated values: any failure surfaces as data_unavailable (or timeout).
func queryErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.Wrap(apperror.KindTimeout, op+" timed out", err)
	}
	return apperror.Wrap(apperror.KindDataUnavailable, op+" unavailable", err)
}

// completedTx is the shared base predicate: tenant-scoped completed
// transactions inside the closed window, optionally narrowed to branches.
func (r *reportRepository) completedTx(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.PosTransaction{}).
		Where("pos_transactions.tenant_id = ?", tenantID).
		Where("pos_transactions.status = ?", model.TxStatusCompleted).
		Where("pos_transactions.occurred_at >= ? AND pos_transactions.occurred_at <= ?", start, end)
	if len(branchIDs) > 0 {
		q = q.Where("pos_transactions.branch_id IN ?", branchIDs)
	}
	return q
}

func (r *reportRepository) SalesByBranch(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]BranchSalesRow, error) {
	var rows []BranchSalesRow
	err := r.completedTx(ctx, tenantID, start, end, branchIDs).
		Select(`branches.id AS branch_id, branches.name AS branch_name, branches.code AS branch_code,
			COALESCE(SUM(pos_transactions.total_amount), 0) AS sales_total,
			COALESCE(SUM(pos_transactions.tax_amount), 0) AS tax_total,
			COALESCE(SUM(pos_transactions.discount), 0) AS discount_total,
			COUNT(pos_transactions.id) AS transaction_count,
			COUNT(DISTINCT pos_transactions.customer_ref) AS unique_customers,
			COALESCE(AVG(pos_transactions.total_amount), 0) AS avg_transaction`).
		Joins("JOIN branches ON branches.id = pos_transactions.branch_id").
		Group("branches.id, branches.name, branches.code").
		Order("branches.code").
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("branch sales aggregation", err)
	}
	return rows, nil
}

func (r *reportRepository) DailySalesTrend(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]DailyTrendRow, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC('day', t.occurred_at), 'YYYY-MM-DD') AS day,
			COALESCE(SUM(t.total_amount), 0) AS value,
			COUNT(t.id) AS row_count
		FROM pos_transactions t
		WHERE t.tenant_id = ?
		  AND t.status = ?
		  AND t.occurred_at >= ? AND t.occurred_at <= ?`
	args := []interface{}{tenantID, model.TxStatusCompleted, start, end}
	if len(branchIDs) > 0 {
		query += " AND t.branch_id IN ?"
		args = append(args, branchIDs)
	}
	query += `
		GROUP BY DATE_TRUNC('day', t.occurred_at)
		ORDER BY day`

	var rows []DailyTrendRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, queryErr("daily sales trend", err)
	}
	return rows, nil
}

func (r *reportRepository) LedgerTotals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]LedgerTotalRow, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("type, category, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ?", tenantID).
		Where("occurred_at >= ? AND occurred_at <= ?", start, end)
	if len(branchIDs) > 0 {
		q = q.Where("branch_id IN ?", branchIDs)
	}
	var rows []LedgerTotalRow
	if err := q.Group("type, category").Order("type, category").Scan(&rows).Error; err != nil {
		return nil, queryErr("ledger aggregation", err)
	}
	return rows, nil
}

func (r *reportRepository) ShiftCashByBranch(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]ShiftCashRow, error) {
	q := r.db.WithContext(ctx).Model(&model.Shift{}).
		Select(`branch_id, COUNT(id) AS shift_count,
			COALESCE(SUM(initial_cash), 0) AS initial_total,
			COALESCE(SUM(expected_cash), 0) AS expected_total,
			COALESCE(SUM(final_cash), 0) AS final_total,
			COALESCE(SUM(cash_difference), 0) AS difference_total`).
		Where("tenant_id = ?", tenantID).
		Where("opened_at >= ? AND opened_at <= ?", start, end)
	if len(branchIDs) > 0 {
		q = q.Where("branch_id IN ?", branchIDs)
	}
	var rows []ShiftCashRow
	if err := q.Group("branch_id").Scan(&rows).Error; err != nil {
		return nil, queryErr("shift cash aggregation", err)
	}
	return rows, nil
}

func (r *reportRepository) ListShifts(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]model.Shift, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("opened_at >= ? AND opened_at <= ?", start, end)
	if len(branchIDs) > 0 {
		q = q.Where("branch_id IN ?", branchIDs)
	}
	var shifts []model.Shift
	if err := q.Order("opened_at").Find(&shifts).Error; err != nil {
		return nil, queryErr("shift listing", err)
	}
	return shifts, nil
}

// wastageScope applies the optional wastage filters as composable predicates.
func (r *reportRepository) wastageScope(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.WastageRecord{}).
		Where("wastage_records.tenant_id = ?", tenantID).
		Where("wastage_records.occurred_at >= ? AND wastage_records.occurred_at <= ?", filter.Start, filter.End)
	if len(filter.BranchIDs) > 0 {
		q = q.Where("wastage_records.branch_id IN ?", filter.BranchIDs)
	}
	if filter.CategoryID != nil {
		q = q.Where("wastage_records.category_id = ?", *filter.CategoryID)
	}
	if filter.ProductID != nil {
		q = q.Where("wastage_records.product_id = ?", *filter.ProductID)
	}
	if filter.WasteType != "" {
		q = q.Where("wastage_records.waste_type = ?", filter.WasteType)
	}
	return q
}

func (r *reportRepository) WastageByBranch(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) ([]WastageBranchRow, error) {
	var rows []WastageBranchRow
	err := r.wastageScope(ctx, tenantID, filter).
		Select(`branches.id AS branch_id, branches.name AS branch_name, branches.code AS branch_code,
			COALESCE(SUM(wastage_records.quantity), 0) AS total_quantity,
			COALESCE(SUM(wastage_records.quantity * wastage_records.cost_per_unit), 0) AS waste_value`).
		Joins("JOIN branches ON branches.id = wastage_records.branch_id").
		Group("branches.id, branches.name, branches.code").
		Order("branches.code").
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("branch wastage aggregation", err)
	}
	return rows, nil
}

func (r *reportRepository) WastageByProduct(ctx context.Context, tenantID uuid.UUID, filter WastageFilter, limit int) ([]WastageProductRow, error) {
	var rows []WastageProductRow
	err := r.wastageScope(ctx, tenantID, filter).
		Select(`product_id, product_name, category,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COALESCE(SUM(quantity * cost_per_unit), 0) AS waste_value`).
		Group("product_id, product_name, category").
		Order("waste_value DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("product wastage ranking", err)
	}
	return rows, nil
}

func (r *reportRepository) WastageByCategory(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) ([]WastageCategoryRow, error) {
	var rows []WastageCategoryRow
	err := r.wastageScope(ctx, tenantID, filter).
		Select(`category,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			COALESCE(SUM(quantity * cost_per_unit), 0) AS waste_value`).
		Group("category").
		Order("waste_value DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("category wastage aggregation", err)
	}
	return rows, nil
}

func (r *reportRepository) WastageDailyTrend(ctx context.Context, tenantID uuid.UUID, filter WastageFilter) ([]DailyTrendRow, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC('day', w.occurred_at), 'YYYY-MM-DD') AS day,
			COALESCE(SUM(w.quantity * w.cost_per_unit), 0) AS value,
			COUNT(w.id) AS row_count
		FROM wastage_records w
		WHERE w.tenant_id = ?
		  AND w.occurred_at >= ? AND w.occurred_at <= ?`
	args := []interface{}{tenantID, filter.Start, filter.End}
	if len(filter.BranchIDs) > 0 {
		query += " AND w.branch_id IN ?"
		args = append(args, filter.BranchIDs)
	}
	if filter.CategoryID != nil {
		query += " AND w.category_id = ?"
		args = append(args, *filter.CategoryID)
	}
	if filter.ProductID != nil {
		query += " AND w.product_id = ?"
		args = append(args, *filter.ProductID)
	}
	query += `
		GROUP BY DATE_TRUNC('day', w.occurred_at)
		ORDER BY day`

	var rows []DailyTrendRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, queryErr("daily wastage trend", err)
	}
	return rows, nil
}

func (r *reportRepository) SettlementTotals(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	type totalsRow struct {
		Payable    decimal.Decimal `gorm:"column:payable"`
		Receivable decimal.Decimal `gorm:"column:receivable"`
	}
	q := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("tenant_id = ?", tenantID).
		Where("status <> ?", model.SettlementCancelled).
		Where("created_at >= ? AND created_at <= ?", start, end)
	if len(branchIDs) > 0 {
		q = q.Select(
			`COALESCE(SUM(CASE WHEN from_branch_id IN ? THEN amount ELSE 0 END), 0) AS payable,
			 COALESCE(SUM(CASE WHEN to_branch_id IN ? THEN amount ELSE 0 END), 0) AS receivable`,
			branchIDs, branchIDs)
	} else {
		q = q.Select(`COALESCE(SUM(amount), 0) AS payable, COALESCE(SUM(amount), 0) AS receivable`)
	}
	var row totalsRow
	if err := q.Scan(&row).Error; err != nil {
		return decimal.Zero, decimal.Zero, queryErr("settlement totals", err)
	}
	return row.Payable, row.Receivable, nil
}

func (r *reportRepository) ListSettlementsInWindow(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID) ([]model.Settlement, error) {
	q := r.db.WithContext(ctx).
		Preload("FromBranch").
		Preload("ToBranch").
		Where("tenant_id = ?", tenantID).
		Where("status <> ?", model.SettlementCancelled).
		Where("created_at >= ? AND created_at <= ?", start, end)
	if len(branchIDs) > 0 {
		q = q.Where("from_branch_id IN ? OR to_branch_id IN ?", branchIDs, branchIDs)
	}
	var settlements []model.Settlement
	if err := q.Order("created_at").Find(&settlements).Error; err != nil {
		return nil, queryErr("settlement listing", err)
	}
	return settlements, nil
}

func (r *reportRepository) ListCompletedTransactions(ctx context.Context, tenantID uuid.UUID, start, end time.Time, branchIDs []uuid.UUID, limit int) ([]model.PosTransaction, error) {
	q := r.completedTx(ctx, tenantID, start, end, branchIDs)
	var txs []model.PosTransaction
	if err := q.Order("occurred_at").Limit(limit).Find(&txs).Error; err != nil {
		return nil, queryErr("transaction listing", err)
	}
	return txs, nil
}
