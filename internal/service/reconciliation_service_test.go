package service

import (
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPosSummary(t *testing.T) {
	rows := []repository.BranchSalesRow{
		{SalesTotal: decimal.NewFromInt(10000), TaxTotal: decimal.NewFromInt(800), DiscountTotal: decimal.NewFromInt(300), TransactionCount: 42},
		{SalesTotal: decimal.NewFromInt(5000), TaxTotal: decimal.NewFromInt(400), DiscountTotal: decimal.NewFromInt(100), TransactionCount: 18},
	}

	summary, expected := buildPosSummary(rows)

	assert.Equal(t, "15000.00", summary.SalesTotal)
	assert.Equal(t, "1200.00", summary.TaxTotal)
	assert.Equal(t, "400.00", summary.DiscountTotal)
	assert.Equal(t, int64(60), summary.TransactionCount)
	// expected income = sales + tax - discount
	assert.Equal(t, "15800.00", summary.ExpectedIncome)
	assert.Equal(t, "15800", expected.String())
}

func TestBuildPosSummaryEmpty(t *testing.T) {
	summary, expected := buildPosSummary(nil)
	assert.Equal(t, "0.00", summary.SalesTotal)
	assert.Equal(t, int64(0), summary.TransactionCount)
	assert.True(t, expected.IsZero())
}

func TestBuildFinanceSummary(t *testing.T) {
	rows := []repository.LedgerTotalRow{
		{Type: model.LedgerIncome, Category: "pos_sales", Total: decimal.NewFromInt(15800)},
		{Type: model.LedgerIncome, Category: "inter_branch_settlement", Total: decimal.NewFromInt(2000)},
		{Type: model.LedgerExpense, Category: "rent", Total: decimal.NewFromInt(5000)},
	}

	summary, income := buildFinanceSummary(rows)

	assert.Equal(t, "17800.00", summary.IncomeTotal)
	assert.Equal(t, "5000.00", summary.ExpenseTotal)
	assert.Equal(t, "12800.00", summary.Net)
	assert.Equal(t, "17800", income.String())
	require.Len(t, summary.ByCategory, 3)
	assert.Equal(t, "pos_sales", summary.ByCategory[0].Category)
}

func TestBuildCashEntriesZeroFillsSilentBranches(t *testing.T) {
	active := model.Branch{ID: uuid.New(), Name: "Downtown", Code: "DT01"}
	silent := model.Branch{ID: uuid.New(), Name: "Airport", Code: "AP01"}
	branches := []model.Branch{active, silent}

	rows := []repository.ShiftCashRow{
		{
			BranchID:        active.ID,
			ShiftCount:      3,
			ExpectedTotal:   decimal.NewFromInt(30000),
			FinalTotal:      decimal.NewFromInt(29500),
			DifferenceTotal: decimal.NewFromInt(-500),
		},
	}

	entries, totals := buildCashEntries(branches, rows)

	// One entry per branch in scope, even with no shift rows
	require.Len(t, entries, 2)
	assert.Equal(t, "DT01", entries[0].BranchCode)
	assert.Equal(t, int64(3), entries[0].ShiftCount)
	assert.Equal(t, "-500.00", entries[0].Difference)

	assert.Equal(t, "AP01", entries[1].BranchCode)
	assert.Equal(t, int64(0), entries[1].ShiftCount)
	assert.Equal(t, "0.00", entries[1].ExpectedCash)
	assert.Equal(t, "0.00", entries[1].ActualCash)
	assert.Equal(t, "0.00", entries[1].Difference)

	assert.Equal(t, "30000", totals.expected.String())
	assert.Equal(t, "29500", totals.actual.String())
	assert.Equal(t, "-500", totals.difference.String())
	require.Len(t, totals.perBranch, 2)
	assert.True(t, totals.perBranch[1].difference.IsZero())
}

func TestBuildCashEntriesNoBranches(t *testing.T) {
	entries, totals := buildCashEntries(nil, nil)
	assert.Empty(t, entries)
	assert.True(t, totals.expected.IsZero())
	assert.Empty(t, totals.perBranch)
}

func TestBuildSettlementLines(t *testing.T) {
	from := &model.Branch{Name: "Downtown"}
	to := &model.Branch{Name: "Airport"}
	settlements := []model.Settlement{
		{
			ID:           uuid.New(),
			SettlementNo: "STL-20250514-00001",
			FromBranch:   from,
			ToBranch:     to,
			Amount:       decimal.NewFromInt(2500),
			Status:       model.SettlementApproved,
		},
	}

	lines := buildSettlementLines(settlements)
	require.Len(t, lines, 1)
	assert.Equal(t, "STL-20250514-00001", lines[0].SettlementNo)
	assert.Equal(t, "Downtown", lines[0].FromBranch)
	assert.Equal(t, "Airport", lines[0].ToBranch)
	assert.Equal(t, "2500.00", lines[0].Amount)
	assert.Equal(t, model.SettlementApproved, lines[0].Status)
}
