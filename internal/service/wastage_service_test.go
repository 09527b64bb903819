package service

import (
	"testing"

	"backend/internal/report"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWastageStatsJoinsWasteAndSales(t *testing.T) {
	branchA := uuid.New()
	branchB := uuid.New()

	salesRows := []repository.BranchSalesRow{
		{BranchID: branchA, BranchName: "Downtown", BranchCode: "DT01", SalesTotal: decimal.NewFromInt(10000)},
		{BranchID: branchB, BranchName: "Airport", BranchCode: "AP01", SalesTotal: decimal.NewFromInt(20000)},
	}
	wasteRows := []repository.WastageBranchRow{
		{BranchID: branchA, BranchName: "Downtown", BranchCode: "DT01", WasteValue: decimal.NewFromInt(500)},
	}

	stats := buildWastageStats(wasteRows, salesRows)
	require.Len(t, stats, 2)

	assert.Equal(t, "DT01", stats[0].BranchCode)
	assert.Equal(t, "500", stats[0].WasteValue.String())
	assert.Equal(t, "5.00", stats[0].Percent.StringFixed(2))

	// Branch with sales but no waste stays in the cohort at 0%
	assert.Equal(t, "AP01", stats[1].BranchCode)
	assert.True(t, stats[1].WasteValue.IsZero())
	assert.True(t, stats[1].Percent.IsZero())
}

func TestBuildWastageStatsWasteWithoutSales(t *testing.T) {
	branch := uuid.New()
	wasteRows := []repository.WastageBranchRow{
		{BranchID: branch, BranchName: "Depot", BranchCode: "DP01", WasteValue: decimal.NewFromInt(300)},
	}

	stats := buildWastageStats(wasteRows, nil)
	require.Len(t, stats, 1)
	assert.Equal(t, "300", stats[0].WasteValue.String())
	// No sales means percent stays zero rather than dividing by zero
	assert.True(t, stats[0].Percent.IsZero())
}

func TestBuildWastageStatsEmpty(t *testing.T) {
	assert.Empty(t, buildWastageStats(nil, nil))
}

func TestBuildInsights(t *testing.T) {
	branch := uuid.New()
	stats := []report.WastageBranchStat{
		{BranchID: branch, BranchName: "Downtown", BranchCode: "DT01", WasteValue: decimal.NewFromInt(900), SalesValue: decimal.NewFromInt(10000), Percent: decimal.NewFromInt(9)},
		{BranchID: uuid.New(), BranchName: "Airport", BranchCode: "AP01", WasteValue: decimal.NewFromInt(200), SalesValue: decimal.NewFromInt(10000), Percent: decimal.NewFromInt(2)},
	}
	anomalies := []report.WastageAnomaly{{BranchID: branch, BranchName: "Downtown"}}
	categories := []WastageCategoryDTO{{Category: "dairy", Percent: "64.00"}}

	insights := buildInsights(stats, anomalies, categories, decimal.RequireFromString("5.5"))

	require.Len(t, insights, 4)
	assert.Contains(t, insights[0], "5.50%")
	assert.Contains(t, insights[1], "Downtown")
	assert.Contains(t, insights[2], "1 branch (Downtown)")
	assert.Contains(t, insights[3], "dairy")
}

func TestBuildInsightsNoAnomalies(t *testing.T) {
	insights := buildInsights(nil, nil, nil, decimal.Zero)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0], "No branch exceeds")
}
