package report

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(code string, value int64) MetricRow {
	return MetricRow{
		BranchID:   uuid.New(),
		BranchName: "Branch " + code,
		BranchCode: code,
		Value:      decimal.NewFromInt(value),
	}
}

func TestRankThreeBranches(t *testing.T) {
	// 300 + 200 + 100 with deliberately shuffled input order
	rows := []MetricRow{row("B", 200), row("C", 100), row("A", 300)}

	ranked := Rank(rows)
	require.Len(t, ranked, 3)

	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	assert.Equal(t, "A", ranked[0].BranchCode)
	assert.Equal(t, "B", ranked[1].BranchCode)
	assert.Equal(t, "C", ranked[2].BranchCode)

	assert.True(t, ranked[0].GapToPrevious.IsZero())
	assert.Equal(t, "100", ranked[1].GapToPrevious.String())
	assert.Equal(t, "100", ranked[2].GapToPrevious.String())

	assert.Equal(t, "50.00", ranked[0].PercentOfTotal.StringFixed(2))
	assert.Equal(t, "33.33", ranked[1].PercentOfTotal.StringFixed(2))
	assert.Equal(t, "16.67", ranked[2].PercentOfTotal.StringFixed(2))
}

func TestRankInputOrderIrrelevant(t *testing.T) {
	a, b, c := row("A", 300), row("B", 200), row("C", 100)

	first := Rank([]MetricRow{a, b, c})
	second := Rank([]MetricRow{c, a, b})
	assert.Equal(t, first, second)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	rows := []MetricRow{row("B", 200), row("A", 300)}
	Rank(rows)
	assert.Equal(t, "B", rows[0].BranchCode)
}

func TestRankTieBreaksByBranchCode(t *testing.T) {
	rows := []MetricRow{row("Z", 100), row("A", 100), row("M", 100)}

	ranked := Rank(rows)
	assert.Equal(t, "A", ranked[0].BranchCode)
	assert.Equal(t, "M", ranked[1].BranchCode)
	assert.Equal(t, "Z", ranked[2].BranchCode)
	// Ranks stay strictly sequential even on ties
	assert.Equal(t, []int{1, 2, 3}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank})
	assert.True(t, ranked[1].GapToPrevious.IsZero())
}

func TestRankSingleAndEmpty(t *testing.T) {
	ranked := Rank([]MetricRow{row("A", 500)})
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.True(t, ranked[0].GapToPrevious.IsZero())
	assert.Equal(t, "100.00", ranked[0].PercentOfTotal.StringFixed(2))

	assert.Empty(t, Rank(nil))
}

func TestRankAllZeroValues(t *testing.T) {
	ranked := Rank([]MetricRow{row("A", 0), row("B", 0)})
	require.Len(t, ranked, 2)
	// Zero total must not divide
	assert.True(t, ranked[0].PercentOfTotal.IsZero())
	assert.True(t, ranked[1].PercentOfTotal.IsZero())
}

func TestPercentOfTotal(t *testing.T) {
	pct := PercentOfTotal(decimal.NewFromInt(1), decimal.NewFromInt(3))
	assert.Equal(t, "33.33", pct.StringFixed(2))

	assert.True(t, PercentOfTotal(decimal.NewFromInt(5), decimal.Zero).IsZero())
}

func TestSumCashVariance(t *testing.T) {
	total := SumCashVariance([]decimal.Decimal{
		decimal.NewFromInt(-500),
		decimal.NewFromInt(300),
		decimal.NewFromInt(-50),
	})
	assert.Equal(t, "-250", total.String())

	assert.True(t, SumCashVariance(nil).IsZero())
}
