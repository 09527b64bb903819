package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metric selector constants for leaderboards
const (
	MetricSales          = "sales"
	MetricTransactions   = "transactions"
	MetricCustomers      = "customers"
	MetricAvgTransaction = "avg_transaction"
)

// MetricRow is one branch's value for the selected metric.
type MetricRow struct {
	BranchID   uuid.UUID
	BranchName string
	BranchCode string
	Value      decimal.Decimal
}

// RankedEntry is a MetricRow with its position in the cohort.
type RankedEntry struct {
	MetricRow
	Rank           int
	GapToPrevious  decimal.Decimal // value(rank-1) - value(rank); zero for rank 1
	PercentOfTotal decimal.Decimal // 100 * value / cohort total, 2dp
}

// Rank sorts rows descending by value and assigns ranks 1..N with
// gap-to-previous and percentage-of-total. Equal values are ordered by branch
// code then id ascending so the ranking is deterministic. Pure: input order
// does not affect the result and the input slice is not modified.
func Rank(rows []MetricRow) []RankedEntry {
	sorted := make([]MetricRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := sorted[i].Value.Cmp(sorted[j].Value)
		if cmp != 0 {
			return cmp > 0
		}
		if sorted[i].BranchCode != sorted[j].BranchCode {
			return sorted[i].BranchCode < sorted[j].BranchCode
		}
		return sorted[i].BranchID.String() < sorted[j].BranchID.String()
	})

	total := decimal.Zero
	for _, row := range sorted {
		total = total.Add(row.Value)
	}

	entries := make([]RankedEntry, len(sorted))
	for i, row := range sorted {
		gap := decimal.Zero
		if i > 0 {
			gap = sorted[i-1].Value.Sub(row.Value)
		}
		entries[i] = RankedEntry{
			MetricRow:      row,
			Rank:           i + 1,
			GapToPrevious:  gap,
			PercentOfTotal: PercentOfTotal(row.Value, total),
		}
	}
	return entries
}

// PercentOfTotal computes 100 * part / whole rounded to 2 decimal places,
// returning zero (not NaN) when the whole is zero.
func PercentOfTotal(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).DivRound(whole, 2)
}

// SumCashVariance totals per-shift cash differences (final - expected) as a
// plain unweighted sum.
func SumCashVariance(differences []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range differences {
		total = total.Add(d)
	}
	return total
}
