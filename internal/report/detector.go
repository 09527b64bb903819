package report

import (
	"fmt"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discrepancy type constants
const (
	DiscrepancyCashDifference  = "cash_difference"
	DiscrepancyFinanceMismatch = "finance_mismatch"
	DiscrepancyHighWastage     = "high_wastage"
)

// Severity constants
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Thresholds carries every detector cutoff as explicit configuration so they
// are tenant-configurable and testable without code changes.
type Thresholds struct {
	CashDifferenceTolerance  decimal.Decimal // currency units; |shift diff| above this flags
	FinanceMismatchTolerance decimal.Decimal // currency units; strict-exceed semantics
	WastagePercent           decimal.Decimal // % over cohort average before a branch flags
}

// DefaultThresholds returns the documented defaults: 1,000 currency units cash
// tolerance, 100 units finance-mismatch tolerance, 10% wastage headroom.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CashDifferenceTolerance:  decimal.NewFromInt(1000),
		FinanceMismatchTolerance: decimal.NewFromInt(100),
		WastagePercent:           decimal.NewFromInt(10),
	}
}

// Discrepancy is one flagged finding. Difference and Threshold are always
// populated; severity is derived deterministically from them.
type Discrepancy struct {
	Type        string          `json:"type"`
	Severity    string          `json:"severity"`
	BranchID    *uuid.UUID      `json:"branch_id,omitempty"`
	Difference  decimal.Decimal `json:"difference"`
	Threshold   decimal.Decimal `json:"threshold"`
	Description string          `json:"description"`
}

// CheckCashDifference flags a cash difference whose absolute value exceeds the
// tolerance: high when above 10x the tolerance, else medium. Returns nil when
// within tolerance.
func CheckCashDifference(branchID uuid.UUID, difference decimal.Decimal, t Thresholds) *Discrepancy {
	abs := difference.Abs()
	if abs.Cmp(t.CashDifferenceTolerance) <= 0 {
		return nil
	}
	severity := SeverityMedium
	if abs.Cmp(t.CashDifferenceTolerance.Mul(decimal.NewFromInt(10))) > 0 {
		severity = SeverityHigh
	}
	id := branchID
	return &Discrepancy{
		Type:        DiscrepancyCashDifference,
		Severity:    severity,
		BranchID:    &id,
		Difference:  difference,
		Threshold:   t.CashDifferenceTolerance,
		Description: fmt.Sprintf("cash difference %s exceeds tolerance %s", difference.StringFixed(2), t.CashDifferenceTolerance.StringFixed(2)),
	}
}

// CheckFinanceMismatch compares the ledger income total against the
// POS-derived expected total (sales + tax - discount). The tolerance is
// strict-exceed: a deviation exactly at the tolerance is not flagged.
func CheckFinanceMismatch(ledgerIncome, expected decimal.Decimal, t Thresholds) *Discrepancy {
	deviation := ledgerIncome.Sub(expected)
	if deviation.Abs().Cmp(t.FinanceMismatchTolerance) <= 0 {
		return nil
	}
	return &Discrepancy{
		Type:        DiscrepancyFinanceMismatch,
		Severity:    SeverityHigh,
		Difference:  deviation,
		Threshold:   t.FinanceMismatchTolerance,
		Description: fmt.Sprintf("ledger income deviates from POS-derived total by %s", deviation.StringFixed(2)),
	}
}

// WastageBranchStat is a branch's waste value expressed against its sales.
type WastageBranchStat struct {
	BranchID   uuid.UUID
	BranchName string
	BranchCode string
	WasteValue decimal.Decimal
	SalesValue decimal.Decimal
	Percent    decimal.Decimal // 100 * waste / sales
}

// WastageAnomaly is a branch flagged by the statistical deviation rule.
type WastageAnomaly struct {
	BranchID         uuid.UUID       `json:"branch_id"`
	BranchName       string          `json:"branch_name"`
	BranchCode       string          `json:"branch_code"`
	WastePercent     decimal.Decimal `json:"waste_percent"`
	CohortAverage    decimal.Decimal `json:"cohort_average"`
	Cutoff           decimal.Decimal `json:"cutoff"`
	DeviationPercent decimal.Decimal `json:"deviation_percent"` // 100 * (value - average) / average
	Severity         string          `json:"severity"`
}

// DetectWastageAnomalies applies the statistical deviation rule: the cutoff is
// the cohort average of waste-percent-of-sales scaled by (1 + thresholdPercent/100).
// A branch flags only when its percentage strictly exceeds the cutoff and it
// has nonzero waste value; critical above 2x the cutoff, else warning.
// A zero cohort average means there is nothing to compare against, so nothing
// is flagged.
func DetectWastageAnomalies(stats []WastageBranchStat, thresholdPercent decimal.Decimal) (anomalies []WastageAnomaly, average, cutoff decimal.Decimal) {
	if len(stats) == 0 {
		return nil, decimal.Zero, decimal.Zero
	}

	sum := decimal.Zero
	for _, s := range stats {
		sum = sum.Add(s.Percent)
	}
	average = sum.Div(decimal.NewFromInt(int64(len(stats))))
	if average.IsZero() {
		return nil, average, decimal.Zero
	}

	hundred := decimal.NewFromInt(100)
	cutoff = average.Mul(decimal.NewFromInt(1).Add(thresholdPercent.Div(hundred)))
	critical := cutoff.Mul(decimal.NewFromInt(2))

	for _, s := range stats {
		if s.WasteValue.IsZero() || s.Percent.Cmp(cutoff) <= 0 {
			continue
		}
		severity := SeverityWarning
		if s.Percent.Cmp(critical) > 0 {
			severity = SeverityCritical
		}
		anomalies = append(anomalies, WastageAnomaly{
			BranchID:         s.BranchID,
			BranchName:       s.BranchName,
			BranchCode:       s.BranchCode,
			WastePercent:     s.Percent,
			CohortAverage:    average,
			Cutoff:           cutoff,
			DeviationPercent: s.Percent.Sub(average).Mul(hundred).DivRound(average, 2),
			Severity:         severity,
		})
	}
	return anomalies, average, cutoff
}

// OverallStatus classifies a reconciliation run from its discrepancy list:
// any high/critical finding requires attention, any finding at all means
// minor issues, otherwise the books are balanced.
func OverallStatus(discrepancies []Discrepancy) string {
	if len(discrepancies) == 0 {
		return model.ReconBalanced
	}
	for _, d := range discrepancies {
		if d.Severity == SeverityHigh || d.Severity == SeverityCritical {
			return model.ReconRequiresAttention
		}
	}
	return model.ReconMinorIssues
}
