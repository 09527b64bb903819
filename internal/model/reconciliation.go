package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reconciliation overall status constants
const (
	ReconBalanced          = "balanced"
	ReconMinorIssues       = "minor_issues"
	ReconRequiresAttention = "requires_attention"
)

// ReconciliationRecord is an append-only snapshot of one reconciliation run.
// One row per run, never mutated after insert.
type ReconciliationRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID         *uuid.UUID      `gorm:"type:uuid;index" json:"branch_id"` // nil for all-branch runs
	PeriodStart      time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd        time.Time       `gorm:"not null" json:"period_end"`
	PosTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"pos_total"`
	LedgerIncome     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"ledger_income"`
	CashDifference   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cash_difference"`
	DiscrepancyCount int             `gorm:"not null;default:0" json:"discrepancy_count"`
	Status           string          `gorm:"type:varchar(30);not null" json:"status"`
	Payload          string          `gorm:"type:jsonb" json:"payload"` // full serialized result
	RunBy            *uuid.UUID      `gorm:"type:uuid" json:"run_by"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
}
