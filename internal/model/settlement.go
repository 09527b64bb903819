package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settlement status constants
const (
	SettlementPending   = "pending"
	SettlementApproved  = "approved"
	SettlementPaid      = "paid"
	SettlementCancelled = "cancelled"
	SettlementOverdue   = "overdue"
)

// Settlement action constants
const (
	SettlementActionApprove     = "approve"
	SettlementActionPay         = "pay"
	SettlementActionCancel      = "cancel"
	SettlementActionMarkOverdue = "mark_overdue"
)

// settlementTransitions is the full lifecycle table. paid and cancelled are
// terminal; an overdue settlement may still be paid or cancelled but never
// re-approved.
var settlementTransitions = map[string]map[string]string{
	SettlementPending: {
		SettlementActionApprove: SettlementApproved,
		SettlementActionCancel:  SettlementCancelled,
	},
	SettlementApproved: {
		SettlementActionPay:         SettlementPaid,
		SettlementActionCancel:      SettlementCancelled,
		SettlementActionMarkOverdue: SettlementOverdue,
	},
	SettlementOverdue: {
		SettlementActionPay:    SettlementPaid,
		SettlementActionCancel: SettlementCancelled,
	},
}

// NextSettlementStatus returns the status an action leads to from the current
// status, or false if the transition is not permitted.
func NextSettlementStatus(current, action string) (string, bool) {
	next, ok := settlementTransitions[current][action]
	return next, ok
}

// SettlementActions lists the actions accepted from a given status.
func SettlementActions(current string) []string {
	table, ok := settlementTransitions[current]
	if !ok {
		return nil
	}
	actions := make([]string, 0, len(table))
	for _, a := range []string{SettlementActionApprove, SettlementActionPay, SettlementActionCancel, SettlementActionMarkOverdue} {
		if _, allowed := table[a]; allowed {
			actions = append(actions, a)
		}
	}
	return actions
}

// Settlement is an inter-branch money-owed record created when goods or
// services move between branches.
type Settlement struct {
	ID               uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SettlementNo     string              `gorm:"type:varchar(30);uniqueIndex;not null" json:"settlement_no"`
	FromBranchID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"from_branch_id"`
	FromBranch       *Branch             `gorm:"foreignKey:FromBranchID" json:"from_branch,omitempty"`
	ToBranchID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"to_branch_id"`
	ToBranch         *Branch             `gorm:"foreignKey:ToBranchID" json:"to_branch,omitempty"`
	Amount           decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"amount"`
	Status           string              `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DueDate          *time.Time          `json:"due_date"`
	Notes            string              `gorm:"type:text" json:"notes"`
	PaymentMethod    string              `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentReference string              `gorm:"type:varchar(100)" json:"payment_reference"`
	PaidAt           *time.Time          `json:"paid_at"`
	History          []SettlementHistory `gorm:"foreignKey:SettlementID" json:"history,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// SettlementHistory is the append-only audit trail of status transitions.
// Rows are write-once and never mutated after insert.
type SettlementHistory struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SettlementID uuid.UUID  `gorm:"type:uuid;not null;index" json:"settlement_id"`
	FromStatus   string     `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus     string     `gorm:"type:varchar(20);not null" json:"to_status"`
	Action       string     `gorm:"type:varchar(20);not null" json:"action"`
	ActorID      *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Notes        string     `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}
