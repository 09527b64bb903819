package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerType enum constants
const (
	LedgerIncome  = "income"
	LedgerExpense = "expense"
)

// LedgerEntry is an append-only finance ledger row. Entries are never updated
// after insert; corrections are posted as new entries.
type LedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch        *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Type          string          `gorm:"type:varchar(10);not null;index" json:"type"` // income, expense
	Category      string          `gorm:"type:varchar(100);not null" json:"category"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	SettlementID  *uuid.UUID      `gorm:"type:uuid;index" json:"settlement_id"`
	TransactionID *uuid.UUID      `gorm:"type:uuid;index" json:"transaction_id"`
	Description   string          `gorm:"type:text" json:"description"`
	OccurredAt    time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
