package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift represents one cash-register session at a branch. CashDifference is
// persisted at close time as final_cash - expected_cash.
type Shift struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch         *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	CashierName    string          `gorm:"type:varchar(255)" json:"cashier_name"`
	OpenedAt       time.Time       `gorm:"not null;index" json:"opened_at"`
	ClosedAt       *time.Time      `gorm:"index" json:"closed_at"`
	InitialCash    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"initial_cash"`
	ExpectedCash   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"expected_cash"`
	FinalCash      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"final_cash"`
	CashDifference decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"cash_difference"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
