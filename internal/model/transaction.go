package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction status constants. Only completed transactions count toward
// any financial aggregate
const (
	TxStatusCompleted = "completed"
	TxStatusPending   = "pending"
	TxStatusVoided    = "voided"
)

// Payment method constants
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentQR       = "qr"
	PaymentTransfer = "transfer"
)

// PosTransaction represents a point-of-sale sale ticket. Immutable once completed.
type PosTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch        *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	ShiftID       *uuid.UUID      `gorm:"type:uuid;index" json:"shift_id"`
	CustomerRef   *string         `gorm:"type:varchar(100);index" json:"customer_ref"` // phone/member code, nullable for walk-ins
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        string          `gorm:"type:varchar(20);not null;default:'completed';index" json:"status"`
	OccurredAt    time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
