package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WasteType enum constants
const (
	WasteSpoilage = "spoilage"
	WasteError    = "error"
	WasteTheft    = "theft"
	WasteExpired  = "expired"
)

// WastageRecord tracks recorded loss of inventory value. Product name and
// category are captured at write time so reports survive catalog edits.
type WastageRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"branch_id"`
	Branch      *Branch         `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost_per_unit"`
	WasteType   string          `gorm:"type:varchar(20);not null;index" json:"waste_type"` // spoilage, error, theft, expired
	Reason      string          `gorm:"type:text" json:"reason"`
	OccurredAt  time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at"`
}
