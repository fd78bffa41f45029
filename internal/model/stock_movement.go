package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MoveIn  MovementType = "IN"  // warehouse inflow
	MoveOut MovementType = "OUT" // warehouse outflow / sold at register
)

// StockMovement logs every stock change. Checkout writes one OUT movement
// per cart line, referencing the receipt it settled under.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	Product   Product      `json:"product" validate:"-"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=IN OUT"`
	Quantity  int          `gorm:"not null" json:"quantity" validate:"required,gt=0"`

	// Snapshot of unit price * quantity at movement time
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	ReceiptID *uuid.UUID `gorm:"type:uuid;index" json:"receipt_id,omitempty"`
	Note      string     `json:"note"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
}
