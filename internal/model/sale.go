package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the transaction record cross-referencing the receipt it was
// settled under. Created in the same DB transaction as the receipt.
type Sale struct {
	BaseModel
	ReceiptID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"receipt_id"`
	Receipt       *Receipt  `gorm:"foreignKey:ReceiptID" json:"receipt,omitempty"`
	ReceiptNumber string    `gorm:"type:varchar(32);not null" json:"receipt_number"`

	Customer string          `gorm:"type:varchar(255)" json:"customer,omitempty"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Date     time.Time       `gorm:"not null;index" json:"date"`

	BranchID *uuid.UUID `gorm:"type:uuid;index" json:"branch_id,omitempty"`
	Branch   *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`

	DeliveryMethod DeliveryMethod `gorm:"type:varchar(20);not null" json:"delivery_method"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
}
