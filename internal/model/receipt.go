package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeliveryMethod string

const (
	DeliverySelfPickup DeliveryMethod = "self_pickup"
	DeliveryCourier    DeliveryMethod = "delivery"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit"
)

// Receipt is the immutable record of a completed sale. It is created exactly
// once at checkout confirmation and never updated afterwards.
type Receipt struct {
	BaseModel
	Number string `gorm:"type:varchar(32);uniqueIndex;not null" json:"number"`

	// IdempotencyKey guards against duplicate receipts when an operator
	// re-confirms a checkout after a failure. Unique when present.
	IdempotencyKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`

	CashierName string  `gorm:"type:varchar(255);not null" json:"cashier_name"`
	CashierID   *string `gorm:"type:varchar(255)" json:"cashier_id,omitempty"`
	Customer    string  `gorm:"type:varchar(255)" json:"customer,omitempty"`

	BranchID *uuid.UUID `gorm:"type:uuid;index" json:"branch_id,omitempty"`
	Branch   *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`

	DeliveryMethod DeliveryMethod `gorm:"type:varchar(20);not null" json:"delivery_method" validate:"required,oneof=self_pickup delivery"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=cash card credit"`

	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	ReturnCode string          `gorm:"type:varchar(16);not null" json:"return_code"`
	IssuedAt   time.Time       `gorm:"not null" json:"issued_at"`

	Items []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"items"`
}

// ReceiptItem is one ordered line of a receipt. Position preserves the cart
// line order for rendering.
type ReceiptItem struct {
	BaseModel
	ReceiptID uuid.UUID `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`

	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Category string `gorm:"type:varchar(100)" json:"category,omitempty"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	Position  int             `gorm:"not null" json:"position"`
}
