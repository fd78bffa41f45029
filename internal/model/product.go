package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus is the lifecycle state of a product batch.
// Transitions are decided server-side; clients only mirror it.
type ProductStatus string

const (
	StatusInWarehouse ProductStatus = "in_warehouse"
	StatusInStore     ProductStatus = "in_store"
	StatusSold        ProductStatus = "sold"
	StatusDefective   ProductStatus = "defective"
	StatusReturned    ProductStatus = "returned"
)

// Sellable reports whether a product in this status may be added to a cart.
func (s ProductStatus) Sellable() bool {
	return s == StatusInWarehouse || s == StatusInStore
}

type Product struct {
	BaseModel
	Name    string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Barcode *string `gorm:"type:varchar(64);uniqueIndex" json:"barcode,omitempty"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	BranchID   *uuid.UUID `gorm:"type:uuid;index" json:"branch_id,omitempty"`
	Branch     *Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty" validate:"-"`

	// Price is the unit cost price; MarketPrice is the optional sale price
	// charged at the register when present.
	Price       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"price"`
	MarketPrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"market_price,omitempty"`

	Quantity int           `gorm:"not null;default:0" json:"quantity"`
	Status   ProductStatus `gorm:"type:varchar(20);not null;default:'in_store'" json:"status" validate:"required,oneof=in_warehouse in_store sold defective returned"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty" validate:"-"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty" validate:"-"`
}

// UnitPrice is the price charged per unit at checkout: the market (sale)
// price when set, the cost price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.MarketPrice != nil {
		return *p.MarketPrice
	}
	return p.Price
}

// CategoryName returns the category label, or empty when uncategorized.
func (p *Product) CategoryName() string {
	if p.Category != nil {
		return p.Category.Name
	}
	return ""
}

// MatchesSearch reports whether the free-text term matches the product's
// name, id or barcode by case-insensitive substring.
func (p *Product) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.ID.String()), needle) {
		return true
	}
	if p.Barcode != nil && strings.Contains(strings.ToLower(*p.Barcode), needle) {
		return true
	}
	return false
}
