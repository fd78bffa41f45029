package cart

import (
	"errors"

	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotSellable       = errors.New("product cannot be sold in its current status")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrLineNotFound      = errors.New("product is not in the cart")
)

// Line is one product entry in the in-progress sale: a product snapshot plus
// the requested quantity, bounded by the on-hand quantity at add time.
type Line struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// UnitPrice is the per-unit price charged for this line.
func (l Line) UnitPrice() decimal.Decimal {
	return l.Product.UnitPrice()
}

// Total is unit price * quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines keyed uniquely by product id. Adding an
// already-present product increments its line instead of duplicating it.
// Cart performs no I/O; stock bounds come from the product snapshots.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add inserts the product at quantity 1, or increments its existing line by 1.
// Rejected without state change when the product's status is not sellable,
// its on-hand quantity is zero, or the increment would exceed on-hand quantity.
func (c *Cart) Add(p model.Product) error {
	if !p.Status.Sellable() {
		return ErrNotSellable
	}
	if p.Quantity <= 0 {
		return ErrOutOfStock
	}

	if i := c.index(p.ID); i >= 0 {
		if c.lines[i].Quantity+1 > p.Quantity {
			return ErrInsufficientStock
		}
		// Refresh the snapshot so later bound checks see current stock
		c.lines[i].Product = p
		c.lines[i].Quantity++
		return nil
	}

	c.lines = append(c.lines, Line{Product: p, Quantity: 1})
	return nil
}

// UpdateQuantity sets a line's quantity. A quantity <= 0 behaves as Remove.
// A quantity beyond the snapshot's on-hand stock is rejected and the line is
// left unchanged.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	if quantity > c.lines[i].Product.Quantity {
		return ErrInsufficientStock
	}
	c.lines[i].Quantity = quantity
	return nil
}

// Remove deletes the line unconditionally. Absent ids are a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// TotalAmount sums unit price * quantity over all lines. Pure.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear drops all lines.
func (c *Cart) Clear() {
	c.lines = nil
}
