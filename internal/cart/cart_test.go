package cart

import (
	"testing"

	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellableProduct(name string, price int64, quantity int) model.Product {
	p := model.Product{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: quantity,
		Status:   model.StatusInStore,
	}
	p.ID = uuid.New()
	return p
}

func TestAddFirstUnit(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 5)

	require.NoError(t, c.Add(p))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, p.ID, lines[0].Product.ID)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestAddSameProductIncrementsLine(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 5)

	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestAddRejectsUnsellableStatus(t *testing.T) {
	for _, status := range []model.ProductStatus{model.StatusSold, model.StatusDefective, model.StatusReturned} {
		c := New()
		p := sellableProduct("Broken TV", 500, 3)
		p.Status = status

		err := c.Add(p)

		assert.ErrorIs(t, err, ErrNotSellable, "status %s", status)
		assert.True(t, c.IsEmpty())
	}
}

func TestAddRejectsZeroStock(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 0)

	err := c.Add(p)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.True(t, c.IsEmpty())
}

func TestAddRejectsIncrementBeyondStock(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 2)

	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))
	err := c.Add(p)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	// The rejected add must not disturb the existing line
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 10)
	require.NoError(t, c.Add(p))

	require.NoError(t, c.UpdateQuantity(p.ID, 7))
	assert.Equal(t, 7, c.Lines()[0].Quantity)

	err := c.UpdateQuantity(p.ID, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 7, c.Lines()[0].Quantity)

	err = c.UpdateQuantity(uuid.New(), 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 10)
	require.NoError(t, c.Add(p))

	require.NoError(t, c.UpdateQuantity(p.ID, 0))

	assert.True(t, c.IsEmpty())
}

func TestRemoveIsUnconditional(t *testing.T) {
	c := New()
	p := sellableProduct("Milk 1L", 100, 10)
	require.NoError(t, c.Add(p))

	c.Remove(p.ID)
	assert.True(t, c.IsEmpty())

	// Removing an absent product is a no-op
	c.Remove(p.ID)
	assert.True(t, c.IsEmpty())
}

func TestTotalAmount(t *testing.T) {
	c := New()
	a := sellableProduct("Item A", 100, 10)
	b := sellableProduct("Item B", 50, 10)

	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))

	assert.True(t, c.TotalAmount().Equal(decimal.NewFromInt(250)),
		"got %s", c.TotalAmount())
}

func TestTotalUsesMarketPriceWhenSet(t *testing.T) {
	c := New()
	p := sellableProduct("Discounted Soap", 100, 10)
	market := decimal.NewFromInt(80)
	p.MarketPrice = &market

	require.NoError(t, c.Add(p))

	assert.True(t, c.TotalAmount().Equal(market))
}

func TestFailedAddKeepsTotalUnchanged(t *testing.T) {
	c := New()
	a := sellableProduct("Item A", 100, 1)
	require.NoError(t, c.Add(a))
	before := c.TotalAmount()

	assert.Error(t, c.Add(a))

	assert.True(t, c.TotalAmount().Equal(before))
}

func TestLinesPreserveInsertionOrder(t *testing.T) {
	c := New()
	a := sellableProduct("First", 10, 5)
	b := sellableProduct("Second", 20, 5)
	d := sellableProduct("Third", 30, 5)

	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))
	require.NoError(t, c.Add(d))
	require.NoError(t, c.Add(b))

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "First", lines[0].Product.Name)
	assert.Equal(t, "Second", lines[1].Product.Name)
	assert.Equal(t, "Third", lines[2].Product.Name)
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(sellableProduct("Item", 10, 5)))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.True(t, c.TotalAmount().IsZero())
}
