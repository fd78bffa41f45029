package service

import (
	"fmt"
	"testing"

	"hypermarket-pos/internal/cart"
	"hypermarket-pos/internal/catalog"
	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"
	"hypermarket-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type checkoutFixture struct {
	db      *gorm.DB
	cache   *catalog.Cache
	service CheckoutService
}

func setupCheckout(t *testing.T) *checkoutFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Category{}, &model.Branch{}, &model.Product{},
		&model.Receipt{}, &model.ReceiptItem{}, &model.Sale{}, &model.StockMovement{},
		&model.User{}, &model.Privilege{}, &model.Role{},
	))

	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	cache := catalog.NewCache(productRepo, categoryRepo, nil)
	require.NoError(t, cache.Refresh())

	hub := ws.NewHub()
	go hub.Run()

	svc := NewCheckoutService(
		db,
		productRepo,
		repository.NewReceiptRepo(db),
		repository.NewSaleRepo(db),
		repository.NewMovementRepo(db),
		cache,
		hub,
	)
	return &checkoutFixture{db: db, cache: cache, service: svc}
}

func (f *checkoutFixture) seedProduct(t *testing.T, name string, barcode string, price int64, quantity int) model.Product {
	t.Helper()

	p := model.Product{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: quantity,
		Status:   model.StatusInStore,
	}
	if barcode != "" {
		p.Barcode = &barcode
	}
	require.NoError(t, f.db.Create(&p).Error)
	require.NoError(t, f.cache.Refresh())
	return p
}

func (f *checkoutFixture) count(t *testing.T, value interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, f.db.Model(value).Count(&n).Error)
	return n
}

func (f *checkoutFixture) productQuantity(t *testing.T, id uuid.UUID) (int, model.ProductStatus) {
	t.Helper()

	var p model.Product
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p.Quantity, p.Status
}

func saleDetails() *CompleteSaleRequest {
	return &CompleteSaleRequest{
		Customer:       "Walk-in",
		DeliveryMethod: model.DeliverySelfPickup,
		PaymentMethod:  model.PaymentCash,
	}
}

const testCashier = "cashier-1"

func TestCompleteSaleEmptyCart(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.service.CompleteSale(testCashier, saleDetails())

	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, StateIdle, f.service.Session(testCashier).State)
	assert.Zero(t, f.count(t, &model.Receipt{}))
}

func TestAddToCartUnknownProduct(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.service.AddToCart(testCashier, uuid.New())

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestScanAddsResolvedProduct(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Whole Milk 1L", "4006381333931", 100, 5)

	view, err := f.service.Scan(testCashier, "4006381333931")
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, p.ID, view.Lines[0].Product.ID)
	assert.Equal(t, StateSaleOpen, view.State)

	_, err = f.service.Scan(testCashier, "unknown-code")
	assert.ErrorIs(t, err, catalog.ErrCodeNotFound)
}

func TestCartEditingBlockedWhileConfirmPending(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 5)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	_, err = f.service.AddToCart(testCashier, p.ID)
	assert.ErrorIs(t, err, ErrAwaitingConfirm)
	_, err = f.service.UpdateQuantity(testCashier, p.ID, 2)
	assert.ErrorIs(t, err, ErrAwaitingConfirm)
	_, err = f.service.RemoveFromCart(testCashier, p.ID)
	assert.ErrorIs(t, err, ErrAwaitingConfirm)

	// Cancel steps back to cart review with the cart intact
	view, err := f.service.CancelSale(testCashier)
	require.NoError(t, err)
	assert.Equal(t, StateSaleOpen, view.State)
	assert.Len(t, view.Lines, 1)
}

func TestCancelSaleWithoutPendingConfirm(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.service.CancelSale(testCashier)
	assert.ErrorIs(t, err, ErrNothingToConfirm)
}

func TestConfirmSaleWithoutPendingConfirm(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.service.ConfirmSale(testCashier, "Jane", nil, "")
	assert.ErrorIs(t, err, ErrNothingToConfirm)
}

func TestCompleteSaleRejectsStaleQuantity(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 2)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)

	// Stock moved since the lines were added
	f.cache.ApplyDecrement(p.ID, 1, model.StatusInStore)

	_, err = f.service.CompleteSale(testCashier, saleDetails())
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)
	assert.Equal(t, StateSaleOpen, f.service.Session(testCashier).State)
}

func TestConfirmSaleSuccess(t *testing.T) {
	f := setupCheckout(t)
	a := f.seedProduct(t, "Item A", "", 100, 5)
	b := f.seedProduct(t, "Item B", "", 50, 1)

	_, err := f.service.AddToCart(testCashier, a.ID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(testCashier, a.ID)
	require.NoError(t, err)
	view, err := f.service.AddToCart(testCashier, b.ID)
	require.NoError(t, err)
	require.True(t, view.Total.Equal(decimal.NewFromInt(250)), "got %s", view.Total)

	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	receipt, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "key-success")
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.Number)
	assert.NotEmpty(t, receipt.ReturnCode)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(250)))
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, "Item A", receipt.Items[0].Name)
	assert.Equal(t, 1, receipt.Items[0].Position)
	assert.Equal(t, "Item B", receipt.Items[1].Name)
	assert.Equal(t, 2, receipt.Items[1].Position)

	// Exactly one receipt, one sale, one OUT movement per line
	assert.EqualValues(t, 1, f.count(t, &model.Receipt{}))
	assert.EqualValues(t, 1, f.count(t, &model.Sale{}))
	assert.EqualValues(t, 2, f.count(t, &model.StockMovement{}))

	var sale model.Sale
	require.NoError(t, f.db.First(&sale).Error)
	assert.Equal(t, receipt.ID, sale.ReceiptID)
	assert.Equal(t, receipt.Number, sale.ReceiptNumber)
	assert.True(t, sale.Total.Equal(receipt.Total))

	// Stock decremented; the fully sold line flips to sold
	qty, status := f.productQuantity(t, a.ID)
	assert.Equal(t, 3, qty)
	assert.Equal(t, model.StatusInStore, status)
	qty, status = f.productQuantity(t, b.ID)
	assert.Equal(t, 0, qty)
	assert.Equal(t, model.StatusSold, status)

	// Catalog snapshot mirrors the committed decrements
	cached, _ := f.cache.Get(a.ID)
	assert.Equal(t, 3, cached.Quantity)
	cached, _ = f.cache.Get(b.ID)
	assert.Equal(t, 0, cached.Quantity)
	assert.Equal(t, model.StatusSold, cached.Status)

	// Session is back to a clean register
	session := f.service.Session(testCashier)
	assert.Equal(t, StateIdle, session.State)
	assert.Empty(t, session.Lines)
	assert.True(t, session.Total.IsZero())
}

func TestConfirmSaleFailureRollsBackEverything(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 2)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	// Another register sold one unit after the confirmation dialog opened
	require.NoError(t, f.db.Model(&model.Product{}).
		Where("id = ?", p.ID).
		Update("quantity", 1).Error)

	_, err = f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "key-fail")
	assert.ErrorIs(t, err, cart.ErrInsufficientStock)

	// Nothing committed
	assert.Zero(t, f.count(t, &model.Receipt{}))
	assert.Zero(t, f.count(t, &model.Sale{}))
	assert.Zero(t, f.count(t, &model.StockMovement{}))
	qty, _ := f.productQuantity(t, p.ID)
	assert.Equal(t, 1, qty)

	// The cart survives for a retry
	session := f.service.Session(testCashier)
	assert.Equal(t, StateSaleOpen, session.State)
	require.Len(t, session.Lines, 1)
	assert.Equal(t, 2, session.Lines[0].Quantity)
	assert.True(t, session.Total.Equal(decimal.NewFromInt(200)))
}

func TestConfirmSaleIdempotentRetry(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 5)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	first, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "retry-key")
	require.NoError(t, err)

	// The operator re-submits the same confirmation, e.g. after a lost
	// response. The same key must return the committed receipt untouched.
	_, err = f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	second, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "retry-key")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Number, second.Number)
	assert.EqualValues(t, 1, f.count(t, &model.Receipt{}))
	assert.EqualValues(t, 1, f.count(t, &model.Sale{}))

	// The duplicate confirm must not decrement stock again
	qty, _ := f.productQuantity(t, p.ID)
	assert.Equal(t, 4, qty)
	assert.Equal(t, StateIdle, f.service.Session(testCashier).State)
}

func TestConfirmReplayAfterLostResponse(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 5)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	first, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "replay-key")
	require.NoError(t, err)
	require.Equal(t, StateIdle, f.service.Session(testCashier).State)

	// The response was lost in transit; the register replays the identical
	// confirm even though the session is already Idle.
	second, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "replay-key")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Number, second.Number)
	assert.EqualValues(t, 1, f.count(t, &model.Receipt{}))
	assert.EqualValues(t, 1, f.count(t, &model.Sale{}))
	qty, _ := f.productQuantity(t, p.ID)
	assert.Equal(t, 4, qty)
	assert.Equal(t, StateIdle, f.service.Session(testCashier).State)
}

func TestConfirmReplayKeepsNewCartIntact(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 5)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)
	_, err = f.service.CompleteSale(testCashier, saleDetails())
	require.NoError(t, err)

	first, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "stale-key")
	require.NoError(t, err)

	// The next sale is already being rung up when a stale replay arrives
	_, err = f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)

	replayed, err := f.service.ConfirmSale(testCashier, "Jane Cashier", nil, "stale-key")
	require.NoError(t, err)
	assert.Equal(t, first.ID, replayed.ID)

	// The in-progress sale must survive the replay untouched
	session := f.service.Session(testCashier)
	assert.Equal(t, StateSaleOpen, session.State)
	require.Len(t, session.Lines, 1)
	assert.Equal(t, 1, session.Lines[0].Quantity)
}

func TestAbandonSaleDropsSession(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 5)

	_, err := f.service.AddToCart(testCashier, p.ID)
	require.NoError(t, err)

	view := f.service.AbandonSale(testCashier)

	assert.Equal(t, StateIdle, view.State)
	assert.Empty(t, view.Lines)

	// Abandoning never touches the database
	qty, _ := f.productQuantity(t, p.ID)
	assert.Equal(t, 5, qty)
}

func TestSessionsAreIsolatedPerCashier(t *testing.T) {
	f := setupCheckout(t)
	p := f.seedProduct(t, "Item A", "", 100, 5)

	_, err := f.service.AddToCart("cashier-a", p.ID)
	require.NoError(t, err)

	other := f.service.Session("cashier-b")
	assert.Equal(t, StateIdle, other.State)
	assert.Empty(t, other.Lines)
}
