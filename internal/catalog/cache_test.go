package catalog

import (
	"fmt"
	"testing"

	"hypermarket-pos/internal/model"
	"hypermarket-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Category{}, &model.Branch{}, &model.Product{}))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, barcode string, categoryID *uuid.UUID, quantity int) model.Product {
	t.Helper()

	p := model.Product{
		Name:       name,
		CategoryID: categoryID,
		Price:      decimal.NewFromInt(100),
		Quantity:   quantity,
		Status:     model.StatusInStore,
	}
	if barcode != "" {
		p.Barcode = &barcode
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func newTestCache(t *testing.T, db *gorm.DB) *Cache {
	t.Helper()

	cache := NewCache(repository.NewProductRepo(db), repository.NewCategoryRepo(db), nil)
	require.NoError(t, cache.Refresh())
	return cache
}

func TestProductsFilterBySearch(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	seedProduct(t, db, "Skim Milk 1L", "222", nil, 5)
	seedProduct(t, db, "Dark Chocolate", "333", nil, 5)
	cache := newTestCache(t, db)

	milk := cache.Products(Filter{Search: "milk"})
	assert.Len(t, milk, 2)

	byBarcode := cache.Products(Filter{Search: "333"})
	require.Len(t, byBarcode, 1)
	assert.Equal(t, "Dark Chocolate", byBarcode[0].Name)

	assert.Len(t, cache.Products(Filter{}), 3)
	assert.Empty(t, cache.Products(Filter{Search: "no such product"}))
}

func TestProductsFilterByCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	dairy := model.Category{Name: "Dairy"}
	require.NoError(t, db.Create(&dairy).Error)

	seedProduct(t, db, "Whole Milk 1L", "111", &dairy.ID, 5)
	seedProduct(t, db, "Dark Chocolate", "333", nil, 5)
	cache := newTestCache(t, db)

	got := cache.Products(Filter{CategoryID: &dairy.ID})
	require.Len(t, got, 1)
	assert.Equal(t, "Whole Milk 1L", got[0].Name)
}

func TestProductsFilterByBranch(t *testing.T) {
	db := setupCatalogTestDB(t)
	north := model.Branch{Name: "North Store"}
	require.NoError(t, db.Create(&north).Error)

	inBranch := model.Product{
		Name:     "Local Stock",
		BranchID: &north.ID,
		Price:    decimal.NewFromInt(100),
		Quantity: 5,
		Status:   model.StatusInStore,
	}
	require.NoError(t, db.Create(&inBranch).Error)
	seedProduct(t, db, "Unassigned Stock", "", nil, 5)
	cache := newTestCache(t, db)

	got := cache.Products(Filter{BranchID: &north.ID})
	require.Len(t, got, 1)
	assert.Equal(t, "Local Stock", got[0].Name)
}

func TestResolvePrefersBarcodeOverName(t *testing.T) {
	db := setupCatalogTestDB(t)
	// The barcode of one product is a substring of another product's name
	byCode := seedProduct(t, db, "Batteries AA", "4870", nil, 5)
	seedProduct(t, db, "Cable 4870mm", "999", nil, 5)
	cache := newTestCache(t, db)

	got, err := cache.Resolve("4870")
	require.NoError(t, err)
	assert.Equal(t, byCode.ID, got.ID)
}

func TestResolveByID(t *testing.T) {
	db := setupCatalogTestDB(t)
	p := seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	cache := newTestCache(t, db)

	got, err := cache.Resolve(p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestResolveByNameSubstring(t *testing.T) {
	db := setupCatalogTestDB(t)
	p := seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	cache := newTestCache(t, db)

	got, err := cache.Resolve("whole milk")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestResolveUnknownCode(t *testing.T) {
	db := setupCatalogTestDB(t)
	seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	cache := newTestCache(t, db)

	_, err := cache.Resolve("does-not-exist")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = cache.Resolve("   ")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	db := setupCatalogTestDB(t)
	p := seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	cache := newTestCache(t, db)

	got, ok := cache.Get(p.ID)
	require.True(t, ok)
	got.Quantity = 0

	again, ok := cache.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, 5, again.Quantity)

	_, ok = cache.Get(uuid.New())
	assert.False(t, ok)
}

func TestApplyDecrement(t *testing.T) {
	db := setupCatalogTestDB(t)
	p := seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	cache := newTestCache(t, db)

	cache.ApplyDecrement(p.ID, 3, model.StatusInStore)
	got, _ := cache.Get(p.ID)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, model.StatusInStore, got.Status)

	cache.ApplyDecrement(p.ID, 2, model.StatusSold)
	got, _ = cache.Get(p.ID)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, model.StatusSold, got.Status)
}

func TestUpsert(t *testing.T) {
	db := setupCatalogTestDB(t)
	p := seedProduct(t, db, "Whole Milk 1L", "111", nil, 5)
	cache := newTestCache(t, db)

	p.Quantity = 9
	cache.Upsert(p)
	got, _ := cache.Get(p.ID)
	assert.Equal(t, 9, got.Quantity)

	fresh := model.Product{
		Name:     "New Arrival",
		Price:    decimal.NewFromInt(10),
		Quantity: 1,
		Status:   model.StatusInWarehouse,
	}
	fresh.ID = uuid.New()
	cache.Upsert(fresh)
	_, ok := cache.Get(fresh.ID)
	assert.True(t, ok)
	assert.Len(t, cache.Products(Filter{}), 2)
}
