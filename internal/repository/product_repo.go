package repository

import (
	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(branchID *uuid.UUID) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByBarcode(barcode string) (*model.Product, error)
	Update(product *model.Product) error
	// UpdateStock runs against the provided tx so stock changes stay inside
	// the caller's transaction boundary.
	UpdateStock(tx *gorm.DB, id uuid.UUID, newQuantity int, status model.ProductStatus, updatedBy string) error
	// LockByID reads the product row FOR UPDATE inside tx.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(branchID *uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Preload("Category").Preload("Branch")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").Preload("Branch").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(barcode string) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").First(&product, "barcode = ?", barcode).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newQuantity int, status model.ProductStatus, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   newQuantity,
			"status":     status,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
