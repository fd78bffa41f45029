package repository

import (
	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository interface {
	// CreateTx inserts the receipt and its items inside tx.
	CreateTx(tx *gorm.DB, receipt *model.Receipt) error
	FindAll(branchID *uuid.UUID) ([]model.Receipt, error)
	FindByID(id uuid.UUID) (*model.Receipt, error)
	FindByNumber(number string) (*model.Receipt, error)
	FindByIdempotencyKey(key string) (*model.Receipt, error)
}

type receiptRepo struct {
	db *gorm.DB
}

func NewReceiptRepo(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db}
}

func (r *receiptRepo) CreateTx(tx *gorm.DB, receipt *model.Receipt) error {
	return tx.Create(receipt).Error
}

func (r *receiptRepo) FindAll(branchID *uuid.UUID) ([]model.Receipt, error) {
	var receipts []model.Receipt
	q := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Branch")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	err := q.Order("issued_at DESC").Find(&receipts).Error
	return receipts, err
}

func (r *receiptRepo) FindByID(id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Branch").First(&receipt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepo) FindByNumber(number string) (*model.Receipt, error) {
	var receipt model.Receipt
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&receipt, "number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepo) FindByIdempotencyKey(key string) (*model.Receipt, error) {
	var receipt model.Receipt
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&receipt, "idempotency_key = ?", key).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}
