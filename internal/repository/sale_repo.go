package repository

import (
	"time"

	"hypermarket-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, sale *model.Sale) error
	FindAll(branchID *uuid.UUID) ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	// GetSalesSummary aggregates sale counts and revenue per day.
	GetSalesSummary(startDate, endDate time.Time) ([]SalesSummaryData, error)
	GetRevenue(startDate, endDate time.Time) (decimal.Decimal, error)
}

// SalesSummaryData for chart data
type SalesSummaryData struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) CreateTx(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindAll(branchID *uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.Preload("Receipt").Preload("Branch").Preload("CreatedByUser")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	err := q.Order("date DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Receipt.Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Receipt").Preload("Branch").Preload("CreatedByUser").
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepo) GetSalesSummary(startDate, endDate time.Time) ([]SalesSummaryData, error) {
	var results []SalesSummaryData

	rows, err := r.db.Model(&model.Sale{}).
		Select(`
			DATE(date) as day,
			COUNT(*) as count,
			COALESCE(SUM(total), 0) as revenue
		`).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(date)").
		Order("day ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesSummaryData
		if err := rows.Scan(&data.Date, &data.Count, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *saleRepo) GetRevenue(startDate, endDate time.Time) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.Model(&model.Sale{}).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error
	return revenue, err
}
