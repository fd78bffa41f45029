package service

import (
	"time"

	"hypermarket-pos/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetDashboardStats() (*repository.DashboardStats, error)
	GetSalesSummary(startDate, endDate time.Time) (*SalesSummaryResponse, error)
}

// SalesSummaryResponse bundles the per-day series with the period revenue.
type SalesSummaryResponse struct {
	Days    []repository.SalesSummaryData `json:"days"`
	Revenue decimal.Decimal               `json:"revenue"`
}

type dashboardService struct {
	movementRepo repository.MovementRepository
	saleRepo     repository.SaleRepository
}

func NewDashboardService(movementRepo repository.MovementRepository, saleRepo repository.SaleRepository) DashboardService {
	return &dashboardService{movementRepo: movementRepo, saleRepo: saleRepo}
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.movementRepo.GetStockMovement(startDate, endDate)
}

func (s *dashboardService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.movementRepo.GetDashboardStats()
}

func (s *dashboardService) GetSalesSummary(startDate, endDate time.Time) (*SalesSummaryResponse, error) {
	days, err := s.saleRepo.GetSalesSummary(startDate, endDate)
	if err != nil {
		return nil, err
	}
	revenue, err := s.saleRepo.GetRevenue(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &SalesSummaryResponse{Days: days, Revenue: revenue}, nil
}
