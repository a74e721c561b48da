package service

import (
	"time"

	"go-batch-inventory/internal/repository"
)

type DashboardService interface {
	GetStats() (*DashboardStats, error)
}

// DashboardStats is the overview card payload. All stock figures are in base
// units.
type DashboardStats struct {
	TotalProducts         int64 `json:"totalProducts"`
	TotalStockCount       int   `json:"totalStockCount"`
	LowStockProductsCount int   `json:"lowStockProductsCount"`
	ExpiredItemsCount     int64 `json:"expiredItemsCount"`
}

type dashboardService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
}

func NewDashboardService(pRepo repository.ProductRepository, bRepo repository.BatchRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, batchRepo: bRepo}
}

// GetStats replays the unit conversion across every batch to aggregate stock
// in base units. Reads are not taken in one snapshot; a dashboard tolerates
// the small staleness window.
func (s *dashboardService) GetStats() (*DashboardStats, error) {
	now := time.Now()

	totalProducts, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	expiredCount, err := s.batchRepo.CountExpired(now)
	if err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindAllWithUnit()
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindAllThresholds()
	if err != nil {
		return nil, err
	}

	stockByProduct := make(map[uint]int)
	totalStock := 0
	for i := range batches {
		b := &batches[i]
		baseQty := b.QtyRemaining * b.Unit.ConversionMultiplier()
		totalStock += baseQty
		stockByProduct[b.ProductID] += baseQty
	}

	lowStock := 0
	for _, p := range products {
		if stockByProduct[p.ID] < p.MinStockLevel {
			lowStock++
		}
	}

	return &DashboardStats{
		TotalProducts:         totalProducts,
		TotalStockCount:       totalStock,
		LowStockProductsCount: lowStock,
		ExpiredItemsCount:     expiredCount,
	}, nil
}
