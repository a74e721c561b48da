package service

import (
	"strings"
	"time"

	"go-batch-inventory/internal/apperr"
	"go-batch-inventory/internal/model"
	"go-batch-inventory/internal/repository"
)

// CatalogService serves the read-only list views: paginated, searchable
// tables over products, batches, the transaction ledger and the unit
// reference data.
type CatalogService interface {
	ListProducts(page, pageSize int, q string) ([]model.ProductRow, model.PageInfo, error)
	ListBatches(page, pageSize int, q, status string) ([]model.BatchRow, model.PageInfo, error)
	ListTransactions(page, pageSize int, q string) ([]model.TransactionRow, model.PageInfo, error)
	ListUnits() ([]UnitOption, error)
}

// UnitOption is the minimal unit projection for form dropdowns.
type UnitOption struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
}

type catalogService struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	txRepo      repository.TransactionRepository
	unitRepo    repository.UnitRepository
}

func NewCatalogService(
	pRepo repository.ProductRepository,
	bRepo repository.BatchRepository,
	tRepo repository.TransactionRepository,
	uRepo repository.UnitRepository,
) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		batchRepo:   bRepo,
		txRepo:      tRepo,
		unitRepo:    uRepo,
	}
}

// normalizePage clamps paging input: page >= 1, pageSize in [1, MaxPageSize].
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = model.DefaultPageSize
	}
	if pageSize > model.MaxPageSize {
		pageSize = model.MaxPageSize
	}
	return page, pageSize
}

func (s *catalogService) ListProducts(page, pageSize int, q string) ([]model.ProductRow, model.PageInfo, error) {
	page, pageSize = normalizePage(page, pageSize)
	q = strings.TrimSpace(q)

	products, total, err := s.productRepo.FindPage(q, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, model.PageInfo{}, err
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	sums, err := s.productRepo.StockSums(ids)
	if err != nil {
		return nil, model.PageInfo{}, err
	}

	rows := make([]model.ProductRow, len(products))
	for i, p := range products {
		rows[i] = model.ProductRow{
			ID:            p.ID,
			Name:          p.Name,
			SKU:           p.SKU,
			MinStockLevel: p.MinStockLevel,
			CurrentStock:  sums[p.ID],
			UpdatedAt:     p.UpdatedAt,
		}
	}
	return rows, model.NewPageInfo(page, pageSize, total), nil
}

func (s *catalogService) ListBatches(page, pageSize int, q, status string) ([]model.BatchRow, model.PageInfo, error) {
	page, pageSize = normalizePage(page, pageSize)
	q = strings.TrimSpace(q)

	var statusFilter model.BatchStatus
	if trimmed := strings.ToUpper(strings.TrimSpace(status)); trimmed != "" {
		switch model.BatchStatus(trimmed) {
		case model.BatchActive, model.BatchExpired, model.BatchDepleted:
			statusFilter = model.BatchStatus(trimmed)
		default:
			return nil, model.PageInfo{}, apperr.NewValidation(map[string]string{"status": "Invalid status filter."})
		}
	}

	batches, total, err := s.batchRepo.FindPage(q, statusFilter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, model.PageInfo{}, err
	}

	now := time.Now()
	rows := make([]model.BatchRow, len(batches))
	for i := range batches {
		b := &batches[i]
		rows[i] = model.BatchRow{
			ID:           b.ID,
			ProductID:    b.ProductID,
			Name:         b.Product.Name,
			SKU:          b.Product.SKU,
			Status:       b.EffectiveStatus(now),
			QtyReceived:  b.QtyReceived,
			QtyRemaining: b.QtyRemaining,
			ExpiresAt:    b.ExpiresAt,
			UpdatedAt:    b.UpdatedAt,
		}
	}
	return rows, model.NewPageInfo(page, pageSize, total), nil
}

func (s *catalogService) ListTransactions(page, pageSize int, q string) ([]model.TransactionRow, model.PageInfo, error) {
	page, pageSize = normalizePage(page, pageSize)
	q = strings.TrimSpace(q)

	transactions, total, err := s.txRepo.FindPage(q, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, model.PageInfo{}, err
	}

	rows := make([]model.TransactionRow, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		row := model.TransactionRow{
			ID:        t.ID,
			Type:      t.Type,
			Qty:       t.Qty,
			CreatedAt: t.CreatedAt,
			ProductID: t.ProductID,
			Name:      t.Product.Name,
			SKU:       t.Product.SKU,
			BatchID:   t.BatchID,
		}
		if t.Batch != nil {
			expiresAt := t.Batch.ExpiresAt
			row.BatchExpiresAt = &expiresAt
		}
		rows[i] = row
	}
	return rows, model.NewPageInfo(page, pageSize, total), nil
}

func (s *catalogService) ListUnits() ([]UnitOption, error) {
	units, err := s.unitRepo.FindAll()
	if err != nil {
		return nil, err
	}
	options := make([]UnitOption, len(units))
	for i, u := range units {
		options[i] = UnitOption{ID: u.ID, Code: u.Code}
	}
	return options, nil
}
