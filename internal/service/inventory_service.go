package service

import (
	"errors"
	"fmt"
	"time"

	"go-batch-inventory/internal/apperr"
	"go-batch-inventory/internal/model"
	"go-batch-inventory/internal/repository"
	"go-batch-inventory/internal/ws"
	"go-batch-inventory/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryService interface {
	Sell(req *SellRequest, actorID uint) (*SaleResult, error)
	ReceiveBatch(req *ReceiveBatchRequest, actorID uint) (*model.Batch, error)
	CreateProduct(req *CreateProductRequest, actorID uint) (*model.Product, error)
}

// SellRequest asks to sell qtyToSell base units of a product, drawn FEFO
// across its batches.
type SellRequest struct {
	ProductID uint `json:"productId"`
	QtyToSell int  `json:"qtyToSell"`
}

// SaleResult reports where the sold quantity came from.
type SaleResult struct {
	Allocations []Allocation `json:"allocations"`
}

// ReceiveBatchRequest records a stock receipt as a new batch.
type ReceiveBatchRequest struct {
	ProductID   uint   `json:"productId" validate:"required,gt=0"`
	UnitID      uint   `json:"unitId" validate:"required,gt=0"`
	QtyReceived int    `json:"qtyReceived" validate:"gte=0"`
	ExpiresAt   string `json:"expiresAt" validate:"required"`
}

// CreateProductRequest creates a product, optionally with an opening batch.
type CreateProductRequest struct {
	SKU           string               `json:"sku" validate:"required,sku"`
	Name          string               `json:"name" validate:"required"`
	MinStockLevel int                  `json:"minStockLevel" validate:"gte=0"`
	InitialStock  *InitialStockRequest `json:"initialStock"`
}

type InitialStockRequest struct {
	UnitID      uint   `json:"unitId" validate:"required,gt=0"`
	QtyReceived int    `json:"qtyReceived" validate:"gte=0"`
	ExpiresAt   string `json:"expiresAt" validate:"required"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	unitRepo    repository.UnitRepository
	batchRepo   repository.BatchRepository
	txRepo      repository.TransactionRepository
	db          *gorm.DB
	wsHub       *ws.Hub
	log         *zap.Logger
}

func NewInventoryService(
	pRepo repository.ProductRepository,
	uRepo repository.UnitRepository,
	bRepo repository.BatchRepository,
	tRepo repository.TransactionRepository,
	db *gorm.DB,
	hub *ws.Hub,
	log *zap.Logger,
) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		unitRepo:    uRepo,
		batchRepo:   bRepo,
		txRepo:      tRepo,
		db:          db,
		wsHub:       hub,
		log:         log,
	}
}

// Sell allocates qtyToSell base units across the product's batches, soonest
// expiry first, and commits the plan atomically. Selection and commit are
// separate steps over shared batch rows, so every batch write is conditioned
// on the state read during selection; a concurrent sale makes the commit fail
// with a retryable conflict instead of overselling.
func (s *inventoryService) Sell(req *SellRequest, actorID uint) (*SaleResult, error) {
	fields := map[string]string{}
	if req.ProductID == 0 {
		fields["productId"] = "Product is required."
	}
	if req.QtyToSell <= 0 {
		fields["qtyToSell"] = "Amount to sell must be a positive integer."
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidation(fields)
	}

	if _, err := s.productRepo.FindByID(req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("productId", "Product")
		}
		return nil, err
	}

	now := time.Now()
	batches, err := s.batchRepo.FindEligibleForSale(req.ProductID, now)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, apperr.ErrNoEligibleBatches
	}

	plan, err := planAllocations(batches, req.QtyToSell)
	if err != nil {
		if errors.Is(err, apperr.ErrUnitIntegrity) {
			s.log.Error("sale aborted on corrupt unit reference",
				zap.Uint("product_id", req.ProductID))
		}
		return nil, err
	}

	if err := s.commitSale(plan, req.ProductID, req.QtyToSell, actorID); err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "sale_committed",
		Payload: map[string]interface{}{
			"product_id":  req.ProductID,
			"qty":         req.QtyToSell,
			"allocations": plan.Allocations,
		},
		ActorID: actorID,
		Message: fmt.Sprintf("Sold %d units of product %d across %d batch(es)",
			req.QtyToSell, req.ProductID, len(plan.Allocations)),
	})

	return &SaleResult{Allocations: plan.Allocations}, nil
}

// commitSale applies the planned batch rewrites and appends the OUT ledger
// line in one transaction. Either everything lands or nothing does.
func (s *inventoryService) commitSale(plan *plannedSale, productID uint, qty int, actorID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, upd := range plan.Updates {
			affected, err := s.batchRepo.ApplyAllocation(tx, upd)
			if err != nil {
				return err
			}
			if affected == 0 {
				// Zero rows: either the batch row vanished or its state
				// moved under us. Tell the caller which.
				exists, err := s.batchRepo.Exists(tx, upd.BatchID)
				if err != nil {
					return err
				}
				if !exists {
					return apperr.NotFound("batchId", "Batch")
				}
				return apperr.ErrStaleBatch
			}
		}

		return s.txRepo.Create(tx, &model.Transaction{
			Type:        model.TxOut,
			ProductID:   productID,
			Qty:         qty,
			CreatedByID: actorID,
		})
	})
}

// ReceiveBatch stores a stock receipt: a new ACTIVE batch plus its IN ledger
// line, atomically.
func (s *inventoryService) ReceiveBatch(req *ReceiveBatchRequest, actorID uint) (*model.Batch, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(fieldErrors(errs))
	}

	expiresAt, err := parseExpiry(req.ExpiresAt, time.Now())
	if err != nil {
		return nil, apperr.NewValidation(map[string]string{"expiresAt": err.Error()})
	}

	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("productId", "Product")
		}
		return nil, err
	}
	unit, err := s.unitRepo.FindByID(req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("unitId", "Unit")
		}
		return nil, err
	}

	batch := &model.Batch{
		ProductID:    product.ID,
		UnitID:       &unit.ID,
		QtyReceived:  req.QtyReceived,
		QtyRemaining: req.QtyReceived,
		Status:       model.BatchActive,
		ExpiresAt:    expiresAt,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.batchRepo.Create(tx, batch); err != nil {
			return err
		}
		return s.txRepo.Create(tx, &model.Transaction{
			Type:        model.TxIn,
			ProductID:   product.ID,
			BatchID:     &batch.ID,
			Qty:         req.QtyReceived,
			CreatedByID: actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	batch.Product = *product
	batch.Unit = unit

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "batch_received",
		Payload: map[string]interface{}{
			"batch_id":     batch.ID,
			"product_id":   product.ID,
			"sku":          product.SKU,
			"qty_received": req.QtyReceived,
			"expires_at":   expiresAt,
		},
		ActorID: actorID,
		Message: fmt.Sprintf("Received %d x %s for '%s'", req.QtyReceived, unit.Code, product.Name),
	})

	return batch, nil
}

// CreateProduct registers a product; when initial stock is supplied the
// opening batch and its IN ledger line are created in the same transaction.
func (s *inventoryService) CreateProduct(req *CreateProductRequest, actorID uint) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.NewValidation(fieldErrors(errs))
	}

	existing, err := s.productRepo.FindBySKU(req.SKU)
	if err == nil && existing.ID != 0 {
		return nil, apperr.NewValidation(map[string]string{"sku": "SKU already exists."})
	}

	var expiresAt time.Time
	var unit *model.Unit
	if req.InitialStock != nil {
		expiresAt, err = parseExpiry(req.InitialStock.ExpiresAt, time.Now())
		if err != nil {
			return nil, apperr.NewValidation(map[string]string{"expiresAt": err.Error()})
		}
		unit, err = s.unitRepo.FindByID(req.InitialStock.UnitID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("unitId", "Unit")
			}
			return nil, err
		}
	}

	product := &model.Product{
		SKU:           req.SKU,
		Name:          req.Name,
		MinStockLevel: req.MinStockLevel,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		if req.InitialStock == nil {
			return nil
		}

		batch := &model.Batch{
			ProductID:    product.ID,
			UnitID:       &unit.ID,
			QtyReceived:  req.InitialStock.QtyReceived,
			QtyRemaining: req.InitialStock.QtyReceived,
			Status:       model.BatchActive,
			ExpiresAt:    expiresAt,
		}
		if err := s.batchRepo.Create(tx, batch); err != nil {
			return err
		}
		return s.txRepo.Create(tx, &model.Transaction{
			Type:        model.TxIn,
			ProductID:   product.ID,
			BatchID:     &batch.ID,
			Qty:         req.InitialStock.QtyReceived,
			CreatedByID: actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "product_created",
		Payload: map[string]interface{}{
			"product_id": product.ID,
			"sku":        product.SKU,
			"name":       product.Name,
		},
		ActorID: actorID,
		Message: fmt.Sprintf("Created product '%s'", product.Name),
	})

	return product, nil
}

// parseExpiry accepts a date (2006-01-02) or RFC3339 timestamp and enforces
// the receipt rule: the expiry must be tomorrow or later, day precision.
func parseExpiry(value string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, errors.New("Expiry date is invalid.")
		}
	}

	year, month, day := now.Date()
	tomorrow := time.Date(year, month, day, 0, 0, 0, 0, parsed.Location()).AddDate(0, 0, 1)
	if parsed.Before(tomorrow) {
		return time.Time{}, errors.New("Expiry date must be tomorrow or later.")
	}
	return parsed, nil
}
