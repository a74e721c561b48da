package repository

import (
	"time"

	"go-batch-inventory/internal/model"

	"gorm.io/gorm"
)

type BatchRepository interface {
	Create(tx *gorm.DB, batch *model.Batch) error
	FindEligibleForSale(productID uint, now time.Time) ([]model.Batch, error)
	FindPage(q string, status model.BatchStatus, offset, limit int) ([]model.Batch, int64, error)
	ApplyAllocation(tx *gorm.DB, upd AllocationUpdate) (int64, error)
	Exists(tx *gorm.DB, id uint) (bool, error)
	CountExpired(now time.Time) (int64, error)
	FindAllWithUnit() ([]model.Batch, error)
}

// AllocationUpdate rewrites one batch after a sale touched it. The write is
// conditioned on the unit and remaining quantity observed at plan time; a
// zero row count means another writer got there first.
type AllocationUpdate struct {
	BatchID uint

	// Observed state the update is conditioned on.
	PrevUnitID       *uint
	PrevQtyRemaining int

	// Renormalized state, expressed in base units.
	NewUnitID       *uint
	NewQtyRemaining int
	NewQtyReceived  int
	NewStatus       model.BatchStatus
}

type batchRepo struct {
	db *gorm.DB
}

func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db}
}

func (r *batchRepo) Create(tx *gorm.DB, batch *model.Batch) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(batch).Error
}

// FindEligibleForSale returns the FEFO-ordered batches a sale may draw from:
// active, unexpired as of now, with stock remaining. Ties on expiry break by
// id so the order is deterministic.
func (r *batchRepo) FindEligibleForSale(productID uint, now time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.Preload("Unit").
		Where("product_id = ? AND status = ? AND expires_at >= ? AND qty_remaining > 0",
			productID, model.BatchActive, now).
		Order("expires_at ASC, id ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) FindPage(q string, status model.BatchStatus, offset, limit int) ([]model.Batch, int64, error) {
	query := r.db.Model(&model.Batch{}).
		Joins("JOIN products ON products.id = batches.product_id")
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(products.name) LIKE LOWER(?) OR LOWER(products.sku) LIKE LOWER(?)", pattern, pattern)
	}
	if status != "" {
		query = query.Where("batches.status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var batches []model.Batch
	err := query.Preload("Product").
		Order("batches.created_at DESC, batches.id DESC").
		Offset(offset).Limit(limit).
		Find(&batches).Error
	return batches, total, err
}

// ApplyAllocation performs the optimistic-concurrency write for one planned
// batch mutation and reports how many rows matched.
func (r *batchRepo) ApplyAllocation(tx *gorm.DB, upd AllocationUpdate) (int64, error) {
	query := tx.Model(&model.Batch{}).Where("id = ? AND qty_remaining = ?", upd.BatchID, upd.PrevQtyRemaining)
	if upd.PrevUnitID == nil {
		query = query.Where("unit_id IS NULL")
	} else {
		query = query.Where("unit_id = ?", *upd.PrevUnitID)
	}

	res := query.Updates(map[string]interface{}{
		"unit_id":       upd.NewUnitID,
		"qty_remaining": upd.NewQtyRemaining,
		"qty_received":  upd.NewQtyReceived,
		"status":        upd.NewStatus,
	})
	return res.RowsAffected, res.Error
}

func (r *batchRepo) Exists(tx *gorm.DB, id uint) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&model.Batch{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// CountExpired counts batches past their expiry, whether or not the stored
// status column caught up yet.
func (r *batchRepo) CountExpired(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Batch{}).
		Where("status = ? OR expires_at < ?", model.BatchExpired, now).
		Count(&count).Error
	return count, err
}

func (r *batchRepo) FindAllWithUnit() ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.Preload("Unit").Find(&batches).Error
	return batches, err
}
