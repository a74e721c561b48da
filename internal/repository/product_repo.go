package repository

import (
	"go-batch-inventory/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindPage(q string, offset, limit int) ([]model.Product, int64, error)
	StockSums(ids []uint) (map[uint]int, error)
	Count() (int64, error)
	FindAllThresholds() ([]model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(product).Error
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

// FindPage returns one page of products matching q (case-insensitive on name
// and SKU), newest first, plus the total match count.
func (r *productRepo) FindPage(q string, offset, limit int) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{})
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

// StockSums aggregates qty_remaining per product for the given ids.
func (r *productRepo) StockSums(ids []uint) (map[uint]int, error) {
	sums := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return sums, nil
	}

	rows, err := r.db.Model(&model.Batch{}).
		Select("product_id, COALESCE(SUM(qty_remaining), 0)").
		Where("product_id IN ?", ids).
		Group("product_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID uint
		var sum int
		if err := rows.Scan(&productID, &sum); err != nil {
			return nil, err
		}
		sums[productID] = sum
	}
	return sums, rows.Err()
}

func (r *productRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

// FindAllThresholds loads id and min_stock_level for every product, enough
// for the low-stock dashboard check.
func (r *productRepo) FindAllThresholds() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Select("id", "min_stock_level").Find(&products).Error
	return products, err
}
