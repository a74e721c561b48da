package repository

import (
	"go-batch-inventory/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.Transaction) error
	FindPage(q string, offset, limit int) ([]model.Transaction, int64, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create appends one ledger line. The ledger is append-only; there are no
// update or delete methods on purpose.
func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(transaction).Error
}

func (r *transactionRepo) FindPage(q string, offset, limit int) ([]model.Transaction, int64, error) {
	query := r.db.Model(&model.Transaction{}).
		Joins("JOIN products ON products.id = transactions.product_id")
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(products.name) LIKE LOWER(?) OR LOWER(products.sku) LIKE LOWER(?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []model.Transaction
	err := query.Preload("Product").Preload("Batch").
		Order("transactions.created_at DESC, transactions.id DESC").
		Offset(offset).Limit(limit).
		Find(&transactions).Error
	return transactions, total, err
}
