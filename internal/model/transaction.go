package model

import "time"

type TransactionType string

const (
	TxIn     TransactionType = "IN"
	TxOut    TransactionType = "OUT"
	TxAdjust TransactionType = "ADJUST"
)

// Transaction is an append-only ledger line. Rows are created atomically
// alongside the batch mutation they describe and are never updated or
// deleted afterwards.
type Transaction struct {
	BaseModel
	Type        TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	Product     Product         `json:"product,omitempty"`
	BatchID     *uint           `json:"batch_id"`
	Batch       *Batch          `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	Qty         int             `gorm:"not null" json:"qty"`
	CreatedByID uint            `gorm:"not null" json:"created_by_id"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// TransactionRow is the ledger list projection with product and batch
// references flattened for display.
type TransactionRow struct {
	ID             uint            `json:"id"`
	Type           TransactionType `json:"type"`
	Qty            int             `json:"qty"`
	CreatedAt      time.Time       `json:"createdAt"`
	ProductID      uint            `json:"productId"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	BatchID        *uint           `json:"batchId"`
	BatchExpiresAt *time.Time      `json:"batchExpiresAt"`
}
