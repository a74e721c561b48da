package model

import "time"

type Product struct {
	BaseModel
	SKU           string `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,sku"`
	Name          string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	MinStockLevel int    `gorm:"not null;default:0" json:"minStockLevel" validate:"gte=0"`

	Batches []Batch `json:"batches,omitempty"`
}

// ProductRow is the list-view projection. Batch quantities are summed into
// CurrentStock so the table renders without loading every batch.
type ProductRow struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	MinStockLevel int       `json:"minStockLevel"`
	CurrentStock  int       `json:"currentStock"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
