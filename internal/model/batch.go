package model

import "time"

type BatchStatus string

const (
	BatchActive   BatchStatus = "ACTIVE"
	BatchExpired  BatchStatus = "EXPIRED"
	BatchDepleted BatchStatus = "DEPLETED"
)

// Batch is a discrete lot of received stock. Quantities are expressed in the
// batch's current unit; a sale renormalizes touched batches to their base
// unit, so UnitID changes over the batch's life. UnitID is nullable because
// old batches predate the unit table.
type Batch struct {
	BaseModel
	ProductID    uint        `gorm:"not null;index" json:"product_id"`
	Product      Product     `json:"product,omitempty"`
	UnitID       *uint       `json:"unit_id"`
	Unit         *Unit       `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	QtyReceived  int         `gorm:"not null;default:0" json:"qty_received"`
	QtyRemaining int         `gorm:"not null;default:0" json:"qty_remaining"`
	Status       BatchStatus `gorm:"type:varchar(10);not null;default:'ACTIVE';index" json:"status"`
	ExpiresAt    time.Time   `gorm:"not null;index" json:"expires_at"`
}

// EffectiveStatus derives the real status from the batch's state as of now.
// The stored Status column is kept for indexed queries but can lag behind
// (nothing sweeps batches across the expiry boundary), so every read surface
// reports this derived value instead.
func (b *Batch) EffectiveStatus(now time.Time) BatchStatus {
	if b.QtyRemaining <= 0 {
		return BatchDepleted
	}
	if b.ExpiresAt.Before(now) {
		return BatchExpired
	}
	return b.Status
}

// BatchRow is the list-view projection with the owning product flattened in.
type BatchRow struct {
	ID           uint        `json:"id"`
	ProductID    uint        `json:"productId"`
	Name         string      `json:"name"`
	SKU          string      `json:"sku"`
	Status       BatchStatus `json:"status"`
	QtyReceived  int         `json:"qtyReceived"`
	QtyRemaining int         `json:"qtyRemaining"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}
