package model

import "time"

// BaseModel handles the integer primary key and standard timestamps.
// IDs are plain auto-increment integers because every API contract
// exchanges numeric identifiers.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
