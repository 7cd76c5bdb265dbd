package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is the canonical tenant record: an escrow balance plus an item
// collection. ItemCount only ever grows; the balance never goes
// negative; OwnerCapID is fixed at creation.
type Store struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerCapID   uuid.UUID `gorm:"column:owner_cap_id;type:uuid;not null"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	ItemCount    int64     `gorm:"column:item_count;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
