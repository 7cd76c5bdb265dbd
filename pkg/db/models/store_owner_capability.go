package models

import (
	"time"

	"github.com/google/uuid"
)

// StoreOwnerCapability is the single credential record bound to a store
// at creation. The StoreID field is a lookup association, not
// ownership; the record itself never changes.
type StoreOwnerCapability struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
