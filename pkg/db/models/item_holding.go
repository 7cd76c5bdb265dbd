package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemHolding is a buyer-owned copy of an item minted at purchase
// time. It snapshots the listing so later edits to the store never
// rewrite what the buyer received.
type ItemHolding struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ItemID      uuid.UUID `gorm:"column:item_id;type:uuid;not null;index"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	Owner       string    `gorm:"column:owner;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	URL         string    `gorm:"column:url;not null"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Category    int       `gorm:"column:category;not null"`
	AcquiredAt  time.Time `gorm:"column:acquired_at;autoCreateTime"`
}
