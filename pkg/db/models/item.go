package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a sellable listing scoped to its store. Descriptive fields,
// price, category and total supply are immutable after creation;
// available and listed are the only mutable columns.
type Item struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null"`
	URL         string    `gorm:"column:url;not null"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Category    int       `gorm:"column:category;not null"`
	TotalSupply int       `gorm:"column:total_supply;not null"`
	Available   int       `gorm:"column:available;not null"`
	Listed      bool      `gorm:"column:listed;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
