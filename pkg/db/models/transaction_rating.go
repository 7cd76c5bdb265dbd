package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionRating is an immutable buyer-issued rating. StoreID and
// ItemID are references only.
type TransactionRating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Review    string    `gorm:"column:review;not null"`
	Buyer     string    `gorm:"column:buyer;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
