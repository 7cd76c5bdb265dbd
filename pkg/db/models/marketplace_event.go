package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
)

// MarketplaceEvent is one row of the append-only audit trail. Rows are
// written in the same transaction as the mutation they record and are
// never updated or deleted.
type MarketplaceEvent struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;primaryKey"`
	StoreID     uuid.UUID                  `gorm:"column:store_id;type:uuid;not null;index"`
	ItemID      *uuid.UUID                 `gorm:"column:item_id;type:uuid"`
	Type        enums.MarketplaceEventType `gorm:"column:type;not null"`
	Quantity    int                        `gorm:"column:quantity;not null;default:0"`
	AmountCents int64                      `gorm:"column:amount_cents;not null;default:0"`
	Actor       string                     `gorm:"column:actor;not null;default:''"`
	IsReturn    bool                       `gorm:"column:is_return;not null;default:false"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
