package trading

import (
	"time"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
)

// PurchaseInput captures one purchase attempt. Payment is the buyer's
// escrow value; the purchase splits the owed amount out of it and
// leaves the remainder with the buyer.
type PurchaseInput struct {
	StoreID   uuid.UUID
	ItemID    uuid.UUID
	Quantity  int
	Recipient string
	Payment   *escrow.Payment
}

// HoldingDTO is one transferable copy delivered to a buyer, snapshotted
// at purchase time.
type HoldingDTO struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	StoreID     uuid.UUID `json:"store_id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	Category    int       `json:"category"`
	AcquiredAt  time.Time `json:"acquired_at"`
}

// RateInput captures a buyer-issued rating.
type RateInput struct {
	StoreID uuid.UUID
	ItemID  uuid.UUID
	Rating  int
	Review  string
	Buyer   string
}

// RatingDTO exposes a persisted rating.
type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	Buyer     string    `json:"buyer"`
	CreatedAt time.Time `json:"created_at"`
}

func holdingFromModel(m models.ItemHolding) HoldingDTO {
	return HoldingDTO{
		ID:          m.ID,
		ItemID:      m.ItemID,
		StoreID:     m.StoreID,
		Owner:       m.Owner,
		Title:       m.Title,
		Description: m.Description,
		URL:         m.URL,
		PriceCents:  m.PriceCents,
		Price:       escrow.FormatCents(m.PriceCents),
		Category:    m.Category,
		AcquiredAt:  m.AcquiredAt,
	}
}

func ratingFromModel(m *models.TransactionRating) *RatingDTO {
	if m == nil {
		return nil
	}
	return &RatingDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		ItemID:    m.ItemID,
		Rating:    m.Rating,
		Review:    m.Review,
		Buyer:     m.Buyer,
		CreatedAt: m.CreatedAt,
	}
}
