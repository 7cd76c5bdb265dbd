package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
)

// ItemDTO exposes the publicly readable listing state.
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	Category    int       `json:"category"`
	TotalSupply int       `json:"total_supply"`
	Available   int       `json:"available"`
	Listed      bool      `json:"listed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddItemInput captures a new listing. Everything but available and
// listed is immutable once created.
type AddItemInput struct {
	StoreID      uuid.UUID
	CapabilityID uuid.UUID
	Title        string
	Description  string
	URL          string
	PriceCents   int64
	Supply       int
	Category     int
}

// FromModel maps the persisted item into a DTO.
func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		Title:       m.Title,
		Description: m.Description,
		URL:         m.URL,
		PriceCents:  m.PriceCents,
		Price:       escrow.FormatCents(m.PriceCents),
		Category:    m.Category,
		TotalSupply: m.TotalSupply,
		Available:   m.Available,
		Listed:      m.Listed,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
