package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
)

// StoreDTO exposes the publicly readable store state. Balance and
// item count are not secret; only mutation requires the capability.
type StoreDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerCapID   uuid.UUID `json:"owner_cap_id"`
	BalanceCents int64     `json:"balance_cents"`
	Balance      string    `json:"balance"`
	ItemCount    int64     `json:"item_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateStoreOutput carries the new store plus the capability handed
// to the caller. The token is shown exactly once; whoever holds it
// owns the store.
type CreateStoreOutput struct {
	Store           StoreDTO  `json:"store"`
	CapabilityID    uuid.UUID `json:"capability_id"`
	CapabilityToken string    `json:"capability_token"`
}

// WithdrawInput captures a withdrawal request.
type WithdrawInput struct {
	StoreID      uuid.UUID
	CapabilityID uuid.UUID
	AmountCents  int64
	Recipient    string
}

// WithdrawalOutput reports the funds moved out of escrow. Payment is
// the value handed to the recipient.
type WithdrawalOutput struct {
	Payment      *escrow.Payment `json:"-"`
	StoreID      uuid.UUID       `json:"store_id"`
	AmountCents  int64           `json:"amount_cents"`
	Amount       string          `json:"amount"`
	Recipient    string          `json:"recipient"`
	BalanceCents int64           `json:"balance_cents"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:           m.ID,
		OwnerCapID:   m.OwnerCapID,
		BalanceCents: m.BalanceCents,
		Balance:      escrow.FormatCents(m.BalanceCents),
		ItemCount:    m.ItemCount,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
