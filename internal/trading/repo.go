package trading

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
)

// Repository defines persistence operations for the records minted by
// trades: buyer holdings and transaction ratings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateHoldings(ctx context.Context, holdings []models.ItemHolding) error
	ListHoldingsByOwner(ctx context.Context, owner string) ([]models.ItemHolding, error)
	CreateRating(ctx context.Context, rating *models.TransactionRating) error
	ListRatingsByStore(ctx context.Context, storeID uuid.UUID) ([]models.TransactionRating, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a trading repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateHoldings(ctx context.Context, holdings []models.ItemHolding) error {
	if len(holdings) == 0 {
		return nil
	}
	for i := range holdings {
		if holdings[i].ID == uuid.Nil {
			holdings[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&holdings).Error
}

func (r *repository) ListHoldingsByOwner(ctx context.Context, owner string) ([]models.ItemHolding, error) {
	var holdings []models.ItemHolding
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("acquired_at DESC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

func (r *repository) CreateRating(ctx context.Context, rating *models.TransactionRating) error {
	if rating == nil {
		return errors.New("rating required")
	}
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *repository) ListRatingsByStore(ctx context.Context, storeID uuid.UUID) ([]models.TransactionRating, error) {
	var ratings []models.TransactionRating
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
