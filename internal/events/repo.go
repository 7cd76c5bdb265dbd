package events

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
)

// Repository defines persistence operations for the marketplace_events
// audit trail. Rows are insert-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, event *models.MarketplaceEvent) error
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int, before *Cursor) ([]models.MarketplaceEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an events repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, event *models.MarketplaceEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, limit int, before *Cursor) ([]models.MarketplaceEvent, error) {
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if before != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			before.CreatedAt, before.CreatedAt, before.ID,
		)
	}
	var rows []models.MarketplaceEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
