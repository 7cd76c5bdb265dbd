package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
)

// ErrAvailabilityConstraint is returned when a decrement would take
// available below zero.
var ErrAvailabilityConstraint = errors.New("item available would go negative")

// ErrSupplyConstraint is returned when an increment would push
// available past total_supply.
var ErrSupplyConstraint = errors.New("item available would exceed total supply")

// Repository defines persistence operations for inventory items. The
// availability adjustments carry their bound checks in the UPDATE
// statement itself.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindInStore(ctx context.Context, storeID, itemID uuid.UUID) (*models.Item, error)
	DecreaseAvailable(ctx context.Context, itemID uuid.UUID, qty int) error
	IncreaseAvailable(ctx context.Context, itemID uuid.UUID, qty int) error
	SetUnlisted(ctx context.Context, itemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	if item == nil {
		return errors.New("item required")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindInStore(ctx context.Context, storeID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", itemID, storeID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) DecreaseAvailable(ctx context.Context, itemID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", itemID).
		Where("available >= ?", qty).
		Update("available", gorm.Expr("available - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAvailabilityConstraint
	}
	return nil
}

func (r *repository) IncreaseAvailable(ctx context.Context, itemID uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", itemID).
		Where("available + ? <= total_supply", qty).
		Update("available", gorm.Expr("available + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSupplyConstraint
	}
	return nil
}

func (r *repository) SetUnlisted(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", itemID).
		Update("listed", false).Error
}
