package stores

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
)

// ErrBalanceConstraint is returned when a balance adjustment would take
// the store below zero.
var ErrBalanceConstraint = errors.New("store balance would go negative")

// Repository defines persistence operations for stores and their owner
// capabilities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, store *models.Store, capability *models.StoreOwnerCapability) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Store, error)
	AddToBalance(ctx context.Context, storeID uuid.UUID, deltaCents int64) error
	IncrementItemCount(ctx context.Context, storeID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stores repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, store *models.Store, capability *models.StoreOwnerCapability) error {
	if store == nil || capability == nil {
		return errors.New("store and capability required")
	}
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(capability).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByIDForUpdate takes a row lock on the store, serializing every
// mutating operation against that store for the rest of the caller's
// transaction.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := lockForUpdate(r.db.WithContext(ctx)).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// AddToBalance applies a signed delta with the non-negative guard in
// the UPDATE itself, so the check and the write are one statement.
func (r *repository) AddToBalance(ctx context.Context, storeID uuid.UUID, deltaCents int64) error {
	result := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", storeID).
		Where("balance_cents + ? >= 0", deltaCents).
		Update("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBalanceConstraint
	}
	return nil
}

func (r *repository) IncrementItemCount(ctx context.Context, storeID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("item_count", gorm.Expr("item_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SQLite rejects FOR UPDATE and serializes writers on its own; the
// lock clause is postgres-only.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
