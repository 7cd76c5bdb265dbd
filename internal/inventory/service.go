package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventTrail interface {
	Record(ctx context.Context, tx *gorm.DB, entry events.Entry) error
}

type storeAccounts interface {
	LockStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*models.Store, error)
	IncrementItemCount(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error
}

// Service owns the supply/availability state machine for items. The
// in-tx primitives (ItemInStore, DecreaseAvailable, IncreaseAvailable)
// are for the transaction processor composing larger transactions.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput) (*ItemDTO, error)
	UnlistItem(ctx context.Context, storeID, capabilityID, itemID uuid.UUID) error
	GetItem(ctx context.Context, storeID, itemID uuid.UUID) (*ItemDTO, error)

	ItemInStore(ctx context.Context, tx *gorm.DB, storeID, itemID uuid.UUID) (*models.Item, error)
	DecreaseAvailable(ctx context.Context, tx *gorm.DB, item *models.Item, qty int, actor string) (*models.Item, error)
	IncreaseAvailable(ctx context.Context, tx *gorm.DB, item *models.Item, qty int) (*models.Item, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	trail  eventTrail
	stores storeAccounts
}

// NewService builds an inventory ledger service.
func NewService(repo Repository, tx txRunner, trail eventTrail, stores storeAccounts) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if trail == nil {
		return nil, fmt.Errorf("event trail required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store accounts required")
	}
	return &service{repo: repo, tx: tx, trail: trail, stores: stores}, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*ItemDTO, error) {
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPrice, "price must be positive")
	}
	if input.Supply <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSupply, "supply must be positive")
	}
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.CapabilityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "capability required")
	}

	item := &models.Item{
		ID:          uuid.New(),
		StoreID:     input.StoreID,
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		PriceCents:  input.PriceCents,
		Category:    input.Category,
		TotalSupply: input.Supply,
		Available:   input.Supply,
		Listed:      true,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.LockStore(ctx, tx, input.StoreID)
		if err != nil {
			return err
		}
		if store.OwnerCapID != input.CapabilityID {
			return pkgerrors.New(pkgerrors.CodeNotOwner, "capability does not own this store")
		}
		if err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		if err := s.stores.IncrementItemCount(ctx, tx, input.StoreID); err != nil {
			return err
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID:      input.StoreID,
			ItemID:       &item.ID,
			Type:         enums.EventItemAdded,
			Quantity:     input.Supply,
			AmountCents:  input.PriceCents,
			CapabilityID: input.CapabilityID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

// UnlistItem sets listed=false unconditionally, so repeating it is
// harmless. Buyers cannot unlist; only the store capability can.
func (s *service) UnlistItem(ctx context.Context, storeID, capabilityID, itemID uuid.UUID) error {
	if storeID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id and item id required")
	}
	if capabilityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "capability required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.LockStore(ctx, tx, storeID)
		if err != nil {
			return err
		}
		if store.OwnerCapID != capabilityID {
			return pkgerrors.New(pkgerrors.CodeNotOwner, "capability does not own this store")
		}
		item, err := s.ItemInStore(ctx, tx, storeID, itemID)
		if err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).SetUnlisted(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlist item")
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID:      storeID,
			ItemID:       &item.ID,
			Type:         enums.EventItemUnlisted,
			CapabilityID: capabilityID.String(),
		})
	})
}

func (s *service) GetItem(ctx context.Context, storeID, itemID uuid.UUID) (*ItemDTO, error) {
	if storeID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and item id required")
	}
	item, err := s.repo.FindInStore(ctx, storeID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return FromModel(item), nil
}

func (s *service) ItemInStore(ctx context.Context, tx *gorm.DB, storeID, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.repo.WithTx(tx).FindInStore(ctx, storeID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}

// DecreaseAvailable removes qty units and auto-unlists on the
// transition to zero, recording ItemUnlisted in the same transaction.
func (s *service) DecreaseAvailable(ctx context.Context, tx *gorm.DB, item *models.Item, qty int, actor string) (*models.Item, error) {
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "item required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	if qty > item.Available {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientInventory, "not enough units available")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.DecreaseAvailable(ctx, item.ID, qty); err != nil {
		if errors.Is(err, ErrAvailabilityConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientInventory, "not enough units available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrease available")
	}

	updated := *item
	updated.Available -= qty
	if updated.Available == 0 && updated.Listed {
		if err := repo.SetUnlisted(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auto-unlist item")
		}
		updated.Listed = false
		if err := s.trail.Record(ctx, tx, events.Entry{
			StoreID: item.StoreID,
			ItemID:  &item.ID,
			Type:    enums.EventItemUnlisted,
			Actor:   actor,
		}); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

// IncreaseAvailable returns qty units to the pool, never past
// total_supply.
func (s *service) IncreaseAvailable(ctx context.Context, tx *gorm.DB, item *models.Item, qty int) (*models.Item, error) {
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "item required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	if item.Available+qty > item.TotalSupply {
		return nil, pkgerrors.New(pkgerrors.CodeSupplyExceeded, "quantity would exceed total supply")
	}

	if err := s.repo.WithTx(tx).IncreaseAvailable(ctx, item.ID, qty); err != nil {
		if errors.Is(err, ErrSupplyConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeSupplyExceeded, "quantity would exceed total supply")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase available")
	}
	updated := *item
	updated.Available += qty
	return &updated, nil
}
