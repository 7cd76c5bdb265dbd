package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
	"github.com/avaloza-dev/marketstall-backend/pkg/metrics"
	"github.com/avaloza-dev/marketstall-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventTrail interface {
	Record(ctx context.Context, tx *gorm.DB, entry events.Entry) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type storeAccounts interface {
	LockStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*models.Store, error)
	Deposit(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amountCents int64) error
}

type inventoryLedger interface {
	ItemInStore(ctx context.Context, tx *gorm.DB, storeID, itemID uuid.UUID) (*models.Item, error)
	DecreaseAvailable(ctx context.Context, tx *gorm.DB, item *models.Item, qty int, actor string) (*models.Item, error)
	IncreaseAvailable(ctx context.Context, tx *gorm.DB, item *models.Item, qty int) (*models.Item, error)
}

// Service orchestrates the operations spanning store balances,
// inventory and escrow. Each call is one transaction: every check runs
// before any mutation, and a failure leaves all state untouched.
type Service interface {
	PurchaseItem(ctx context.Context, input PurchaseInput) ([]HoldingDTO, error)
	InitiateDelivery(ctx context.Context, storeID, itemID uuid.UUID, buyer string) error
	ConfirmDelivery(ctx context.Context, storeID, itemID uuid.UUID, buyer string) error
	RefundPurchase(ctx context.Context, storeID, itemID uuid.UUID, quantity int, buyer string) error
	RateTransaction(ctx context.Context, input RateInput) (*RatingDTO, error)
	ListHoldings(ctx context.Context, owner string) ([]HoldingDTO, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	stores    storeAccounts
	inventory inventoryLedger
	trail     eventTrail
	outbox    outboxPublisher
	mint      escrow.MintAuthority
	meters    *metrics.LedgerMetrics
}

// NewService builds the transaction processor. meters may be nil.
func NewService(
	repo Repository,
	tx txRunner,
	storeAcc storeAccounts,
	inv inventoryLedger,
	trail eventTrail,
	publisher outboxPublisher,
	mint escrow.MintAuthority,
	meters *metrics.LedgerMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("trading repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if storeAcc == nil {
		return nil, fmt.Errorf("store accounts required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if trail == nil {
		return nil, fmt.Errorf("event trail required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if mint == nil {
		return nil, fmt.Errorf("mint authority required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		stores:    storeAcc,
		inventory: inv,
		trail:     trail,
		outbox:    publisher,
		mint:      mint,
		meters:    meters,
	}, nil
}

func (s *service) observe(operation string, start time.Time, err error) {
	s.meters.ObserveDuration(operation, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if coded := pkgerrors.As(err); coded != nil {
			code = string(coded.Code())
		}
		s.meters.IncFailure(operation, code)
		return
	}
	s.meters.IncSuccess(operation)
}

// PurchaseItem checks availability, then payment sufficiency, then the
// listed flag. The check order is part of the API contract: a request
// failing more than one precondition reports the first.
func (s *service) PurchaseItem(ctx context.Context, input PurchaseInput) (holdings []HoldingDTO, err error) {
	start := time.Now()
	defer func() { s.observe("purchase_item", start, err) }()

	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	if input.Recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if input.Payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.LockStore(ctx, tx, input.StoreID)
		if err != nil {
			return err
		}
		item, err := s.inventory.ItemInStore(ctx, tx, store.ID, input.ItemID)
		if err != nil {
			return err
		}

		if input.Quantity > item.Available {
			return pkgerrors.New(pkgerrors.CodeInsufficientInventory, "not enough units available")
		}
		total := item.PriceCents * int64(input.Quantity)
		if input.Payment.Value() < total {
			return pkgerrors.New(pkgerrors.CodeInsufficientPayment, "payment does not cover the price")
		}
		if !item.Listed {
			return pkgerrors.New(pkgerrors.CodeItemNotListed, "item is not listed")
		}

		taken, err := input.Payment.Split(total)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInsufficientPayment, err, "collect payment")
		}
		committed := false
		// The split lives outside the DB transaction; hand it back to
		// the buyer if anything past this point rolls back.
		defer func() {
			if !committed {
				input.Payment.Put(taken)
			}
		}()

		if err := s.stores.Deposit(ctx, tx, store.ID, total); err != nil {
			return err
		}
		if _, err := s.inventory.DecreaseAvailable(ctx, tx, item, input.Quantity, input.Recipient); err != nil {
			return err
		}

		now := time.Now()
		rows := make([]models.ItemHolding, 0, input.Quantity)
		for i := 0; i < input.Quantity; i++ {
			rows = append(rows, models.ItemHolding{
				ID:          uuid.New(),
				ItemID:      item.ID,
				StoreID:     store.ID,
				Owner:       input.Recipient,
				Title:       item.Title,
				Description: item.Description,
				URL:         item.URL,
				PriceCents:  item.PriceCents,
				Category:    item.Category,
				AcquiredAt:  now,
			})
		}
		if err := s.repo.WithTx(tx).CreateHoldings(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint holdings")
		}

		if err := s.trail.Record(ctx, tx, events.Entry{
			StoreID:     store.ID,
			ItemID:      &item.ID,
			Type:        enums.EventItemPurchased,
			Quantity:    input.Quantity,
			AmountCents: total,
			Actor:       input.Recipient,
		}); err != nil {
			return err
		}

		holdings = make([]HoldingDTO, 0, len(rows))
		for _, row := range rows {
			holdings = append(holdings, holdingFromModel(row))
		}
		committed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.meters.AddUnits("purchase_item", input.Quantity)
	return holdings, nil
}

// InitiateDelivery is pure signaling: it appends DeliveryInitiated and
// mutates nothing else. No check that a purchase ever happened for
// this store/item/buyer pairing; callers are trusted.
func (s *service) InitiateDelivery(ctx context.Context, storeID, itemID uuid.UUID, buyer string) (err error) {
	start := time.Now()
	defer func() { s.observe("initiate_delivery", start, err) }()

	if buyer == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer required")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.LockStore(ctx, tx, storeID)
		if err != nil {
			return err
		}
		item, err := s.inventory.ItemInStore(ctx, tx, store.ID, itemID)
		if err != nil {
			return err
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID: store.ID,
			ItemID:  &item.ID,
			Type:    enums.EventDeliveryInitiated,
			Actor:   buyer,
		})
	})
	return err
}

// ConfirmDelivery mints the item price into store escrow and appends
// ItemPurchased with quantity 1. It never touches inventory: the
// credit is independent of the original purchase deposit, not a
// reconciliation of it.
func (s *service) ConfirmDelivery(ctx context.Context, storeID, itemID uuid.UUID, buyer string) (err error) {
	start := time.Now()
	defer func() { s.observe("confirm_delivery", start, err) }()

	if buyer == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer required")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.LockStore(ctx, tx, storeID)
		if err != nil {
			return err
		}
		item, err := s.inventory.ItemInStore(ctx, tx, store.ID, itemID)
		if err != nil {
			return err
		}

		minted, err := s.mint.Mint(ctx, item.PriceCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint delivery credit")
		}
		if err := s.stores.Deposit(ctx, tx, store.ID, minted.Value()); err != nil {
			return err
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID:     store.ID,
			ItemID:      &item.ID,
			Type:        enums.EventItemPurchased,
			Quantity:    1,
			AmountCents: item.PriceCents,
			Actor:       buyer,
		})
	})
	return err
}

// RefundPurchase returns quantity units to the pool and mints the
// refund value into store escrow, appending ItemPurchased tagged as a
// return.
func (s *service) RefundPurchase(ctx context.Context, storeID, itemID uuid.UUID, quantity int, buyer string) (err error) {
	start := time.Now()
	defer func() { s.observe("refund_purchase", start, err) }()

	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}
	if buyer == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer required")
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		store, err := s.stores.LockStore(ctx, tx, storeID)
		if err != nil {
			return err
		}
		item, err := s.inventory.ItemInStore(ctx, tx, store.ID, itemID)
		if err != nil {
			return err
		}

		if _, err := s.inventory.IncreaseAvailable(ctx, tx, item, quantity); err != nil {
			if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeSupplyExceeded {
				return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity would exceed total supply")
			}
			return err
		}

		total := item.PriceCents * int64(quantity)
		minted, err := s.mint.Mint(ctx, total)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint refund credit")
		}
		if err := s.stores.Deposit(ctx, tx, store.ID, minted.Value()); err != nil {
			return err
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID:     store.ID,
			ItemID:      &item.ID,
			Type:        enums.EventItemPurchased,
			Quantity:    quantity,
			AmountCents: total,
			Actor:       buyer,
			IsReturn:    true,
		})
	})
	if err != nil {
		return err
	}
	s.meters.AddUnits("refund_purchase", quantity)
	return nil
}

// RateTransaction records a buyer rating. There is deliberately no
// check that the buyer ever purchased the item.
func (s *service) RateTransaction(ctx context.Context, input RateInput) (dto *RatingDTO, err error) {
	start := time.Now()
	defer func() { s.observe("rate_transaction", start, err) }()

	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.Buyer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer required")
	}

	rating := &models.TransactionRating{
		ID:      uuid.New(),
		StoreID: input.StoreID,
		ItemID:  input.ItemID,
		Rating:  input.Rating,
		Review:  input.Review,
		Buyer:   input.Buyer,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.inventory.ItemInStore(ctx, tx, input.StoreID, input.ItemID); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).CreateRating(ctx, rating); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rating")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxRatingCreated,
			AggregateType: enums.AggregateRating,
			AggregateID:   rating.ID,
			Actor:         &outbox.ActorRef{Identity: input.Buyer},
			Data:          ratingFromModel(rating),
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}
	return ratingFromModel(rating), nil
}

func (s *service) ListHoldings(ctx context.Context, owner string) ([]HoldingDTO, error) {
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner required")
	}
	rows, err := s.repo.ListHoldingsByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list holdings")
	}
	holdings := make([]HoldingDTO, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, holdingFromModel(row))
	}
	return holdings, nil
}
