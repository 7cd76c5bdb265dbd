package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/pkg/capauth"
	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventTrail interface {
	Record(ctx context.Context, tx *gorm.DB, entry events.Entry) error
}

// Service exposes store account operations. The in-tx primitives
// (LockStore, Deposit, WithdrawInternal, IncrementItemCount) are for
// sibling services composing larger transactions; they never open
// their own.
type Service interface {
	CreateStore(ctx context.Context) (*CreateStoreOutput, error)
	GetStore(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	WithdrawFromStore(ctx context.Context, input WithdrawInput) (*WithdrawalOutput, error)

	LockStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*models.Store, error)
	Deposit(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amountCents int64) error
	WithdrawInternal(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amountCents int64) error
	IncrementItemCount(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	trail  eventTrail
	capCfg config.CapabilityConfig
}

// NewService builds a store account service.
func NewService(repo Repository, tx txRunner, trail eventTrail, capCfg config.CapabilityConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if trail == nil {
		return nil, fmt.Errorf("event trail required")
	}
	return &service{repo: repo, tx: tx, trail: trail, capCfg: capCfg}, nil
}

func (s *service) CreateStore(ctx context.Context) (*CreateStoreOutput, error) {
	store := &models.Store{ID: uuid.New(), OwnerCapID: uuid.New()}
	capability := &models.StoreOwnerCapability{ID: store.OwnerCapID, StoreID: store.ID}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, store, capability); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID:      store.ID,
			Type:         enums.EventStoreCreated,
			CapabilityID: capability.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := capauth.MintCapabilityToken(s.capCfg, time.Now(), capability.ID, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint capability token")
	}
	return &CreateStoreOutput{
		Store:           *FromModel(store),
		CapabilityID:    capability.ID,
		CapabilityToken: token,
	}, nil
}

func (s *service) GetStore(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) WithdrawFromStore(ctx context.Context, input WithdrawInput) (*WithdrawalOutput, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.CapabilityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "capability required")
	}

	var output *WithdrawalOutput
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		store, err := repo.FindByIDForUpdate(ctx, input.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock store")
		}
		if store.OwnerCapID != input.CapabilityID {
			return pkgerrors.New(pkgerrors.CodeNotOwner, "capability does not own this store")
		}
		if input.AmountCents <= 0 || input.AmountCents > store.BalanceCents {
			return pkgerrors.New(pkgerrors.CodeInvalidWithdrawalAmount, "amount must be positive and within balance")
		}

		if err := repo.AddToBalance(ctx, store.ID, -input.AmountCents); err != nil {
			if errors.Is(err, ErrBalanceConstraint) {
				return pkgerrors.New(pkgerrors.CodeInvalidWithdrawalAmount, "amount exceeds balance")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit balance")
		}

		payment, err := escrow.NewPayment(input.AmountCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "materialize withdrawal")
		}
		output = &WithdrawalOutput{
			Payment:      payment,
			StoreID:      store.ID,
			AmountCents:  input.AmountCents,
			Amount:       escrow.FormatCents(input.AmountCents),
			Recipient:    input.Recipient,
			BalanceCents: store.BalanceCents - input.AmountCents,
		}
		return s.trail.Record(ctx, tx, events.Entry{
			StoreID:      store.ID,
			Type:         enums.EventStoreWithdrawal,
			AmountCents:  input.AmountCents,
			Actor:        input.Recipient,
			CapabilityID: input.CapabilityID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return output, nil
}

// LockStore loads the store under a row lock inside the caller's
// transaction. Every mutating operation on a store goes through this
// first.
func (s *service) LockStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock store")
	}
	return store, nil
}

func (s *service) Deposit(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeInternal, "deposit amount must not be negative")
	}
	if err := s.repo.WithTx(tx).AddToBalance(ctx, storeID, amountCents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit balance")
	}
	return nil
}

func (s *service) WithdrawInternal(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return pkgerrors.New(pkgerrors.CodeInternal, "withdrawal amount must not be negative")
	}
	if err := s.repo.WithTx(tx).AddToBalance(ctx, storeID, -amountCents); err != nil {
		if errors.Is(err, ErrBalanceConstraint) {
			return pkgerrors.New(pkgerrors.CodeInvalidWithdrawalAmount, "amount exceeds balance")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit balance")
	}
	return nil
}

func (s *service) IncrementItemCount(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error {
	if err := s.repo.WithTx(tx).IncrementItemCount(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment item count")
	}
	return nil
}
