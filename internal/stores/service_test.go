package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
)

type stubStoresRepo struct {
	store        *models.Store
	capability   *models.StoreOwnerCapability
	balanceDelta int64
	itemCountInc int

	addToBalance func(ctx context.Context, storeID uuid.UUID, deltaCents int64) error
}

func (s *stubStoresRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubStoresRepo) Create(ctx context.Context, store *models.Store, capability *models.StoreOwnerCapability) error {
	s.store = store
	s.capability = capability
	return nil
}

func (s *stubStoresRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if s.store == nil || s.store.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *s.store
	return &cpy, nil
}

func (s *stubStoresRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	return s.FindByID(ctx, id)
}

func (s *stubStoresRepo) AddToBalance(ctx context.Context, storeID uuid.UUID, deltaCents int64) error {
	if s.addToBalance != nil {
		return s.addToBalance(ctx, storeID, deltaCents)
	}
	if s.store == nil || s.store.ID != storeID {
		return gorm.ErrRecordNotFound
	}
	if s.store.BalanceCents+deltaCents < 0 {
		return ErrBalanceConstraint
	}
	s.store.BalanceCents += deltaCents
	s.balanceDelta += deltaCents
	return nil
}

func (s *stubStoresRepo) IncrementItemCount(ctx context.Context, storeID uuid.UUID) error {
	if s.store == nil || s.store.ID != storeID {
		return gorm.ErrRecordNotFound
	}
	s.store.ItemCount++
	s.itemCountInc++
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTrail struct {
	entries []events.Entry
	record  func(ctx context.Context, tx *gorm.DB, entry events.Entry) error
}

func (s *stubTrail) Record(ctx context.Context, tx *gorm.DB, entry events.Entry) error {
	if s.record != nil {
		return s.record(ctx, tx, entry)
	}
	s.entries = append(s.entries, entry)
	return nil
}

func testCapConfig() config.CapabilityConfig {
	return config.CapabilityConfig{Secret: "test-secret", Issuer: "marketstall-test"}
}

func TestCreateStore(t *testing.T) {
	repo := &stubStoresRepo{}
	trail := &stubTrail{}
	svc, err := NewService(repo, stubTxRunner{}, trail, testCapConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	out, err := svc.CreateStore(context.Background())
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	if out.Store.BalanceCents != 0 || out.Store.ItemCount != 0 {
		t.Fatalf("new store must start empty, got %+v", out.Store)
	}
	if out.CapabilityID == uuid.Nil || out.CapabilityToken == "" {
		t.Fatal("capability must be issued at creation")
	}
	if repo.capability == nil || repo.capability.StoreID != out.Store.ID {
		t.Fatalf("capability not bound to store: %+v", repo.capability)
	}
	if out.Store.OwnerCapID != out.CapabilityID {
		t.Fatal("store owner_cap_id must match the issued capability")
	}
	if len(trail.entries) != 1 || trail.entries[0].Type != enums.EventStoreCreated {
		t.Fatalf("expected StoreCreated event, got %+v", trail.entries)
	}
}

func TestGetStoreNotFound(t *testing.T) {
	svc, _ := NewService(&stubStoresRepo{}, stubTxRunner{}, &stubTrail{}, testCapConfig())
	_, err := svc.GetStore(context.Background(), uuid.New())
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWithdrawFromStoreNotOwner(t *testing.T) {
	storeID := uuid.New()
	repo := &stubStoresRepo{store: &models.Store{ID: storeID, OwnerCapID: uuid.New(), BalanceCents: 1000}}
	trail := &stubTrail{}
	svc, _ := NewService(repo, stubTxRunner{}, trail, testCapConfig())

	_, err := svc.WithdrawFromStore(context.Background(), WithdrawInput{
		StoreID:      storeID,
		CapabilityID: uuid.New(),
		AmountCents:  100,
		Recipient:    "somebody",
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotOwner {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
	if len(trail.entries) != 0 {
		t.Fatal("failed withdrawal must not record an event")
	}
}

func TestWithdrawFromStoreInvalidAmounts(t *testing.T) {
	capID := uuid.New()
	storeID := uuid.New()

	cases := []struct {
		name   string
		amount int64
	}{
		{"zero", 0},
		{"negative", -50},
		{"over balance", 1001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubStoresRepo{store: &models.Store{ID: storeID, OwnerCapID: capID, BalanceCents: 1000}}
			svc, _ := NewService(repo, stubTxRunner{}, &stubTrail{}, testCapConfig())

			_, err := svc.WithdrawFromStore(context.Background(), WithdrawInput{
				StoreID:      storeID,
				CapabilityID: capID,
				AmountCents:  tc.amount,
				Recipient:    "acct",
			})
			if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInvalidWithdrawalAmount {
				t.Fatalf("expected INVALID_WITHDRAWAL_AMOUNT, got %v", err)
			}
			if repo.store.BalanceCents != 1000 {
				t.Fatalf("failed withdrawal must leave balance untouched, got %d", repo.store.BalanceCents)
			}
		})
	}
}

func TestWithdrawExactBalanceEmptiesStore(t *testing.T) {
	capID := uuid.New()
	storeID := uuid.New()
	repo := &stubStoresRepo{store: &models.Store{ID: storeID, OwnerCapID: capID, BalanceCents: 750}}
	trail := &stubTrail{}
	svc, _ := NewService(repo, stubTxRunner{}, trail, testCapConfig())

	out, err := svc.WithdrawFromStore(context.Background(), WithdrawInput{
		StoreID:      storeID,
		CapabilityID: capID,
		AmountCents:  750,
		Recipient:    "acct-9",
	})
	if err != nil {
		t.Fatalf("WithdrawFromStore: %v", err)
	}
	if out.BalanceCents != 0 || repo.store.BalanceCents != 0 {
		t.Fatalf("expected empty balance, got %d/%d", out.BalanceCents, repo.store.BalanceCents)
	}
	if out.Payment == nil || out.Payment.Value() != 750 {
		t.Fatalf("expected payment of 750, got %+v", out.Payment)
	}
	if len(trail.entries) != 1 || trail.entries[0].Type != enums.EventStoreWithdrawal {
		t.Fatalf("expected StoreWithdrawal event, got %+v", trail.entries)
	}
	if trail.entries[0].AmountCents != 750 || trail.entries[0].Actor != "acct-9" {
		t.Fatalf("event should carry amount and recipient, got %+v", trail.entries[0])
	}
}

func TestDepositRejectsNegative(t *testing.T) {
	repo := &stubStoresRepo{store: &models.Store{ID: uuid.New()}}
	svc, _ := NewService(repo, stubTxRunner{}, &stubTrail{}, testCapConfig())

	if err := svc.Deposit(context.Background(), nil, repo.store.ID, -1); err == nil {
		t.Fatal("expected error for negative deposit")
	}
}

func TestWithdrawInternalGuardsBalance(t *testing.T) {
	storeID := uuid.New()
	repo := &stubStoresRepo{store: &models.Store{ID: storeID, BalanceCents: 100}}
	svc, _ := NewService(repo, stubTxRunner{}, &stubTrail{}, testCapConfig())

	err := svc.WithdrawInternal(context.Background(), nil, storeID, 200)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInvalidWithdrawalAmount {
		t.Fatalf("expected INVALID_WITHDRAWAL_AMOUNT, got %v", err)
	}
	if repo.store.BalanceCents != 100 {
		t.Fatalf("balance must be untouched, got %d", repo.store.BalanceCents)
	}
}
