package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
)

type stubInventoryRepo struct {
	items map[uuid.UUID]*models.Item
}

func newStubInventoryRepo(items ...*models.Item) *stubInventoryRepo {
	repo := &stubInventoryRepo{items: make(map[uuid.UUID]*models.Item)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubInventoryRepo) Create(ctx context.Context, item *models.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubInventoryRepo) FindInStore(ctx context.Context, storeID, itemID uuid.UUID) (*models.Item, error) {
	item, ok := s.items[itemID]
	if !ok || item.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *item
	return &cpy, nil
}

func (s *stubInventoryRepo) DecreaseAvailable(ctx context.Context, itemID uuid.UUID, qty int) error {
	item, ok := s.items[itemID]
	if !ok || item.Available < qty {
		return ErrAvailabilityConstraint
	}
	item.Available -= qty
	return nil
}

func (s *stubInventoryRepo) IncreaseAvailable(ctx context.Context, itemID uuid.UUID, qty int) error {
	item, ok := s.items[itemID]
	if !ok || item.Available+qty > item.TotalSupply {
		return ErrSupplyConstraint
	}
	item.Available += qty
	return nil
}

func (s *stubInventoryRepo) SetUnlisted(ctx context.Context, itemID uuid.UUID) error {
	item, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Listed = false
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubTrail struct {
	entries []events.Entry
}

func (s *stubTrail) Record(ctx context.Context, tx *gorm.DB, entry events.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubStoreAccounts struct {
	store     *models.Store
	itemCount int
}

func (s *stubStoreAccounts) LockStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*models.Store, error) {
	if s.store == nil || s.store.ID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	cpy := *s.store
	return &cpy, nil
}

func (s *stubStoreAccounts) IncrementItemCount(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error {
	s.itemCount++
	return nil
}

func newTestService(t *testing.T, repo *stubInventoryRepo, accounts *stubStoreAccounts) (Service, *stubTrail) {
	t.Helper()
	trail := &stubTrail{}
	svc, err := NewService(repo, stubTxRunner{}, trail, accounts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, trail
}

func TestAddItemValidation(t *testing.T) {
	capID := uuid.New()
	accounts := &stubStoreAccounts{store: &models.Store{ID: uuid.New(), OwnerCapID: capID}}
	svc, _ := newTestService(t, newStubInventoryRepo(), accounts)

	base := AddItemInput{
		StoreID:      accounts.store.ID,
		CapabilityID: capID,
		Title:        "widget",
		PriceCents:   500,
		Supply:       3,
	}

	zeroPrice := base
	zeroPrice.PriceCents = 0
	_, err := svc.AddItem(context.Background(), zeroPrice)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInvalidPrice {
		t.Fatalf("expected INVALID_PRICE, got %v", err)
	}

	zeroSupply := base
	zeroSupply.Supply = 0
	_, err = svc.AddItem(context.Background(), zeroSupply)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInvalidSupply {
		t.Fatalf("expected INVALID_SUPPLY, got %v", err)
	}

	if accounts.itemCount != 0 {
		t.Fatal("failed add must not touch item_count")
	}
}

func TestAddItemNotOwner(t *testing.T) {
	accounts := &stubStoreAccounts{store: &models.Store{ID: uuid.New(), OwnerCapID: uuid.New()}}
	svc, trail := newTestService(t, newStubInventoryRepo(), accounts)

	_, err := svc.AddItem(context.Background(), AddItemInput{
		StoreID:      accounts.store.ID,
		CapabilityID: uuid.New(),
		Title:        "widget",
		PriceCents:   500,
		Supply:       3,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotOwner {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
	if len(trail.entries) != 0 || accounts.itemCount != 0 {
		t.Fatal("failed add must leave no trace")
	}
}

func TestAddItemCreatesFullyAvailableListing(t *testing.T) {
	capID := uuid.New()
	accounts := &stubStoreAccounts{store: &models.Store{ID: uuid.New(), OwnerCapID: capID}}
	repo := newStubInventoryRepo()
	svc, trail := newTestService(t, repo, accounts)

	dto, err := svc.AddItem(context.Background(), AddItemInput{
		StoreID:      accounts.store.ID,
		CapabilityID: capID,
		Title:        "widget",
		Description:  "a widget",
		URL:          "https://example.com/widget",
		PriceCents:   1250,
		Supply:       4,
		Category:     7,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if dto.Available != 4 || dto.TotalSupply != 4 || !dto.Listed {
		t.Fatalf("new item must start fully available and listed, got %+v", dto)
	}
	if dto.Price != "12.50" {
		t.Fatalf("price rendering = %q", dto.Price)
	}
	if accounts.itemCount != 1 {
		t.Fatalf("item_count increments = %d", accounts.itemCount)
	}
	if len(trail.entries) != 1 || trail.entries[0].Type != enums.EventItemAdded {
		t.Fatalf("expected ItemAdded, got %+v", trail.entries)
	}
	if trail.entries[0].Quantity != 4 || trail.entries[0].AmountCents != 1250 {
		t.Fatalf("event payload = %+v", trail.entries[0])
	}
}

func TestUnlistItemIsIdempotent(t *testing.T) {
	capID := uuid.New()
	storeID := uuid.New()
	item := &models.Item{ID: uuid.New(), StoreID: storeID, Available: 2, TotalSupply: 2, Listed: true}
	accounts := &stubStoreAccounts{store: &models.Store{ID: storeID, OwnerCapID: capID}}
	repo := newStubInventoryRepo(item)
	svc, trail := newTestService(t, repo, accounts)

	for i := 0; i < 2; i++ {
		if err := svc.UnlistItem(context.Background(), storeID, capID, item.ID); err != nil {
			t.Fatalf("UnlistItem pass %d: %v", i, err)
		}
	}
	if item.Listed {
		t.Fatal("item must be unlisted")
	}
	if item.Available != 2 {
		t.Fatal("unlist must not touch availability")
	}
	if len(trail.entries) != 2 {
		t.Fatalf("each unlist emits its event, got %d", len(trail.entries))
	}
}

func TestUnlistItemUnknownItem(t *testing.T) {
	capID := uuid.New()
	storeID := uuid.New()
	accounts := &stubStoreAccounts{store: &models.Store{ID: storeID, OwnerCapID: capID}}
	svc, _ := newTestService(t, newStubInventoryRepo(), accounts)

	err := svc.UnlistItem(context.Background(), storeID, capID, uuid.New())
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDecreaseAvailableGuards(t *testing.T) {
	item := &models.Item{ID: uuid.New(), StoreID: uuid.New(), Available: 2, TotalSupply: 5, Listed: true}
	repo := newStubInventoryRepo(item)
	accounts := &stubStoreAccounts{store: &models.Store{ID: item.StoreID}}
	svc, _ := newTestService(t, repo, accounts)

	_, err := svc.DecreaseAvailable(context.Background(), nil, item, 3, "buyer")
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInsufficientInventory {
		t.Fatalf("expected INSUFFICIENT_INVENTORY, got %v", err)
	}
	if item.Available != 2 {
		t.Fatal("failed decrease must not mutate")
	}
}

func TestDecreaseAvailableAutoUnlistsAtZero(t *testing.T) {
	item := &models.Item{ID: uuid.New(), StoreID: uuid.New(), Available: 2, TotalSupply: 5, Listed: true}
	repo := newStubInventoryRepo(item)
	accounts := &stubStoreAccounts{store: &models.Store{ID: item.StoreID}}
	svc, trail := newTestService(t, repo, accounts)

	updated, err := svc.DecreaseAvailable(context.Background(), nil, item, 2, "buyer-1")
	if err != nil {
		t.Fatalf("DecreaseAvailable: %v", err)
	}
	if updated.Available != 0 || updated.Listed {
		t.Fatalf("expected auto-unlist at zero, got %+v", updated)
	}
	if repo.items[item.ID].Listed {
		t.Fatal("persisted row must be unlisted")
	}
	if len(trail.entries) != 1 || trail.entries[0].Type != enums.EventItemUnlisted {
		t.Fatalf("expected ItemUnlisted, got %+v", trail.entries)
	}
}

func TestIncreaseAvailableSupplyBound(t *testing.T) {
	item := &models.Item{ID: uuid.New(), StoreID: uuid.New(), Available: 4, TotalSupply: 5, Listed: true}
	repo := newStubInventoryRepo(item)
	accounts := &stubStoreAccounts{store: &models.Store{ID: item.StoreID}}
	svc, _ := newTestService(t, repo, accounts)

	_, err := svc.IncreaseAvailable(context.Background(), nil, item, 2)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeSupplyExceeded {
		t.Fatalf("expected SUPPLY_EXCEEDED, got %v", err)
	}

	updated, err := svc.IncreaseAvailable(context.Background(), nil, item, 1)
	if err != nil {
		t.Fatalf("IncreaseAvailable: %v", err)
	}
	if updated.Available != 5 {
		t.Fatalf("expected available back at supply, got %d", updated.Available)
	}
}
