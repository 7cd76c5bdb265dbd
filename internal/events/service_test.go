package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/outbox"
)

type stubEventsRepo struct {
	inserted    []models.MarketplaceEvent
	listByStore func(ctx context.Context, storeID uuid.UUID, limit int, before *Cursor) ([]models.MarketplaceEvent, error)
}

func (s *stubEventsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubEventsRepo) Insert(ctx context.Context, event *models.MarketplaceEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.inserted = append(s.inserted, *event)
	return nil
}

func (s *stubEventsRepo) ListByStore(ctx context.Context, storeID uuid.UUID, limit int, before *Cursor) ([]models.MarketplaceEvent, error) {
	if s.listByStore != nil {
		return s.listByStore(ctx, storeID, limit, before)
	}
	return nil, nil
}

type stubOutbox struct {
	emitted []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.emitted = append(s.emitted, event)
	return nil
}

func TestRecordInsertsRowAndEmitsOutbox(t *testing.T) {
	repo := &stubEventsRepo{}
	pub := &stubOutbox{}
	svc, err := NewService(repo, pub)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	storeID := uuid.New()
	itemID := uuid.New()
	entry := Entry{
		StoreID:     storeID,
		ItemID:      &itemID,
		Type:        enums.EventItemPurchased,
		Quantity:    3,
		AmountCents: 4500,
		Actor:       "buyer-7",
	}
	if err := svc.Record(context.Background(), &gorm.DB{}, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 inserted row, got %d", len(repo.inserted))
	}
	row := repo.inserted[0]
	if row.Type != enums.EventItemPurchased || row.Quantity != 3 || row.AmountCents != 4500 {
		t.Fatalf("unexpected row %+v", row)
	}

	if len(pub.emitted) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(pub.emitted))
	}
	emitted := pub.emitted[0]
	if emitted.EventType != enums.OutboxItemPurchased {
		t.Fatalf("outbox event type = %s", emitted.EventType)
	}
	if emitted.AggregateType != enums.AggregateItem || emitted.AggregateID != itemID {
		t.Fatalf("outbox aggregate = %s/%s", emitted.AggregateType, emitted.AggregateID)
	}
	if emitted.Actor == nil || emitted.Actor.Identity != "buyer-7" {
		t.Fatalf("outbox actor = %+v", emitted.Actor)
	}
}

func TestRecordRequiresTransaction(t *testing.T) {
	svc, _ := NewService(&stubEventsRepo{}, &stubOutbox{})
	err := svc.Record(context.Background(), nil, Entry{StoreID: uuid.New(), Type: enums.EventStoreCreated})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRecordRejectsUnknownType(t *testing.T) {
	svc, _ := NewService(&stubEventsRepo{}, &stubOutbox{})
	err := svc.Record(context.Background(), &gorm.DB{}, Entry{StoreID: uuid.New(), Type: "item_exploded"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestRecordStoreScopedAggregates(t *testing.T) {
	repo := &stubEventsRepo{}
	pub := &stubOutbox{}
	svc, _ := NewService(repo, pub)

	storeID := uuid.New()
	entry := Entry{StoreID: storeID, Type: enums.EventStoreWithdrawal, AmountCents: 900, CapabilityID: uuid.NewString()}
	if err := svc.Record(context.Background(), &gorm.DB{}, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	emitted := pub.emitted[0]
	if emitted.AggregateType != enums.AggregateStore || emitted.AggregateID != storeID {
		t.Fatalf("withdrawal should aggregate on store, got %s/%s", emitted.AggregateType, emitted.AggregateID)
	}
}

func TestListByStorePagination(t *testing.T) {
	storeID := uuid.New()
	now := time.Now()
	rows := make([]models.MarketplaceEvent, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.MarketplaceEvent{
			ID:        uuid.New(),
			StoreID:   storeID,
			Type:      enums.EventItemAdded,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	repo := &stubEventsRepo{
		listByStore: func(ctx context.Context, gotStore uuid.UUID, limit int, before *Cursor) ([]models.MarketplaceEvent, error) {
			if gotStore != storeID {
				t.Fatalf("unexpected store %s", gotStore)
			}
			if limit != 3 {
				t.Fatalf("expected over-fetch limit 3, got %d", limit)
			}
			return rows, nil
		},
	}
	svc, _ := NewService(repo, &stubOutbox{})

	page, err := svc.ListByStore(context.Background(), storeID, 2, "")
	if err != nil {
		t.Fatalf("ListByStore: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page.Events))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor when more rows exist")
	}

	cursor, err := DecodeCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("decode returned cursor: %v", err)
	}
	if cursor.ID != rows[1].ID {
		t.Fatalf("cursor should point at last returned row")
	}
}

func TestListByStoreRejectsBadCursor(t *testing.T) {
	svc, _ := NewService(&stubEventsRepo{}, &stubOutbox{})
	_, err := svc.ListByStore(context.Background(), uuid.New(), 10, "not-a-cursor")
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{CreatedAt: time.Unix(0, 1723456789012345678), ID: uuid.New()}
	decoded, err := DecodeCursor(original.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) || decoded.ID != original.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, original)
	}
}
