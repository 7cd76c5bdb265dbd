package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaloza-dev/marketstall-backend/pkg/db/models"
	"github.com/avaloza-dev/marketstall-backend/pkg/enums"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/outbox"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Entry describes one audit trail append. Quantity and AmountCents are
// zero for event types they do not apply to.
type Entry struct {
	StoreID      uuid.UUID
	ItemID       *uuid.UUID
	Type         enums.MarketplaceEventType
	Quantity     int
	AmountCents  int64
	Actor        string
	CapabilityID string
	IsReturn     bool
}

// EventDTO exposes one trail row in API responses.
type EventDTO struct {
	ID          uuid.UUID                  `json:"id"`
	StoreID     uuid.UUID                  `json:"store_id"`
	ItemID      *uuid.UUID                 `json:"item_id,omitempty"`
	Type        enums.MarketplaceEventType `json:"type"`
	Quantity    int                        `json:"quantity,omitempty"`
	AmountCents int64                      `json:"amount_cents,omitempty"`
	Actor       string                     `json:"actor,omitempty"`
	IsReturn    bool                       `json:"is_return,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// EventPage is one cursor page of a store's trail, newest first.
type EventPage struct {
	Events     []EventDTO `json:"events"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// Service is the append-only event trail. Record must run inside the
// transaction of the mutation it documents so both commit atomically.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int, cursor string) (*EventPage, error)
}

type service struct {
	repo   Repository
	outbox outboxPublisher
}

// NewService builds the event trail service.
func NewService(repo Repository, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("events repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: publisher}, nil
}

// eventPayload is the outbox data body mirroring the trail row.
type eventPayload struct {
	StoreID     uuid.UUID  `json:"store_id"`
	ItemID      *uuid.UUID `json:"item_id,omitempty"`
	Quantity    int        `json:"quantity,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	IsReturn    bool       `json:"is_return,omitempty"`
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if entry.StoreID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "store id required")
	}
	if !entry.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown event type %q", entry.Type))
	}

	row := models.MarketplaceEvent{
		StoreID:     entry.StoreID,
		ItemID:      entry.ItemID,
		Type:        entry.Type,
		Quantity:    entry.Quantity,
		AmountCents: entry.AmountCents,
		Actor:       entry.Actor,
		IsReturn:    entry.IsReturn,
	}
	if err := s.repo.WithTx(tx).Insert(ctx, &row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert marketplace event")
	}

	eventType, aggregateType := outboxMapping(entry.Type)
	aggregateID := entry.StoreID
	if aggregateType == enums.AggregateItem && entry.ItemID != nil {
		aggregateID = *entry.ItemID
	}
	var actor *outbox.ActorRef
	if entry.Actor != "" || entry.CapabilityID != "" {
		actor = &outbox.ActorRef{Identity: entry.Actor, CapabilityID: entry.CapabilityID}
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Actor:         actor,
		Data: eventPayload{
			StoreID:     entry.StoreID,
			ItemID:      entry.ItemID,
			Quantity:    entry.Quantity,
			AmountCents: entry.AmountCents,
			IsReturn:    entry.IsReturn,
		},
		Version: 1,
	})
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, limit int, cursor string) (*EventPage, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	before, err := DecodeCursor(cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.ListByStore(ctx, storeID, limit+1, before)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list marketplace events")
	}

	page := &EventPage{Events: make([]EventDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		page.Events = append(page.Events, EventDTO{
			ID:          row.ID,
			StoreID:     row.StoreID,
			ItemID:      row.ItemID,
			Type:        row.Type,
			Quantity:    row.Quantity,
			AmountCents: row.AmountCents,
			Actor:       row.Actor,
			IsReturn:    row.IsReturn,
			CreatedAt:   row.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return page, nil
}

func outboxMapping(eventType enums.MarketplaceEventType) (enums.OutboxEventType, enums.OutboxAggregateType) {
	switch eventType {
	case enums.EventStoreCreated:
		return enums.OutboxStoreCreated, enums.AggregateStore
	case enums.EventItemAdded:
		return enums.OutboxItemAdded, enums.AggregateItem
	case enums.EventItemPurchased:
		return enums.OutboxItemPurchased, enums.AggregateItem
	case enums.EventItemUnlisted:
		return enums.OutboxItemUnlisted, enums.AggregateItem
	case enums.EventStoreWithdrawal:
		return enums.OutboxStoreWithdrawal, enums.AggregateStore
	case enums.EventDeliveryInitiated:
		return enums.OutboxDeliveryInitiated, enums.AggregateItem
	default:
		return enums.OutboxEventType(eventType), enums.AggregateStore
	}
}
