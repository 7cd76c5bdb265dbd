package enums

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateStore  OutboxAggregateType = "store"
	AggregateItem   OutboxAggregateType = "item"
	AggregateRating OutboxAggregateType = "rating"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateStore,
	AggregateItem,
	AggregateRating,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType mirrors the marketplace event variants on the outbox side.
type OutboxEventType string

const (
	OutboxStoreCreated      OutboxEventType = "store_created"
	OutboxItemAdded         OutboxEventType = "item_added"
	OutboxItemPurchased     OutboxEventType = "item_purchased"
	OutboxItemUnlisted      OutboxEventType = "item_unlisted"
	OutboxStoreWithdrawal   OutboxEventType = "store_withdrawal"
	OutboxDeliveryInitiated OutboxEventType = "delivery_initiated"
	OutboxRatingCreated     OutboxEventType = "rating_created"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxStoreCreated,
	OutboxItemAdded,
	OutboxItemPurchased,
	OutboxItemUnlisted,
	OutboxStoreWithdrawal,
	OutboxDeliveryInitiated,
	OutboxRatingCreated,
}

// IsValid reports whether the value matches the event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}
