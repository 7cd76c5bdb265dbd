package enums

import "fmt"

// MarketplaceEventType enumerates the append-only audit trail variants.
type MarketplaceEventType string

const (
	EventStoreCreated      MarketplaceEventType = "store_created"
	EventItemAdded         MarketplaceEventType = "item_added"
	EventItemPurchased     MarketplaceEventType = "item_purchased"
	EventItemUnlisted      MarketplaceEventType = "item_unlisted"
	EventStoreWithdrawal   MarketplaceEventType = "store_withdrawal"
	EventDeliveryInitiated MarketplaceEventType = "delivery_initiated"
)

var validMarketplaceEventTypes = []MarketplaceEventType{
	EventStoreCreated,
	EventItemAdded,
	EventItemPurchased,
	EventItemUnlisted,
	EventStoreWithdrawal,
	EventDeliveryInitiated,
}

// IsValid reports whether the value matches the marketplace_event_type enum.
func (m MarketplaceEventType) IsValid() bool {
	for _, candidate := range validMarketplaceEventTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMarketplaceEventType converts raw input into MarketplaceEventType.
func ParseMarketplaceEventType(value string) (MarketplaceEventType, error) {
	for _, candidate := range validMarketplaceEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid marketplace event type %q", value)
}
