package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who produced the event. For purchases and
// refunds this is the buyer identity; for owner operations it is the
// capability id.
type ActorRef struct {
	Identity     string `json:"identity,omitempty"`
	CapabilityID string `json:"capabilityId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
