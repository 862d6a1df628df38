package outbox

import (
	"encoding/json"
	"time"
)

// SchemaVersion is stamped on every envelope written by this build.
const SchemaVersion = 1

// ActorRef names the caller whose request produced the event. Relay-generated
// events leave it empty.
type ActorRef struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// PayloadEnvelope is the JSON stored in outbox_events.payload and published
// verbatim as the Pub/Sub message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
