package realtime

import (
	"time"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventContentUpdated      SSEEvent = "content.updated"
	SSEEventVersionCreated      SSEEvent = "template.version_created"
	SSEEventActivityMigrated    SSEEvent = "activity.migrated"
	SSEEventConversationCleared SSEEvent = "conversation.cleared"
)

// SSEMessage is what travels over the bus and out to stream subscribers.
// Channel is "<kind>:<id>" for per-record streams.
type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// ContentUpdate is the payload of content.updated.
type ContentUpdate struct {
	Kind       string     `json:"kind"`
	RecordID   uuid.UUID  `json:"record_id"`
	Operation  string     `json:"operation"`
	ModifiedAt *time.Time `json:"content_modified_at,omitempty"`
	Version    int        `json:"version,omitempty"`
}

// RecordChannel names the stream for one record.
func RecordChannel(kind string, id uuid.UUID) string {
	return kind + ":" + id.String()
}
