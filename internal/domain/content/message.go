package content

import (
	"time"

	"github.com/google/uuid"
)

// ContentMessage is one turn of the agent conversation attached to a record.
type ContentMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecordKind string    `gorm:"column:record_kind;not null;index:idx_content_message_record,priority:1" json:"record_kind"`
	RecordID   uuid.UUID `gorm:"type:uuid;column:record_id;not null;index:idx_content_message_record,priority:2" json:"record_id"`

	Role    string `gorm:"column:role;not null" json:"role"` // "user" | "assistant" | "tool"
	Content string `gorm:"column:content;type:text" json:"content"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (ContentMessage) TableName() string { return "content_message" }
