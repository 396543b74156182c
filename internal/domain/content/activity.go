package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseSection owns activities.
type CourseSection struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null" json:"title"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseSection) TableName() string { return "course_section" }

// Activity is a structured data record rendered through a template. It is
// pinned to the template schema version it was created (or last migrated)
// against; DataSchemaVersion never exceeds the template's SchemaVersion.
type Activity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID `gorm:"type:uuid;column:section_id;not null;index" json:"section_id"`

	Title             string         `gorm:"column:title;not null" json:"title"`
	TemplateID        uuid.UUID      `gorm:"type:uuid;column:template_id;not null;index" json:"template_id"`
	DataSchemaVersion int            `gorm:"column:data_schema_version;not null" json:"data_schema_version"`
	// Plain json so the stored text round-trips byte for byte.
	Data              datatypes.JSON `gorm:"column:data;type:json" json:"data"`

	ContentModifiedAt *time.Time `gorm:"column:content_modified_at" json:"content_modified_at,omitempty"`
	ContentReadAt     *time.Time `gorm:"column:content_read_at" json:"content_read_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Activity) TableName() string { return "activity" }
