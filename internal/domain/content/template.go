package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Template is a component template. The versionable columns on this row are
// the live fields of the current SchemaVersion; older versions live in
// TemplateVersion rows.
type Template struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null" json:"name"`

	SchemaVersion int `gorm:"column:schema_version;not null;default:1" json:"schema_version"`

	InputSchema     datatypes.JSON `gorm:"column:input_schema;type:jsonb" json:"input_schema"`
	GeneratedSource string         `gorm:"column:generated_source;type:text" json:"generated_source"`
	SampleData      datatypes.JSON `gorm:"column:sample_data;type:jsonb" json:"sample_data"`
	Dependencies    datatypes.JSON `gorm:"column:dependencies;type:jsonb" json:"dependencies"`
	ToolList        datatypes.JSON `gorm:"column:tool_list;type:jsonb" json:"tool_list"`

	ContentModifiedAt *time.Time `gorm:"column:content_modified_at" json:"content_modified_at,omitempty"`
	ContentReadAt     *time.Time `gorm:"column:content_read_at" json:"content_read_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Template) TableName() string { return "template" }

// TemplateVersion is the snapshot of a template's versionable fields at one
// schema version. Rows below the template's current version are frozen.
type TemplateVersion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID uuid.UUID `gorm:"type:uuid;column:template_id;not null;uniqueIndex:idx_template_version,priority:1" json:"template_id"`
	Version    int       `gorm:"column:version;not null;uniqueIndex:idx_template_version,priority:2" json:"version"`

	InputSchema     datatypes.JSON `gorm:"column:input_schema;type:jsonb" json:"input_schema"`
	GeneratedSource string         `gorm:"column:generated_source;type:text" json:"generated_source"`
	SampleData      datatypes.JSON `gorm:"column:sample_data;type:jsonb" json:"sample_data"`
	Dependencies    datatypes.JSON `gorm:"column:dependencies;type:jsonb" json:"dependencies"`
	ToolList        datatypes.JSON `gorm:"column:tool_list;type:jsonb" json:"tool_list"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (TemplateVersion) TableName() string { return "template_version" }
