package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Library owns documents.
type Library struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title string    `gorm:"column:title;not null" json:"title"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Library) TableName() string { return "library" }

// Document is a free-text record inside a library.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LibraryID uuid.UUID `gorm:"type:uuid;column:library_id;not null;index" json:"library_id"`

	Title string `gorm:"column:title;not null" json:"title"`
	Body  string `gorm:"column:body;type:text" json:"body"`

	// Nil means no tracked write has happened yet.
	ContentModifiedAt *time.Time `gorm:"column:content_modified_at" json:"content_modified_at,omitempty"`
	// Nil means not read since the last tracked write.
	ContentReadAt *time.Time `gorm:"column:content_read_at" json:"content_read_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Document) TableName() string { return "document" }
