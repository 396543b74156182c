package domain

import (
	"github.com/yungbote/neurobridge-content/internal/domain/content"
)

type Library = content.Library
type Document = content.Document
type CourseSection = content.CourseSection
type Activity = content.Activity
type Template = content.Template
type TemplateVersion = content.TemplateVersion
type ContentMessage = content.ContentMessage

// Models lists every table owned by the service, in migration order.
func Models() []any {
	return []any{
		&Library{},
		&Document{},
		&CourseSection{},
		&Template{},
		&TemplateVersion{},
		&Activity{},
		&ContentMessage{},
	}
}
