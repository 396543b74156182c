package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-content/internal/data/repos/content"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type LibraryRepo = content.LibraryRepo
type DocumentRepo = content.DocumentRepo
type CourseSectionRepo = content.CourseSectionRepo
type ActivityRepo = content.ActivityRepo
type TemplateRepo = content.TemplateRepo
type TemplateVersionRepo = content.TemplateVersionRepo
type ContentMessageRepo = content.ContentMessageRepo

type Set struct {
	Libraries        LibraryRepo
	Documents        DocumentRepo
	Sections         CourseSectionRepo
	Activities       ActivityRepo
	Templates        TemplateRepo
	TemplateVersions TemplateVersionRepo
	Messages         ContentMessageRepo
}

func New(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Libraries:        content.NewLibraryRepo(db, log),
		Documents:        content.NewDocumentRepo(db, log),
		Sections:         content.NewCourseSectionRepo(db, log),
		Activities:       content.NewActivityRepo(db, log),
		Templates:        content.NewTemplateRepo(db, log),
		TemplateVersions: content.NewTemplateVersionRepo(db, log),
		Messages:         content.NewContentMessageRepo(db, log),
	}
}
