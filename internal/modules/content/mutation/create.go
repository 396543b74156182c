package mutation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

type CreateTemplateInput struct {
	Name   string
	Fields versions.Fields
}

type CreateActivityInput struct {
	SectionID  uuid.UUID
	TemplateID uuid.UUID
	Title      string
	// Data must be a JSON object; it defaults to the template's sample data
	// when empty.
	Data json.RawMessage
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	return title, nil
}

func (s *service) CreateLibrary(dbc dbctx.Context, title string) (*types.Library, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	return s.repos.Libraries.Create(dbc, &types.Library{Title: title})
}

func (s *service) CreateDocument(dbc dbctx.Context, libraryID uuid.UUID, title, body string) (*types.Document, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	lib, err := s.repos.Libraries.GetByID(dbc, libraryID)
	if err != nil {
		return nil, err
	}
	if lib == nil {
		return nil, fmt.Errorf("%w: library %s", ErrNotFound, libraryID)
	}
	created, err := s.repos.Documents.Create(dbc, []*types.Document{{LibraryID: libraryID, Title: title, Body: body}})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *service) CreateCourseSection(dbc dbctx.Context, title string) (*types.CourseSection, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	return s.repos.Sections.Create(dbc, &types.CourseSection{Title: title})
}

// CreateTemplate stores the template at version 1 together with its first
// snapshot.
func (s *service) CreateTemplate(dbc dbctx.Context, in CreateTemplateInput) (*types.Template, error) {
	name, err := requireTitle(in.Name)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(in.Fields.InputSchema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var out *types.Template
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		row, err := s.repos.Templates.Create(inner, &types.Template{Name: name, SchemaVersion: 1})
		if err != nil {
			return err
		}
		if err := s.store.UpdateCurrentSnapshot(inner, row.ID, in.Fields); err != nil {
			return err
		}
		out, err = s.repos.Templates.GetByID(inner, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("template created", "template_id", out.ID, "name", out.Name)
	return out, nil
}

// CreateActivity binds the new activity to the template's current version.
func (s *service) CreateActivity(dbc dbctx.Context, in CreateActivityInput) (*types.Activity, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	var out *types.Activity
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		sec, err := s.repos.Sections.GetByID(inner, in.SectionID)
		if err != nil {
			return err
		}
		if sec == nil {
			return fmt.Errorf("%w: section %s", ErrNotFound, in.SectionID)
		}
		cur, err := s.store.Current(inner, in.TemplateID)
		if err != nil {
			return err
		}
		if cur == nil {
			return notFound(KindTemplate, in.TemplateID)
		}
		var raw datatypes.JSON
		if text := strings.TrimSpace(string(in.Data)); text == "" || text == "null" {
			sample := cur.Fields.SampleData
			if sample == nil {
				sample = map[string]any{}
			}
			if raw, err = encodeData(sample); err != nil {
				return fmt.Errorf("%w: %v", ErrValidation, err)
			}
		} else if raw, err = parseData(text); err != nil {
			return err
		}
		created, err := s.repos.Activities.Create(inner, []*types.Activity{{
			SectionID:         in.SectionID,
			Title:             title,
			TemplateID:        in.TemplateID,
			DataSchemaVersion: cur.Version,
			Data:              raw,
		}})
		if err != nil {
			return err
		}
		out = created[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListDocuments(dbc dbctx.Context, libraryID uuid.UUID) ([]*types.Document, error) {
	lib, err := s.repos.Libraries.GetByID(dbc, libraryID)
	if err != nil {
		return nil, err
	}
	if lib == nil {
		return nil, fmt.Errorf("%w: library %s", ErrNotFound, libraryID)
	}
	return s.repos.Documents.ListByLibraryID(dbc, libraryID)
}

func (s *service) ListActivities(dbc dbctx.Context, sectionID uuid.UUID) ([]*types.Activity, error) {
	sec, err := s.repos.Sections.GetByID(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
	}
	return s.repos.Activities.ListBySectionID(dbc, sectionID)
}
