package versions

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type gormStore struct {
	db        *gorm.DB
	log       *logger.Logger
	templates repos.TemplateRepo
	snapshots repos.TemplateVersionRepo
}

// NewGormStore keeps the pointer on template.schema_version and the
// snapshots in template_version.
func NewGormStore(db *gorm.DB, log *logger.Logger, templates repos.TemplateRepo, snapshots repos.TemplateVersionRepo) Store {
	return &gormStore{
		db:        db,
		log:       log.With("service", "TemplateVersionStore"),
		templates: templates,
		snapshots: snapshots,
	}
}

func (s *gormStore) Current(dbc dbctx.Context, templateID uuid.UUID) (*Snapshot, error) {
	tpl, err := s.templates.GetByID(dbc, templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, nil
	}
	fields, err := FromTemplate(tpl)
	if err != nil {
		return nil, err
	}
	return &Snapshot{TemplateID: tpl.ID, Version: tpl.SchemaVersion, Fields: fields, CreatedAt: tpl.UpdatedAt}, nil
}

func (s *gormStore) CurrentVersion(dbc dbctx.Context, templateID uuid.UUID) (int, error) {
	tpl, err := s.templates.GetByID(dbc, templateID)
	if err != nil {
		return 0, err
	}
	if tpl == nil {
		return 0, ErrTemplateNotFound
	}
	return tpl.SchemaVersion, nil
}

func (s *gormStore) SnapshotAt(dbc dbctx.Context, templateID uuid.UUID, version int) (*Snapshot, error) {
	row, err := s.snapshots.Get(dbc, templateID, version)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	fields, err := FromTemplateVersion(row)
	if err != nil {
		return nil, err
	}
	return &Snapshot{TemplateID: row.TemplateID, Version: row.Version, Fields: fields, CreatedAt: row.CreatedAt}, nil
}

func (s *gormStore) UpdateCurrentSnapshot(dbc dbctx.Context, templateID uuid.UUID, fields Fields) error {
	cols, err := fields.Columns()
	if err != nil {
		return err
	}
	return s.inTx(dbc, func(inner dbctx.Context) error {
		tpl, err := s.templates.GetByID(inner, templateID)
		if err != nil {
			return err
		}
		if tpl == nil {
			return ErrTemplateNotFound
		}
		n, err := s.snapshots.UpdateFields(inner, templateID, tpl.SchemaVersion, copyCols(cols))
		if err != nil {
			return fmt.Errorf("update snapshot v%d: %w", tpl.SchemaVersion, err)
		}
		if n == 0 {
			// First write of a new template, or a template predating
			// snapshots.
			s.log.Debug("current snapshot missing, inserting", "template_id", templateID, "version", tpl.SchemaVersion)
			if err := s.snapshots.Create(inner, snapshotRow(templateID, tpl.SchemaVersion, cols)); err != nil {
				return fmt.Errorf("insert snapshot v%d: %w", tpl.SchemaVersion, err)
			}
		}
		return s.templates.UpdateFields(inner, templateID, copyCols(cols))
	})
}

func (s *gormStore) CreateVersion(dbc dbctx.Context, templateID uuid.UUID, fields Fields) (int, error) {
	cols, err := fields.Columns()
	if err != nil {
		return 0, err
	}
	var next int
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		tpl, err := s.templates.GetByID(inner, templateID)
		if err != nil {
			return err
		}
		if tpl == nil {
			return ErrTemplateNotFound
		}
		next = tpl.SchemaVersion + 1
		if err := s.snapshots.Create(inner, snapshotRow(templateID, next, cols)); err != nil {
			return fmt.Errorf("insert snapshot v%d: %w", next, err)
		}
		updates := copyCols(cols)
		updates["schema_version"] = next
		return s.templates.UpdateFields(inner, templateID, updates)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("template version created", "template_id", templateID, "version", next)
	return next, nil
}

func (s *gormStore) ListVersions(dbc dbctx.Context, templateID uuid.UUID) ([]VersionInfo, error) {
	rows, err := s.snapshots.ListByTemplateID(dbc, templateID)
	if err != nil {
		return nil, err
	}
	out := make([]VersionInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, VersionInfo{Version: r.Version, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *gormStore) inTx(dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func snapshotRow(templateID uuid.UUID, version int, cols map[string]interface{}) *types.TemplateVersion {
	row := &types.TemplateVersion{TemplateID: templateID, Version: version}
	row.InputSchema, _ = cols["input_schema"].(datatypes.JSON)
	row.GeneratedSource, _ = cols["generated_source"].(string)
	row.SampleData, _ = cols["sample_data"].(datatypes.JSON)
	row.Dependencies, _ = cols["dependencies"].(datatypes.JSON)
	row.ToolList, _ = cols["tool_list"].(datatypes.JSON)
	return row
}

func copyCols(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
