package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type TemplateVersionRepo interface {
	Create(dbc dbctx.Context, row *types.TemplateVersion) error
	Get(dbc dbctx.Context, templateID uuid.UUID, version int) (*types.TemplateVersion, error)
	ListByTemplateID(dbc dbctx.Context, templateID uuid.UUID) ([]*types.TemplateVersion, error)
	UpdateFields(dbc dbctx.Context, templateID uuid.UUID, version int, updates map[string]interface{}) (int64, error)
}

type templateVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateVersionRepo(db *gorm.DB, baseLog *logger.Logger) TemplateVersionRepo {
	return &templateVersionRepo{db: db, log: baseLog.With("repo", "TemplateVersionRepo")}
}

func (r *templateVersionRepo) Create(dbc dbctx.Context, row *types.TemplateVersion) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.TemplateID == uuid.Nil || row.Version <= 0 {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *templateVersionRepo) Get(dbc dbctx.Context, templateID uuid.UUID, version int) (*types.TemplateVersion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if templateID == uuid.Nil || version <= 0 {
		return nil, nil
	}
	var out []*types.TemplateVersion
	if err := t.WithContext(dbc.Ctx).
		Where("template_id = ? AND version = ?", templateID, version).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *templateVersionRepo) ListByTemplateID(dbc dbctx.Context, templateID uuid.UUID) ([]*types.TemplateVersion, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.TemplateVersion
	if templateID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("template_id = ?", templateID).
		Order("version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFields overwrites one snapshot row and reports how many rows matched.
func (r *templateVersionRepo) UpdateFields(dbc dbctx.Context, templateID uuid.UUID, version int, updates map[string]interface{}) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if templateID == uuid.Nil || version <= 0 || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.TemplateVersion{}).
		Where("template_id = ? AND version = ?", templateID, version).
		Updates(updates)
	return res.RowsAffected, res.Error
}
