package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type ContentMessageRepo interface {
	Create(dbc dbctx.Context, rows []*types.ContentMessage) ([]*types.ContentMessage, error)
	ListByRecord(dbc dbctx.Context, kind string, recordID uuid.UUID, limit int) ([]*types.ContentMessage, error)
	DeleteByRecord(dbc dbctx.Context, kind string, recordID uuid.UUID) (int64, error)
}

type contentMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentMessageRepo(db *gorm.DB, baseLog *logger.Logger) ContentMessageRepo {
	return &contentMessageRepo{db: db, log: baseLog.With("repo", "ContentMessageRepo")}
}

func (r *contentMessageRepo) Create(dbc dbctx.Context, rows []*types.ContentMessage) ([]*types.ContentMessage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ContentMessage{}, nil
	}
	for _, row := range rows {
		if row != nil && row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contentMessageRepo) ListByRecord(dbc dbctx.Context, kind string, recordID uuid.UUID, limit int) ([]*types.ContentMessage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContentMessage
	if kind == "" || recordID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).
		Where("record_kind = ? AND record_id = ?", kind, recordID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentMessageRepo) DeleteByRecord(dbc dbctx.Context, kind string, recordID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if kind == "" || recordID == uuid.Nil {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Where("record_kind = ? AND record_id = ?", kind, recordID).
		Delete(&types.ContentMessage{})
	return res.RowsAffected, res.Error
}
