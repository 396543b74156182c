package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type CourseSectionRepo interface {
	Create(dbc dbctx.Context, row *types.CourseSection) (*types.CourseSection, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseSection, error)
}

type courseSectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseSectionRepo(db *gorm.DB, baseLog *logger.Logger) CourseSectionRepo {
	return &courseSectionRepo{db: db, log: baseLog.With("repo", "CourseSectionRepo")}
}

func (r *courseSectionRepo) Create(dbc dbctx.Context, row *types.CourseSection) (*types.CourseSection, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *courseSectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseSection, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.CourseSection
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
