// Package mutation is the single write path for content records. Every write
// passes the staleness guard, runs in one transaction and, once committed, is
// announced on the realtime bus.
package mutation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/modules/content/patch"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type Service interface {
	Read(dbc dbctx.Context, kind Kind, id uuid.UUID) (*Content, error)
	Replace(dbc dbctx.Context, kind Kind, id uuid.UUID, body string, title *string) (*WriteResult, error)
	Patch(dbc dbctx.Context, kind Kind, id uuid.UUID, ops []patch.Operation, title *string) (*WriteResult, error)

	// UpdateSchema applies a cosmetic schema edit in place. Structural edits
	// are rejected with CodeStructuralChangeRejected.
	UpdateSchema(dbc dbctx.Context, templateID uuid.UUID, fields []schema.Field) (*WriteResult, error)
	// UpdateSchemaVersioned is the privileged path: structural edits allocate
	// a new version, cosmetic ones update the current snapshot.
	UpdateSchemaVersioned(dbc dbctx.Context, templateID uuid.UUID, fields []schema.Field) (*WriteResult, error)
	ResolveTemplateForActivity(dbc dbctx.Context, activityID uuid.UUID) (*TemplateForActivity, error)
	ListVersions(dbc dbctx.Context, templateID uuid.UUID) (*VersionList, error)
	MigrateActivity(dbc dbctx.Context, activityID uuid.UUID, toVersion *int) (*Migration, error)

	ListConversation(dbc dbctx.Context, kind Kind, id uuid.UUID, limit int) ([]*types.ContentMessage, error)
	AppendMessage(dbc dbctx.Context, kind Kind, id uuid.UUID, role, content string) (*types.ContentMessage, error)
	// ClearConversation deletes the record's history and nulls both stamps.
	ClearConversation(dbc dbctx.Context, kind Kind, id uuid.UUID) (int64, error)

	CreateLibrary(dbc dbctx.Context, title string) (*types.Library, error)
	CreateDocument(dbc dbctx.Context, libraryID uuid.UUID, title, body string) (*types.Document, error)
	CreateCourseSection(dbc dbctx.Context, title string) (*types.CourseSection, error)
	CreateTemplate(dbc dbctx.Context, in CreateTemplateInput) (*types.Template, error)
	CreateActivity(dbc dbctx.Context, in CreateActivityInput) (*types.Activity, error)
	ListDocuments(dbc dbctx.Context, libraryID uuid.UUID) ([]*types.Document, error)
	ListActivities(dbc dbctx.Context, sectionID uuid.UUID) ([]*types.Activity, error)
}

type service struct {
	db      *gorm.DB
	log     *logger.Logger
	guard   staleness.Guard
	repos   repos.Set
	store   versions.Store
	notify  Notifier
	metrics *observability.Metrics

	stores    map[Kind]RecordStore
	templates *templateStore
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	guard staleness.Guard,
	repoSet repos.Set,
	store versions.Store,
	notify Notifier,
	metrics *observability.Metrics,
) Service {
	if notify == nil {
		notify = nopNotifier{}
	}
	tpl := newTemplateStore(repoSet.Templates, store)
	return &service{
		db:      db,
		log:     baseLog.With("service", "ContentMutationService"),
		guard:   guard,
		repos:   repoSet,
		store:   store,
		notify:  notify,
		metrics: metrics,
		stores: map[Kind]RecordStore{
			KindDocument: NewDocumentStore(repoSet.Documents),
			KindActivity: NewActivityStore(repoSet.Activities),
			KindTemplate: tpl,
		},
		templates: tpl,
	}
}

func (s *service) storeFor(kind Kind) (RecordStore, error) {
	st, ok := s.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown content kind %q", ErrValidation, kind)
	}
	return st, nil
}

func (s *service) inTx(dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return dbc.DB(s.db).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func (s *service) span(dbc dbctx.Context, name string, attrs ...attribute.KeyValue) (dbctx.Context, trace.Span) {
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, sp := observability.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return dbctx.Context{Ctx: ctx, Tx: dbc.Tx}, sp
}

func endSpan(sp trace.Span, err error, res *WriteResult) {
	switch {
	case err != nil:
		sp.RecordError(err)
		sp.SetStatus(codes.Error, err.Error())
	case res != nil && res.Failure != nil:
		sp.SetAttributes(attribute.String("content.failure", string(res.Failure.Code)))
	}
	sp.End()
}

func notFound(kind Kind, id uuid.UUID) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}

func (s *service) Read(dbc dbctx.Context, kind Kind, id uuid.UUID) (out *Content, err error) {
	dbc, sp := s.span(dbc, "content.read", attribute.String("content.kind", string(kind)), attribute.String("content.id", id.String()))
	defer func() { endSpan(sp, err, nil) }()

	st, err := s.storeFor(kind)
	if err != nil {
		return nil, err
	}
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		rec, err := st.Get(inner, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound(kind, id)
		}
		rec.Stamps = s.guard.RecordRead(rec.Stamps)
		if err := st.MarkRead(inner, id, rec.Stamps); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
		out = rec.content()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRead(string(kind))
	return out, nil
}

func (s *service) Replace(dbc dbctx.Context, kind Kind, id uuid.UUID, body string, title *string) (*WriteResult, error) {
	return s.write(dbc, kind, id, "replace", title, func(*Record) (string, *Failure, error) {
		return body, nil, nil
	})
}

func (s *service) Patch(dbc dbctx.Context, kind Kind, id uuid.UUID, ops []patch.Operation, title *string) (*WriteResult, error) {
	if err := patch.Validate(ops); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.write(dbc, kind, id, "patch", title, func(rec *Record) (string, *Failure, error) {
		next, err := patch.Apply(rec.Body, ops)
		if err != nil {
			if pe, ok := patch.AsError(err); ok {
				return "", patchFailure(pe, rec.Stamps), nil
			}
			return "", nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return next, nil, nil
	})
}

// write is the shared guarded write: load, check, compute, persist. Nothing
// is persisted when the guard or compute step rejects.
func (s *service) write(
	dbc dbctx.Context,
	kind Kind,
	id uuid.UUID,
	operation string,
	title *string,
	compute func(rec *Record) (string, *Failure, error),
) (res *WriteResult, err error) {
	dbc, sp := s.span(dbc, "content."+operation, attribute.String("content.kind", string(kind)), attribute.String("content.id", id.String()))
	defer func() { endSpan(sp, err, res) }()

	st, err := s.storeFor(kind)
	if err != nil {
		return nil, err
	}
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		rec, err := st.Get(inner, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound(kind, id)
		}
		if v := s.guard.CheckWrite(rec.Stamps); !v.Allowed {
			res = failed(staleFailure(rec.Stamps, v.Reason))
			return nil
		}
		body, failure, err := compute(rec)
		if err != nil {
			return err
		}
		if failure != nil {
			res = failed(failure)
			return nil
		}
		stamps := s.guard.AfterWrite(rec.Stamps)
		if err := st.SaveBody(inner, rec, body, title, stamps); err != nil {
			return err
		}
		saved, err := st.Get(inner, id)
		if err != nil {
			return err
		}
		if saved == nil {
			return notFound(kind, id)
		}
		res = &WriteResult{OK: true, Content: saved.content()}
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrValidation) {
			outcome = "validation_error"
		}
		s.metrics.RecordMutation(string(kind), operation, outcome)
		return nil, err
	}
	s.finishWrite(dbc, kind, id, operation, res)
	return res, nil
}

func (s *service) finishWrite(dbc dbctx.Context, kind Kind, id uuid.UUID, operation string, res *WriteResult) {
	if res.Failure != nil {
		s.metrics.RecordMutation(string(kind), operation, string(res.Failure.Code))
		s.log.Debug("write rejected", "kind", kind, "id", id, "operation", operation, "code", res.Failure.Code)
		return
	}
	s.metrics.RecordMutation(string(kind), operation, "ok")
	var stamps staleness.Stamps
	if res.Content != nil {
		stamps = staleness.Stamps{ModifiedAt: res.Content.ContentModifiedAt, ReadAt: res.Content.ContentReadAt}
	}
	s.notify.ContentUpdated(dbc.Ctx, kind, id, operation, stamps)
}
