package mutation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

// TemplateForActivity is what an activity renders against.
type TemplateForActivity struct {
	ActivityID uuid.UUID `json:"activity_id"`
	versions.Resolution
}

type VersionList struct {
	TemplateID     uuid.UUID              `json:"template_id"`
	CurrentVersion int                    `json:"current_version"`
	Versions       []versions.VersionInfo `json:"versions"`

	// BoundActivities counts activities per bound version.
	BoundActivities map[int]int `json:"bound_activities"`
}

type Migration struct {
	ActivityID    uuid.UUID `json:"activity_id"`
	TemplateID    uuid.UUID `json:"template_id"`
	FromVersion   int       `json:"from_version"`
	ToVersion     int       `json:"to_version"`
	LatestVersion int       `json:"latest_version"`
	Changed       bool      `json:"changed"`
	// FilledFields are top-level fields of the target schema that were
	// absent from the activity data and received the field default.
	FilledFields []string `json:"filled_fields,omitempty"`
}

const structuralMessage = "the schema edit adds, removes or retypes fields; " +
	"use update_schema_versioned so activities bound to the current version keep rendering"

func mapVersionErr(err error, templateID uuid.UUID) error {
	if errors.Is(err, versions.ErrTemplateNotFound) {
		return notFound(KindTemplate, templateID)
	}
	return err
}

func (s *service) UpdateSchema(dbc dbctx.Context, templateID uuid.UUID, fields []schema.Field) (res *WriteResult, err error) {
	dbc, sp := s.span(dbc, "content.update_schema", attribute.String("content.id", templateID.String()))
	defer func() { endSpan(sp, err, res) }()

	if err := schema.Validate(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		rec, err := s.templates.Get(inner, templateID)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound(KindTemplate, templateID)
		}
		if schema.HasStructuralChange(rec.InputSchema, fields) {
			added, removed, retyped := schema.Changes(rec.InputSchema, fields)
			res = failed(&Failure{
				Code:              CodeStructuralChangeRejected,
				Message:           structuralMessage,
				ContentModifiedAt: rec.Stamps.ModifiedAt,
				ContentReadAt:     rec.Stamps.ReadAt,
				AddedFields:       added,
				RemovedFields:     removed,
				RetypedFields:     retyped,
			})
			return nil
		}
		if v := s.guard.CheckWrite(rec.Stamps); !v.Allowed {
			res = failed(staleFailure(rec.Stamps, v.Reason))
			return nil
		}
		if err := s.saveSchema(inner, templateID, fields, false); err != nil {
			return err
		}
		res, err = s.templateResult(inner, templateID, false)
		return err
	})
	if err != nil {
		s.metrics.RecordMutation(string(KindTemplate), "update_schema", "error")
		return nil, mapVersionErr(err, templateID)
	}
	s.finishWrite(dbc, KindTemplate, templateID, "update_schema", res)
	return res, nil
}

func (s *service) UpdateSchemaVersioned(dbc dbctx.Context, templateID uuid.UUID, fields []schema.Field) (res *WriteResult, err error) {
	dbc, sp := s.span(dbc, "content.update_schema_versioned", attribute.String("content.id", templateID.String()))
	defer func() { endSpan(sp, err, res) }()

	if !ctxutil.GetRequestData(dbc.Ctx).IsPrivileged() {
		return nil, fmt.Errorf("%w: versioned schema writes require the admin or service role", ErrForbidden)
	}
	if err := schema.Validate(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	err = s.inTx(dbc, func(inner dbctx.Context) error {
		rec, err := s.templates.Get(inner, templateID)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound(KindTemplate, templateID)
		}
		if v := s.guard.CheckWrite(rec.Stamps); !v.Allowed {
			res = failed(staleFailure(rec.Stamps, v.Reason))
			return nil
		}
		structural := schema.HasStructuralChange(rec.InputSchema, fields)
		if err := s.saveSchema(inner, templateID, fields, structural); err != nil {
			return err
		}
		res, err = s.templateResult(inner, templateID, structural)
		return err
	})
	if err != nil {
		s.metrics.RecordMutation(string(KindTemplate), "update_schema_versioned", "error")
		return nil, mapVersionErr(err, templateID)
	}
	s.finishWrite(dbc, KindTemplate, templateID, "update_schema_versioned", res)
	if res.VersionCreated {
		s.metrics.RecordVersionCreated()
		s.notify.VersionCreated(dbc.Ctx, templateID, res.Version)
		s.log.Info("template schema versioned", "template_id", templateID, "version", res.Version)
	}
	return res, nil
}

// saveSchema writes the new input schema either as a fresh version or onto
// the current snapshot, then advances the stamps.
func (s *service) saveSchema(dbc dbctx.Context, templateID uuid.UUID, fields []schema.Field, newVersion bool) error {
	cur, err := s.store.Current(dbc, templateID)
	if err != nil {
		return err
	}
	if cur == nil {
		return notFound(KindTemplate, templateID)
	}
	next := cur.Fields
	next.InputSchema = fields
	if newVersion {
		if _, err := s.store.CreateVersion(dbc, templateID, next); err != nil {
			return err
		}
	} else if err := s.store.UpdateCurrentSnapshot(dbc, templateID, next); err != nil {
		return err
	}
	rec, err := s.templates.Get(dbc, templateID)
	if err != nil {
		return err
	}
	if rec == nil {
		return notFound(KindTemplate, templateID)
	}
	return s.templates.SaveStamps(dbc, templateID, s.guard.AfterWrite(rec.Stamps))
}

func (s *service) templateResult(dbc dbctx.Context, templateID uuid.UUID, created bool) (*WriteResult, error) {
	rec, err := s.templates.Get(dbc, templateID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(KindTemplate, templateID)
	}
	return &WriteResult{OK: true, Content: rec.content(), Version: rec.SchemaVersion, VersionCreated: created}, nil
}

func (s *service) ResolveTemplateForActivity(dbc dbctx.Context, activityID uuid.UUID) (*TemplateForActivity, error) {
	act, err := s.repos.Activities.GetByID(dbc, activityID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, notFound(KindActivity, activityID)
	}
	res, err := versions.Resolve(dbc, s.store, act.TemplateID, act.DataSchemaVersion)
	if err != nil {
		return nil, mapVersionErr(err, act.TemplateID)
	}
	if res.SnapshotMissing {
		s.log.Warn("bound template snapshot missing, serving live fields",
			"activity_id", activityID,
			"template_id", act.TemplateID,
			"bound_version", act.DataSchemaVersion,
			"latest_version", res.LatestVersion,
		)
	}
	return &TemplateForActivity{ActivityID: activityID, Resolution: *res}, nil
}

func (s *service) ListVersions(dbc dbctx.Context, templateID uuid.UUID) (*VersionList, error) {
	cur, err := s.store.CurrentVersion(dbc, templateID)
	if err != nil {
		return nil, mapVersionErr(err, templateID)
	}
	list, err := s.store.ListVersions(dbc, templateID)
	if err != nil {
		return nil, err
	}
	acts, err := s.repos.Activities.ListByTemplateID(dbc, templateID)
	if err != nil {
		return nil, err
	}
	bound := make(map[int]int, len(list))
	for _, a := range acts {
		bound[a.DataSchemaVersion]++
	}
	return &VersionList{TemplateID: templateID, CurrentVersion: cur, Versions: list, BoundActivities: bound}, nil
}

// MigrateActivity rebinds an activity to a newer schema version. The target
// defaults to the template's current version; it may not exceed the current
// version nor go below the existing binding.
func (s *service) MigrateActivity(dbc dbctx.Context, activityID uuid.UUID, toVersion *int) (out *Migration, err error) {
	dbc, sp := s.span(dbc, "content.migrate_activity", attribute.String("content.id", activityID.String()))
	defer func() { endSpan(sp, err, nil) }()

	err = s.inTx(dbc, func(inner dbctx.Context) error {
		act, err := s.repos.Activities.GetByID(inner, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return notFound(KindActivity, activityID)
		}
		latest, err := s.store.CurrentVersion(inner, act.TemplateID)
		if err != nil {
			return mapVersionErr(err, act.TemplateID)
		}
		target := latest
		if toVersion != nil {
			target = *toVersion
		}
		if target > latest {
			return fmt.Errorf("%w: version %d does not exist (latest is %d)", ErrValidation, target, latest)
		}
		if target < act.DataSchemaVersion {
			return fmt.Errorf("%w: cannot migrate backwards from version %d to %d", ErrValidation, act.DataSchemaVersion, target)
		}
		out = &Migration{
			ActivityID:    activityID,
			TemplateID:    act.TemplateID,
			FromVersion:   act.DataSchemaVersion,
			ToVersion:     target,
			LatestVersion: latest,
		}
		if target == act.DataSchemaVersion {
			return nil
		}

		fields, err := s.fieldsAt(inner, act.TemplateID, target, latest)
		if err != nil {
			return err
		}
		data, filled, err := fillDefaults(act.Data, fields)
		if err != nil {
			return err
		}
		out.Changed = true
		out.FilledFields = filled
		return s.repos.Activities.UpdateFields(inner, activityID, map[string]interface{}{
			"data_schema_version": target,
			"data":                data,
		})
	})
	if err != nil {
		s.metrics.RecordMigration("error")
		return nil, err
	}
	if !out.Changed {
		s.metrics.RecordMigration("noop")
		return out, nil
	}
	s.metrics.RecordMigration("ok")
	s.notify.ActivityMigrated(dbc.Ctx, activityID, out.FromVersion, out.ToVersion)
	s.log.Info("activity migrated", "activity_id", activityID, "from", out.FromVersion, "to", out.ToVersion)
	return out, nil
}

func (s *service) fieldsAt(dbc dbctx.Context, templateID uuid.UUID, version, latest int) ([]schema.Field, error) {
	if version == latest {
		cur, err := s.store.Current(dbc, templateID)
		if err != nil {
			return nil, err
		}
		if cur == nil {
			return nil, notFound(KindTemplate, templateID)
		}
		return cur.Fields.InputSchema, nil
	}
	snap, err := s.store.SnapshotAt(dbc, templateID, version)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: snapshot for version %d is missing", ErrValidation, version)
	}
	return snap.Fields.InputSchema, nil
}
