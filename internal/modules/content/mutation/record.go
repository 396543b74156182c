package mutation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

// Record is the kind-neutral view the service works on. It is reloaded on
// every call.
type Record struct {
	Kind   Kind
	ID     uuid.UUID
	Title  string
	Body   string
	Stamps staleness.Stamps

	TemplateID        uuid.UUID
	DataSchemaVersion int
	SchemaVersion     int
	InputSchema       []schema.Field
}

func (r *Record) content() *Content {
	c := &Content{
		Kind:              r.Kind,
		ID:                r.ID,
		Title:             r.Title,
		Body:              r.Body,
		ContentModifiedAt: r.Stamps.ModifiedAt,
		ContentReadAt:     r.Stamps.ReadAt,
	}
	switch r.Kind {
	case KindActivity:
		tid := r.TemplateID
		c.TemplateID = &tid
		c.DataSchemaVersion = r.DataSchemaVersion
	case KindTemplate:
		c.SchemaVersion = r.SchemaVersion
		c.InputSchema = r.InputSchema
	}
	return c
}

// RecordStore is the per-kind capability the service needs. Get returns
// (nil, nil) when the record does not exist.
type RecordStore interface {
	Kind() Kind
	Get(dbc dbctx.Context, id uuid.UUID) (*Record, error)
	MarkRead(dbc dbctx.Context, id uuid.UUID, stamps staleness.Stamps) error
	// SaveBody persists body, the optional title and stamps. A body the kind
	// cannot hold is reported as ErrValidation.
	SaveBody(dbc dbctx.Context, rec *Record, body string, title *string, stamps staleness.Stamps) error
	ResetStamps(dbc dbctx.Context, id uuid.UUID) error
}

func stampColumns(s staleness.Stamps) map[string]interface{} {
	return map[string]interface{}{
		"content_modified_at": nullableTime(s.ModifiedAt),
		"content_read_at":     nullableTime(s.ReadAt),
	}
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func readColumns(s staleness.Stamps) map[string]interface{} {
	return map[string]interface{}{"content_read_at": nullableTime(s.ReadAt)}
}

func withTitle(cols map[string]interface{}, title *string) map[string]interface{} {
	if title != nil && strings.TrimSpace(*title) != "" {
		cols["title"] = strings.TrimSpace(*title)
	}
	return cols
}

// ---- documents ----

type documentStore struct {
	docs repos.DocumentRepo
}

func NewDocumentStore(docs repos.DocumentRepo) RecordStore {
	return &documentStore{docs: docs}
}

func (s *documentStore) Kind() Kind { return KindDocument }

func (s *documentStore) Get(dbc dbctx.Context, id uuid.UUID) (*Record, error) {
	doc, err := s.docs.GetByID(dbc, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return &Record{
		Kind:   KindDocument,
		ID:     doc.ID,
		Title:  doc.Title,
		Body:   doc.Body,
		Stamps: staleness.Stamps{ModifiedAt: doc.ContentModifiedAt, ReadAt: doc.ContentReadAt},
	}, nil
}

func (s *documentStore) MarkRead(dbc dbctx.Context, id uuid.UUID, stamps staleness.Stamps) error {
	return s.docs.UpdateFields(dbc, id, readColumns(stamps))
}

func (s *documentStore) SaveBody(dbc dbctx.Context, rec *Record, body string, title *string, stamps staleness.Stamps) error {
	cols := withTitle(stampColumns(stamps), title)
	cols["body"] = body
	return s.docs.UpdateFields(dbc, rec.ID, cols)
}

func (s *documentStore) ResetStamps(dbc dbctx.Context, id uuid.UUID) error {
	return s.docs.UpdateFields(dbc, id, stampColumns(staleness.Stamps{}))
}

// ---- activities ----

type activityStore struct {
	acts repos.ActivityRepo
}

func NewActivityStore(acts repos.ActivityRepo) RecordStore {
	return &activityStore{acts: acts}
}

func (s *activityStore) Kind() Kind { return KindActivity }

func (s *activityStore) Get(dbc dbctx.Context, id uuid.UUID) (*Record, error) {
	act, err := s.acts.GetByID(dbc, id)
	if err != nil || act == nil {
		return nil, err
	}
	body, err := renderData(act.Data)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w", act.ID, err)
	}
	return &Record{
		Kind:              KindActivity,
		ID:                act.ID,
		Title:             act.Title,
		Body:              body,
		Stamps:            staleness.Stamps{ModifiedAt: act.ContentModifiedAt, ReadAt: act.ContentReadAt},
		TemplateID:        act.TemplateID,
		DataSchemaVersion: act.DataSchemaVersion,
	}, nil
}

func (s *activityStore) MarkRead(dbc dbctx.Context, id uuid.UUID, stamps staleness.Stamps) error {
	return s.acts.UpdateFields(dbc, id, readColumns(stamps))
}

func (s *activityStore) SaveBody(dbc dbctx.Context, rec *Record, body string, title *string, stamps staleness.Stamps) error {
	data, err := parseData(body)
	if err != nil {
		return err
	}
	cols := withTitle(stampColumns(stamps), title)
	cols["data"] = data
	return s.acts.UpdateFields(dbc, rec.ID, cols)
}

func (s *activityStore) ResetStamps(dbc dbctx.Context, id uuid.UUID) error {
	return s.acts.UpdateFields(dbc, id, stampColumns(staleness.Stamps{}))
}

// renderData turns stored activity data into the indented JSON text that
// reads and patches operate on.
func renderData(raw datatypes.JSON) (string, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return "{}", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return "", fmt.Errorf("decode data: %w", err)
	}
	return buf.String(), nil
}

// parseData accepts only a JSON object and stores its text compacted, so
// number literals and escapes are kept as written.
func parseData(body string) (datatypes.JSON, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: activity data must be a JSON object: %v", ErrValidation, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: activity data must be a JSON object", ErrValidation)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err != nil {
		return nil, fmt.Errorf("%w: activity data must be a JSON object: %v", ErrValidation, err)
	}
	return datatypes.JSON(buf.Bytes()), nil
}

// decodeData reads stored activity data with numbers kept as json.Number.
func decodeData(raw datatypes.JSON) (map[string]any, error) {
	out := map[string]any{}
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return out, nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// encodeData is json.Marshal without HTML escaping.
func encodeData(v any) (datatypes.JSON, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ---- templates ----

// templateStore writes generated source through the version store so the
// current snapshot tracks the live row.
type templateStore struct {
	templates repos.TemplateRepo
	versions  versions.Store
}

func newTemplateStore(templates repos.TemplateRepo, store versions.Store) *templateStore {
	return &templateStore{templates: templates, versions: store}
}

func (s *templateStore) Kind() Kind { return KindTemplate }

func (s *templateStore) Get(dbc dbctx.Context, id uuid.UUID) (*Record, error) {
	tpl, err := s.templates.GetByID(dbc, id)
	if err != nil || tpl == nil {
		return nil, err
	}
	fields, err := versions.FromTemplate(tpl)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tpl.ID, err)
	}
	return &Record{
		Kind:          KindTemplate,
		ID:            tpl.ID,
		Title:         tpl.Name,
		Body:          tpl.GeneratedSource,
		Stamps:        staleness.Stamps{ModifiedAt: tpl.ContentModifiedAt, ReadAt: tpl.ContentReadAt},
		SchemaVersion: tpl.SchemaVersion,
		InputSchema:   fields.InputSchema,
	}, nil
}

func (s *templateStore) MarkRead(dbc dbctx.Context, id uuid.UUID, stamps staleness.Stamps) error {
	return s.templates.UpdateFields(dbc, id, readColumns(stamps))
}

func (s *templateStore) SaveBody(dbc dbctx.Context, rec *Record, body string, title *string, stamps staleness.Stamps) error {
	cur, err := s.versions.Current(dbc, rec.ID)
	if err != nil {
		return err
	}
	if cur == nil {
		return versions.ErrTemplateNotFound
	}
	fields := cur.Fields
	fields.GeneratedSource = body
	if err := s.versions.UpdateCurrentSnapshot(dbc, rec.ID, fields); err != nil {
		return err
	}
	cols := stampColumns(stamps)
	if title != nil && strings.TrimSpace(*title) != "" {
		cols["name"] = strings.TrimSpace(*title)
	}
	return s.templates.UpdateFields(dbc, rec.ID, cols)
}

func (s *templateStore) SaveStamps(dbc dbctx.Context, id uuid.UUID, stamps staleness.Stamps) error {
	return s.templates.UpdateFields(dbc, id, stampColumns(stamps))
}

func (s *templateStore) ResetStamps(dbc dbctx.Context, id uuid.UUID) error {
	return s.SaveStamps(dbc, id, staleness.Stamps{})
}
