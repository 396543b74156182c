// Package versions owns a template's schema version pointer together with its
// per-version snapshots, and resolves which snapshot a bound activity renders.
package versions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/neurobridge-content/internal/domain"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

var ErrTemplateNotFound = errors.New("template not found")

// Fields is the versionable field set of a template.
type Fields struct {
	InputSchema     []schema.Field `json:"input_schema"`
	GeneratedSource string         `json:"generated_source"`
	SampleData      map[string]any `json:"sample_data"`
	Dependencies    []string       `json:"dependencies"`
	ToolList        []string       `json:"tool_list"`
}

type Snapshot struct {
	TemplateID uuid.UUID `json:"template_id"`
	Version    int       `json:"version"`
	Fields     Fields    `json:"fields"`
	CreatedAt  time.Time `json:"created_at"`
}

type VersionInfo struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the single owner of the current-version pointer and the snapshot
// rows. Lookups that find nothing return (nil, nil).
type Store interface {
	// Current returns the live fields at the template's current version.
	Current(dbc dbctx.Context, templateID uuid.UUID) (*Snapshot, error)
	CurrentVersion(dbc dbctx.Context, templateID uuid.UUID) (int, error)
	SnapshotAt(dbc dbctx.Context, templateID uuid.UUID, version int) (*Snapshot, error)
	// UpdateCurrentSnapshot overwrites the current version's snapshot in place.
	UpdateCurrentSnapshot(dbc dbctx.Context, templateID uuid.UUID, fields Fields) error
	// CreateVersion writes snapshot current+1 and advances the pointer.
	CreateVersion(dbc dbctx.Context, templateID uuid.UUID, fields Fields) (int, error)
	ListVersions(dbc dbctx.Context, templateID uuid.UUID) ([]VersionInfo, error)
}

// FromTemplate reads the live fields off a template row.
func FromTemplate(t *types.Template) (Fields, error) {
	if t == nil {
		return Fields{}, ErrTemplateNotFound
	}
	return decodeColumns(t.InputSchema, t.GeneratedSource, t.SampleData, t.Dependencies, t.ToolList)
}

func FromTemplateVersion(v *types.TemplateVersion) (Fields, error) {
	if v == nil {
		return Fields{}, nil
	}
	return decodeColumns(v.InputSchema, v.GeneratedSource, v.SampleData, v.Dependencies, v.ToolList)
}

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	out := Fields{
		InputSchema:     cloneSchema(f.InputSchema),
		GeneratedSource: f.GeneratedSource,
	}
	if f.SampleData != nil {
		out.SampleData = cloneValue(f.SampleData).(map[string]any)
	}
	if f.Dependencies != nil {
		out.Dependencies = append([]string{}, f.Dependencies...)
	}
	if f.ToolList != nil {
		out.ToolList = append([]string{}, f.ToolList...)
	}
	return out
}

func cloneSchema(in []schema.Field) []schema.Field {
	if in == nil {
		return nil
	}
	out := make([]schema.Field, len(in))
	for i, f := range in {
		f.Default = cloneValue(f.Default)
		f.Fields = cloneSchema(f.Fields)
		out[i] = f
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// Columns is the gorm update map for the versionable columns.
func (f Fields) Columns() (map[string]interface{}, error) {
	inputSchema, err := schema.Encode(f.InputSchema)
	if err != nil {
		return nil, err
	}
	sample := f.SampleData
	if sample == nil {
		sample = map[string]any{}
	}
	sampleJSON, err := encodeJSON(sample)
	if err != nil {
		return nil, fmt.Errorf("encode sample_data: %w", err)
	}
	deps, err := json.Marshal(nonNil(f.Dependencies))
	if err != nil {
		return nil, fmt.Errorf("encode dependencies: %w", err)
	}
	tools, err := json.Marshal(nonNil(f.ToolList))
	if err != nil {
		return nil, fmt.Errorf("encode tool_list: %w", err)
	}
	return map[string]interface{}{
		"input_schema":     datatypes.JSON(inputSchema),
		"generated_source": f.GeneratedSource,
		"sample_data":      datatypes.JSON(sampleJSON),
		"dependencies":     datatypes.JSON(deps),
		"tool_list":        datatypes.JSON(tools),
	}, nil
}

func decodeColumns(inputSchema datatypes.JSON, source string, sample, deps, tools datatypes.JSON) (Fields, error) {
	fields, err := schema.Parse(inputSchema)
	if err != nil {
		return Fields{}, err
	}
	out := Fields{
		InputSchema:     fields,
		GeneratedSource: source,
		SampleData:      map[string]any{},
		Dependencies:    []string{},
		ToolList:        []string{},
	}
	if err := decodeJSON(sample, &out.SampleData); err != nil {
		return Fields{}, fmt.Errorf("decode sample_data: %w", err)
	}
	if err := decodeJSON(deps, &out.Dependencies); err != nil {
		return Fields{}, fmt.Errorf("decode dependencies: %w", err)
	}
	if err := decodeJSON(tools, &out.ToolList); err != nil {
		return Fields{}, fmt.Errorf("decode tool_list: %w", err)
	}
	if out.SampleData == nil {
		out.SampleData = map[string]any{}
	}
	return out, nil
}

// decodeJSON keeps numbers as json.Number so large integers survive a
// decode/encode cycle.
func decodeJSON(raw datatypes.JSON, dst any) error {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	return dec.Decode(dst)
}

// encodeJSON is json.Marshal without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
