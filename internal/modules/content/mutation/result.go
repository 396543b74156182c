package mutation

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/modules/content/patch"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

type FailureCode string

const (
	CodeStaleContext             FailureCode = "stale_context"
	CodeSearchNotFound           FailureCode = FailureCode(patch.CodeSearchNotFound)
	CodeAmbiguousMatch           FailureCode = FailureCode(patch.CodeAmbiguousMatch)
	CodeStructuralChangeRejected FailureCode = "structural_change_rejected"
)

// Failure is a recoverable rejection. It is returned as a value alongside a
// nil error so callers (HTTP and agent) can show it to whoever issued the
// write.
type Failure struct {
	Code    FailureCode `json:"code"`
	Message string      `json:"message"`

	ContentModifiedAt *time.Time `json:"content_modified_at,omitempty"`
	ContentReadAt     *time.Time `json:"content_read_at,omitempty"`

	// Patch failures.
	CurrentContent    string `json:"current_content,omitempty"`
	OperationIndex    *int   `json:"operation_index,omitempty"`
	AppliedOperations int    `json:"applied_operations,omitempty"`

	// Structural rejections.
	AddedFields   []string `json:"added_fields,omitempty"`
	RemovedFields []string `json:"removed_fields,omitempty"`
	RetypedFields []string `json:"retyped_fields,omitempty"`
}

// Content is a record as handed to readers.
type Content struct {
	Kind              Kind       `json:"kind"`
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Body              string     `json:"body"`
	ContentModifiedAt *time.Time `json:"content_modified_at"`
	ContentReadAt     *time.Time `json:"content_read_at"`

	TemplateID        *uuid.UUID     `json:"template_id,omitempty"`
	DataSchemaVersion int            `json:"data_schema_version,omitempty"`
	SchemaVersion     int            `json:"schema_version,omitempty"`
	InputSchema       []schema.Field `json:"input_schema,omitempty"`
}

type WriteResult struct {
	OK      bool     `json:"ok"`
	Content *Content `json:"content,omitempty"`
	Failure *Failure `json:"failure,omitempty"`

	// Schema writes only.
	Version        int  `json:"version,omitempty"`
	VersionCreated bool `json:"version_created,omitempty"`
}

func failed(f *Failure) *WriteResult { return &WriteResult{Failure: f} }

func staleFailure(s staleness.Stamps, reason string) *Failure {
	return &Failure{
		Code:              CodeStaleContext,
		Message:           reason,
		ContentModifiedAt: s.ModifiedAt,
		ContentReadAt:     s.ReadAt,
	}
}

func patchFailure(pe *patch.Error, s staleness.Stamps) *Failure {
	idx := pe.Index
	return &Failure{
		Code:              FailureCode(pe.Code),
		Message:           pe.Error(),
		ContentModifiedAt: s.ModifiedAt,
		ContentReadAt:     s.ReadAt,
		CurrentContent:    pe.Body,
		OperationIndex:    &idx,
		AppliedOperations: pe.Applied,
	}
}
