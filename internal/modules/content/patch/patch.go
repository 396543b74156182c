// Package patch applies ordered exact-match search/replace operations to a
// text body. Each search must match exactly once in the running body; the
// result is all-or-nothing.
package patch

import (
	"errors"
	"fmt"
	"strings"
)

type Operation struct {
	Search  string `json:"search" validate:"required"`
	Replace string `json:"replace"`
}

type Code string

const (
	CodeSearchNotFound Code = "search_not_found"
	CodeAmbiguousMatch Code = "ambiguous_match"
)

// ErrEmptySearch rejects an operation before any work happens.
var ErrEmptySearch = errors.New("patch operation has empty search text")

// Error describes the operation that could not be resolved to exactly one
// location. Body is the in-memory body at the time of failure, i.e. with the
// earlier operations already applied, so the caller can recompute its search.
type Error struct {
	Code    Code
	Index   int
	Search  string
	Applied int
	Body    string
}

func (e *Error) Error() string {
	switch e.Code {
	case CodeAmbiguousMatch:
		return fmt.Sprintf("operation %d: search text matches more than once; add surrounding context so it matches exactly one location", e.Index+1)
	default:
		return fmt.Sprintf("operation %d: search text not found in the current content", e.Index+1)
	}
}

// AsError unwraps a *Error from err.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) && pe != nil {
		return pe, true
	}
	return nil, false
}

// Validate checks operation shape without touching a body.
func Validate(ops []Operation) error {
	if len(ops) == 0 {
		return errors.New("at least one patch operation is required")
	}
	for i, op := range ops {
		if op.Search == "" {
			return fmt.Errorf("operation %d: %w", i+1, ErrEmptySearch)
		}
	}
	return nil
}

// Apply runs ops in order against a copy of body and returns the new body.
// On any failure the returned error is a *Error (or a validation error) and
// the caller must not persist anything.
func Apply(body string, ops []Operation) (string, error) {
	if err := Validate(ops); err != nil {
		return "", err
	}
	cur := body
	for i, op := range ops {
		idx := strings.Index(cur, op.Search)
		if idx < 0 {
			return "", &Error{Code: CodeSearchNotFound, Index: i, Search: op.Search, Applied: i, Body: cur}
		}
		if strings.Contains(cur[idx+len(op.Search):], op.Search) {
			return "", &Error{Code: CodeAmbiguousMatch, Index: i, Search: op.Search, Applied: i, Body: cur}
		}
		cur = cur[:idx] + op.Replace + cur[idx+len(op.Search):]
	}
	return cur, nil
}
