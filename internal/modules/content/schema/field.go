// Package schema models a template's input schema and decides whether an
// edit to it is structural.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Field is one input of a template. Label, Description, Placeholder and
// Default are presentation only; ID, Type and the nested Fields form the
// shape that bound activity data depends on.
type Field struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Label       string  `json:"label,omitempty"`
	Description string  `json:"description,omitempty"`
	Placeholder string  `json:"placeholder,omitempty"`
	Default     any     `json:"default,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

var ErrInvalid = errors.New("invalid schema")

// Key is the field id as validation and diffing compare it.
func (f Field) Key() string {
	return strings.TrimSpace(f.ID)
}

// IsComposite reports whether a field type carries nested fields.
func IsComposite(typ string) bool {
	switch normalizeType(typ) {
	case "object", "group", "array", "list", "repeater":
		return true
	default:
		return false
	}
}

func Validate(fields []Field) error {
	return validateLevel(fields, "")
}

func validateLevel(fields []Field, prefix string) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		id := f.Key()
		path := prefix + id
		if id == "" {
			return fmt.Errorf("%w: field %d under %q has no id", ErrInvalid, i, strings.TrimSuffix(prefix, "."))
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate field id %q", ErrInvalid, path)
		}
		seen[id] = true
		if normalizeType(f.Type) == "" {
			return fmt.Errorf("%w: field %q has no type", ErrInvalid, path)
		}
		if len(f.Fields) > 0 && !IsComposite(f.Type) {
			return fmt.Errorf("%w: field %q of type %q cannot have nested fields", ErrInvalid, path, f.Type)
		}
		if err := validateLevel(f.Fields, path+"."); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes a stored input schema. Empty input is an empty schema.
func Parse(raw []byte) ([]Field, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return []Field{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var out []Field
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after schema", ErrInvalid)
	}
	return out, nil
}

// Encode writes fields without HTML escaping so labels and defaults keep
// their text.
func Encode(fields []Field) ([]byte, error) {
	if fields == nil {
		fields = []Field{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func normalizeType(typ string) string {
	return strings.ToLower(strings.TrimSpace(typ))
}
