package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/patch"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
)

var argValidate *validator.Validate

func init() {
	argValidate = validator.New()
	_ = argValidate.RegisterValidation("content_kind", func(fl validator.FieldLevel) bool {
		_, err := mutation.ParseKind(fl.Field().String())
		return err == nil
	})
}

type getContentArgs struct {
	Kind string `json:"kind" validate:"required,content_kind"`
	ID   string `json:"id" validate:"required,uuid"`
}

type replaceContentArgs struct {
	Kind    string  `json:"kind" validate:"required,content_kind"`
	ID      string  `json:"id" validate:"required,uuid"`
	Content string  `json:"content"`
	Title   *string `json:"title,omitempty"`
}

type patchContentArgs struct {
	Kind       string            `json:"kind" validate:"required,content_kind"`
	ID         string            `json:"id" validate:"required,uuid"`
	Operations []patch.Operation `json:"operations" validate:"required,min=1,dive"`
	Title      *string           `json:"title,omitempty"`
}

type getTemplateForActivityArgs struct {
	ActivityID string `json:"activity_id" validate:"required,uuid"`
}

type updateSchemaArgs struct {
	TemplateID  string         `json:"template_id" validate:"required,uuid"`
	InputSchema []schema.Field `json:"input_schema" validate:"required"`
}

type listVersionsArgs struct {
	TemplateID string `json:"template_id" validate:"required,uuid"`
}

// decodeArgs fills dst from raw and validates it. Errors are phrased for the
// agent.
func decodeArgs(raw json.RawMessage, dst any) error {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		text = "{}"
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	if err := argValidate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			parts := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid arguments: %s", strings.Join(parts, "; "))
		}
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}
