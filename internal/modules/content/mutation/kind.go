package mutation

import (
	"fmt"
	"strings"
)

// Kind names a content record type served by the mutation service.
type Kind string

const (
	KindDocument Kind = "document"
	KindActivity Kind = "activity"
	KindTemplate Kind = "template"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindDocument, KindActivity, KindTemplate}

// ParseKind accepts the singular or plural route form.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "document", "documents":
		return KindDocument, nil
	case "activity", "activities":
		return KindActivity, nil
	case "template", "templates":
		return KindTemplate, nil
	default:
		return "", fmt.Errorf("%w: unknown content kind %q", ErrValidation, raw)
	}
}

func (k Kind) String() string { return string(k) }

// Plural is the collection segment used in routes.
func (k Kind) Plural() string {
	if k == KindActivity {
		return "activities"
	}
	return string(k) + "s"
}
