package patch

import (
	"errors"
	"testing"
)

func TestApplyUniqueSubstitution(t *testing.T) {
	got, err := Apply("cat dog", []Operation{{Search: "cat", Replace: "mouse"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "mouse dog" {
		t.Fatalf("got %q want %q", got, "mouse dog")
	}
}

func TestApplyAmbiguous(t *testing.T) {
	body := "cat cat"
	got, err := Apply(body, []Operation{{Search: "cat", Replace: "dog"}})
	pe, ok := AsError(err)
	if !ok || pe.Code != CodeAmbiguousMatch {
		t.Fatalf("expected ambiguous match, got %v", err)
	}
	if got != "" {
		t.Fatalf("no body should be returned on failure, got %q", got)
	}
	if pe.Body != body {
		t.Fatalf("error body = %q want %q", pe.Body, body)
	}
}

func TestApplyOverlappingMatchIsAmbiguous(t *testing.T) {
	_, err := Apply("aaa", []Operation{{Search: "aa", Replace: "b"}})
	if pe, ok := AsError(err); ok {
		t.Fatalf("non-overlapping rescan should find no second match, got %v", pe)
	}
	_, err = Apply("aaaa", []Operation{{Search: "aa", Replace: "b"}})
	if pe, ok := AsError(err); !ok || pe.Code != CodeAmbiguousMatch {
		t.Fatalf("expected ambiguous, got %v", err)
	}
}

func TestApplyAllOrNothing(t *testing.T) {
	body := "A and C"
	_, err := Apply(body, []Operation{
		{Search: "A", Replace: "X"},
		{Search: "B", Replace: "Y"},
	})
	pe, ok := AsError(err)
	if !ok || pe.Code != CodeSearchNotFound {
		t.Fatalf("expected search_not_found, got %v", err)
	}
	if pe.Index != 1 || pe.Applied != 1 {
		t.Fatalf("index=%d applied=%d", pe.Index, pe.Applied)
	}
	if pe.Body != "X and C" {
		t.Fatalf("error should echo the in-memory progress, got %q", pe.Body)
	}
}

func TestApplySequentialAgainstRunningBody(t *testing.T) {
	got, err := Apply("one two", []Operation{
		{Search: "one", Replace: "three"},
		{Search: "three two", Replace: "done"},
		{Search: "done", Replace: ""},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "" {
		t.Fatalf("got %q want empty body", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("expected error for empty op list")
	}
	if err := Validate([]Operation{{Search: "", Replace: "x"}}); !errors.Is(err, ErrEmptySearch) {
		t.Fatalf("expected ErrEmptySearch, got %v", err)
	}
	if _, err := Apply("x", []Operation{{Search: ""}}); !errors.Is(err, ErrEmptySearch) {
		t.Fatalf("Apply should validate first, got %v", err)
	}
}
