package handlers

import (
	"testing"

	"github.com/google/uuid"
)

func TestStreamChannels(t *testing.T) {
	id := uuid.New()

	got, err := streamChannels([]string{"documents:" + id.String(), " template:" + id.String()})
	if err != nil {
		t.Fatalf("streamChannels: %v", err)
	}
	want := []string{"document:" + id.String(), "template:" + id.String()}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("channel %d: got %q want %q", i, got[i], want[i])
		}
	}

	bad := [][]string{
		nil,
		{"documents"},
		{"widgets:" + id.String()},
		{"documents:not-a-uuid"},
	}
	for _, in := range bad {
		if _, err := streamChannels(in); err == nil {
			t.Fatalf("expected error for %v", in)
		}
	}
}
