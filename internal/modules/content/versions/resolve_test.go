package versions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

func fieldsWith(ids ...string) Fields {
	out := Fields{GeneratedSource: "src"}
	for _, id := range ids {
		out.InputSchema = append(out.InputSchema, schema.Field{ID: id, Type: "text", Label: id})
	}
	return out
}

func TestResolvePinsOldVersion(t *testing.T) {
	dbc := dbctx.Context{Ctx: context.Background()}
	store := NewMemStore()
	id := uuid.New()
	store.Put(id, fieldsWith("a"))

	v2, err := store.CreateVersion(dbc, id, fieldsWith("a", "b"))
	if err != nil || v2 != 2 {
		t.Fatalf("CreateVersion = %d, %v", v2, err)
	}

	res, err := Resolve(dbc, store, id, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.UpgradeAvailable || res.ServedVersion != 1 || res.LatestVersion != 2 {
		t.Fatalf("resolution = %+v", res)
	}
	if len(res.Fields.InputSchema) != 1 || res.Fields.InputSchema[0].ID != "a" {
		t.Fatalf("expected version-1 fields, got %+v", res.Fields.InputSchema)
	}

	cosmetic := fieldsWith("a", "b")
	cosmetic.InputSchema[1].Label = "Bee"
	if err := store.UpdateCurrentSnapshot(dbc, id, cosmetic); err != nil {
		t.Fatalf("UpdateCurrentSnapshot: %v", err)
	}
	if v, _ := store.CurrentVersion(dbc, id); v != 2 {
		t.Fatalf("cosmetic edit changed version to %d", v)
	}
	again, err := Resolve(dbc, store, id, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if again.ServedVersion != 1 || len(again.Fields.InputSchema) != 1 {
		t.Fatalf("cosmetic edit leaked into pinned resolution: %+v", again)
	}
}

func TestResolveCurrentServesLive(t *testing.T) {
	dbc := dbctx.Context{Ctx: context.Background()}
	store := NewMemStore()
	id := uuid.New()
	store.Put(id, fieldsWith("a"))

	res, err := Resolve(dbc, store, id, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.UpgradeAvailable || res.ServedVersion != 1 || res.SnapshotMissing {
		t.Fatalf("resolution = %+v", res)
	}
}

func TestResolveMissingSnapshotDegrades(t *testing.T) {
	dbc := dbctx.Context{Ctx: context.Background()}
	store := NewMemStore()
	id := uuid.New()
	store.Put(id, fieldsWith("a"))
	if _, err := store.CreateVersion(dbc, id, fieldsWith("a", "b")); err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	store.Drop(id, 1)

	res, err := Resolve(dbc, store, id, 1)
	if err != nil {
		t.Fatalf("missing snapshot must not fail the read: %v", err)
	}
	if res.UpgradeAvailable || !res.SnapshotMissing || res.ServedVersion != 2 {
		t.Fatalf("resolution = %+v", res)
	}
	if len(res.Fields.InputSchema) != 2 {
		t.Fatalf("expected live fields, got %+v", res.Fields.InputSchema)
	}
}

func TestResolveUnknownTemplate(t *testing.T) {
	_, err := Resolve(dbctx.Context{Ctx: context.Background()}, NewMemStore(), uuid.New(), 1)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestMemStoreListVersions(t *testing.T) {
	dbc := dbctx.Context{Ctx: context.Background()}
	store := NewMemStore()
	id := uuid.New()
	store.Put(id, fieldsWith("a"))
	_, _ = store.CreateVersion(dbc, id, fieldsWith("a", "b"))
	_, _ = store.CreateVersion(dbc, id, fieldsWith("c"))

	list, err := store.ListVersions(dbc, id)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(list) != 3 || list[0].Version != 1 || list[2].Version != 3 {
		t.Fatalf("list = %+v", list)
	}
}

func TestMemStoreSnapshotsAreCopies(t *testing.T) {
	dbc := dbctx.Context{Ctx: context.Background()}
	store := NewMemStore()
	id := uuid.New()

	in := fieldsWith("a")
	in.SampleData = map[string]any{"nested": map[string]any{"k": "v"}, "list": []any{"x"}}
	in.Dependencies = []string{"dep"}
	store.Put(id, in)

	in.InputSchema[0].ID = "changed-by-caller"
	in.SampleData["nested"].(map[string]any)["k"] = "changed"
	in.Dependencies[0] = "changed"

	snap, err := store.SnapshotAt(dbc, id, 1)
	if err != nil || snap == nil {
		t.Fatalf("SnapshotAt: %v, %v", snap, err)
	}
	if snap.Fields.InputSchema[0].ID != "a" || snap.Fields.SampleData["nested"].(map[string]any)["k"] != "v" || snap.Fields.Dependencies[0] != "dep" {
		t.Fatalf("caller edits leaked into the snapshot: %+v", snap.Fields)
	}

	snap.Fields.InputSchema[0].ID = "changed-by-reader"
	snap.Fields.SampleData["list"].([]any)[0] = "y"
	cur, _ := store.Current(dbc, id)
	cur.Fields.SampleData["nested"].(map[string]any)["k"] = "changed"

	again, _ := store.SnapshotAt(dbc, id, 1)
	if again.Fields.InputSchema[0].ID != "a" || again.Fields.SampleData["list"].([]any)[0] != "x" {
		t.Fatalf("reader edits leaked into the snapshot: %+v", again.Fields)
	}
	live, _ := store.Current(dbc, id)
	if live.Fields.SampleData["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("reader edits leaked into live fields: %+v", live.Fields)
	}

	next := fieldsWith("a", "b")
	if _, err := store.CreateVersion(dbc, id, next); err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	next.InputSchema[1].Type = "number"
	v2, _ := store.SnapshotAt(dbc, id, 2)
	if v2.Fields.InputSchema[1].Type != "text" {
		t.Fatalf("CreateVersion kept the caller's slice")
	}
}
