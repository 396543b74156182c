package versions

import (
	"context"
	"testing"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	"github.com/yungbote/neurobridge-content/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

func newGormStore(t *testing.T) (Store, dbctx.Context, repos.Set) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	set := repos.New(db, log)
	store := NewGormStore(db, log, set.Templates, set.TemplateVersions)
	return store, dbctx.Context{Ctx: context.Background(), Tx: tx}, set
}

func TestGormStoreUpdateCurrentInsertsMissingSnapshot(t *testing.T) {
	store, dbc, _ := newGormStore(t)
	tpl := testutil.SeedTemplate(t, dbc.Ctx, dbc.Tx, `[{"id":"title","type":"text","label":"Title"}]`)

	snap, err := store.SnapshotAt(dbc, tpl.ID, 1)
	if err != nil {
		t.Fatalf("SnapshotAt: %v", err)
	}
	if snap != nil {
		t.Fatalf("seeded template should have no snapshot row yet")
	}

	next := fieldsWith("title")
	next.InputSchema[0].Label = "Heading"
	if err := store.UpdateCurrentSnapshot(dbc, tpl.ID, next); err != nil {
		t.Fatalf("UpdateCurrentSnapshot: %v", err)
	}

	snap, err = store.SnapshotAt(dbc, tpl.ID, 1)
	if err != nil || snap == nil {
		t.Fatalf("SnapshotAt after update = %v, %v", snap, err)
	}
	if snap.Fields.InputSchema[0].Label != "Heading" {
		t.Fatalf("snapshot label = %q", snap.Fields.InputSchema[0].Label)
	}
	cur, err := store.Current(dbc, tpl.ID)
	if err != nil || cur == nil {
		t.Fatalf("Current = %v, %v", cur, err)
	}
	if cur.Version != 1 || cur.Fields.GeneratedSource != "src" {
		t.Fatalf("current = %+v", cur)
	}
}

func TestGormStoreCreateVersionFreezesHistory(t *testing.T) {
	store, dbc, _ := newGormStore(t)
	tpl := testutil.SeedTemplate(t, dbc.Ctx, dbc.Tx, `[{"id":"a","type":"text"}]`)

	if err := store.UpdateCurrentSnapshot(dbc, tpl.ID, fieldsWith("a")); err != nil {
		t.Fatalf("UpdateCurrentSnapshot: %v", err)
	}
	v, err := store.CreateVersion(dbc, tpl.ID, fieldsWith("a", "b"))
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if v != 2 {
		t.Fatalf("CreateVersion = %d, want 2", v)
	}

	cosmetic := fieldsWith("a", "b")
	cosmetic.InputSchema[0].Label = "Renamed"
	if err := store.UpdateCurrentSnapshot(dbc, tpl.ID, cosmetic); err != nil {
		t.Fatalf("UpdateCurrentSnapshot: %v", err)
	}

	if cv, _ := store.CurrentVersion(dbc, tpl.ID); cv != 2 {
		t.Fatalf("current version = %d, want 2", cv)
	}
	v1, err := store.SnapshotAt(dbc, tpl.ID, 1)
	if err != nil || v1 == nil {
		t.Fatalf("SnapshotAt(1) = %v, %v", v1, err)
	}
	if len(v1.Fields.InputSchema) != 1 || v1.Fields.InputSchema[0].Label != "a" {
		t.Fatalf("historical snapshot changed: %+v", v1.Fields.InputSchema)
	}
	v2, err := store.SnapshotAt(dbc, tpl.ID, 2)
	if err != nil || v2 == nil {
		t.Fatalf("SnapshotAt(2) = %v, %v", v2, err)
	}
	if v2.Fields.InputSchema[0].Label != "Renamed" {
		t.Fatalf("current snapshot not updated in place: %+v", v2.Fields.InputSchema)
	}

	list, err := store.ListVersions(dbc, tpl.ID)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(list) != 2 || list[0].Version != 1 || list[1].Version != 2 {
		t.Fatalf("versions = %+v", list)
	}

	res, err := Resolve(dbc, store, tpl.ID, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.UpgradeAvailable || res.ServedVersion != 1 || res.LatestVersion != 2 {
		t.Fatalf("resolution = %+v", res)
	}
}
