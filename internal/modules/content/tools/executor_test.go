package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	"github.com/yungbote/neurobridge-content/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

func newExecutor(t *testing.T, maxCalls int) (*Executor, mutation.Service, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	set := repos.New(db, log)
	store := versions.NewGormStore(db, log, set.Templates, set.TemplateVersions)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}
	svc := mutation.NewService(db, log, staleness.WithClock(clock), set, store, nil, nil)
	return NewExecutor(svc, log, nil, maxCalls), svc, dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func seedDocument(t *testing.T, svc mutation.Service, dbc dbctx.Context, body string) uuid.UUID {
	t.Helper()
	lib, err := svc.CreateLibrary(dbc, "lib")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	doc, err := svc.CreateDocument(dbc, lib.ID, "doc", body)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	return doc.ID
}

func call(name string, args any) Call {
	raw, _ := json.Marshal(args)
	return Call{ID: uuid.NewString(), Name: name, Arguments: raw}
}

func TestExecuteBoundsCalls(t *testing.T) {
	exec, svc, dbc := newExecutor(t, 3)
	id := seedDocument(t, svc, dbc, "hello")

	var calls []Call
	for i := 0; i < 5; i++ {
		calls = append(calls, call("get_content", map[string]string{"kind": "documents", "id": id.String()}))
	}
	batch, err := exec.Execute(dbc, calls)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(batch.Results) != 3 || len(batch.Skipped) != 2 {
		t.Fatalf("results=%d skipped=%d", len(batch.Results), len(batch.Skipped))
	}
	for _, s := range batch.Skipped {
		if s.Reason != "max_calls" {
			t.Fatalf("skip reason = %q", s.Reason)
		}
	}
	if batch.Results[0].Text != "hello" {
		t.Fatalf("get_content text = %q", batch.Results[0].Text)
	}
}

func TestExecuteSequentialReadGatesWrite(t *testing.T) {
	exec, svc, dbc := newExecutor(t, DefaultMaxCalls)
	id := seedDocument(t, svc, dbc, "one two three")
	target := map[string]any{"kind": "document", "id": id.String()}
	patchArgs := func(search, replace string) map[string]any {
		return map[string]any{
			"kind":       "document",
			"id":         id.String(),
			"operations": []map[string]string{{"search": search, "replace": replace}},
		}
	}

	batch, err := exec.Execute(dbc, []Call{
		call("patch_content", patchArgs("one", "1")),
		call("patch_content", patchArgs("two", "2")),
		call("get_content", target),
		call("patch_content", patchArgs("two", "2")),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(batch.Results) != 4 {
		t.Fatalf("results = %d", len(batch.Results))
	}
	if !batch.Results[0].OK {
		t.Fatalf("first patch: %+v", batch.Results[0])
	}
	second := batch.Results[1]
	if second.OK {
		t.Fatalf("second patch without re-read must be rejected")
	}
	f, ok := second.Data.(*mutation.Failure)
	if !ok || f.Code != mutation.CodeStaleContext {
		t.Fatalf("second patch data = %#v", second.Data)
	}
	if batch.Results[2].Text != "1 two three" {
		t.Fatalf("re-read text = %q", batch.Results[2].Text)
	}
	if !batch.Results[3].OK {
		t.Fatalf("patch after re-read: %+v", batch.Results[3])
	}

	c, err := svc.Read(dbc, mutation.KindDocument, id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.Body != "1 2 three" {
		t.Fatalf("body = %q", c.Body)
	}
}

func TestExecuteRecoverableFailures(t *testing.T) {
	exec, _, dbc := newExecutor(t, DefaultMaxCalls)

	batch, err := exec.Execute(dbc, []Call{
		call("get_content", map[string]string{"kind": "lessons", "id": uuid.NewString()}),
		call("get_content", map[string]string{"kind": "documents", "id": "not-a-uuid"}),
		call("get_content", map[string]string{"kind": "documents", "id": uuid.NewString()}),
		call("patch_content", map[string]any{"kind": "documents", "id": uuid.NewString(), "operations": []map[string]string{{"search": ""}}}),
		call("delete_everything", map[string]string{}),
	})
	if err != nil {
		t.Fatalf("recoverable failures must not abort the batch: %v", err)
	}
	if len(batch.Results) != 4 {
		t.Fatalf("results = %d", len(batch.Results))
	}
	for i, r := range batch.Results {
		if r.OK {
			t.Fatalf("result %d should have failed: %+v", i, r)
		}
		if r.Text == "" {
			t.Fatalf("result %d has no explanation", i)
		}
	}
	if len(batch.Skipped) != 1 || batch.Skipped[0].Reason != "unsupported" {
		t.Fatalf("skipped = %+v", batch.Skipped)
	}
}

func TestExecuteStopsOnCancel(t *testing.T) {
	exec, svc, dbc := newExecutor(t, DefaultMaxCalls)
	id := seedDocument(t, svc, dbc, "text")

	ctx, cancel := context.WithCancel(dbc.Ctx)
	cancel()
	batch, err := exec.Execute(dbctx.Context{Ctx: ctx, Tx: dbc.Tx}, []Call{
		call("get_content", map[string]string{"kind": "documents", "id": id.String()}),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(batch.Results) != 0 || len(batch.Skipped) != 1 || batch.Skipped[0].Reason != "canceled" {
		t.Fatalf("batch = %+v", batch)
	}
}

func TestSpecsListsEveryTool(t *testing.T) {
	specs := Specs()
	if len(specs) != len(toolRegistry) {
		t.Fatalf("specs = %d, registry = %d", len(specs), len(toolRegistry))
	}
	for i := 1; i < len(specs); i++ {
		if specs[i-1].Name >= specs[i].Name {
			t.Fatalf("specs not sorted: %s", fmt.Sprint(specs))
		}
	}
}
