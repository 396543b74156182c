package http

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	"github.com/yungbote/neurobridge-content/internal/data/repos/testutil"
	httpH "github.com/yungbote/neurobridge-content/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-content/internal/http/middleware"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
	"github.com/yungbote/neurobridge-content/internal/modules/content/tools"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/authtoken"
	"github.com/yungbote/neurobridge-content/internal/realtime/bus"
)

type apiFixture struct {
	router *gin.Engine
	bus    *bus.MemoryBus
	editor string
	admin  string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.New(db, log)
	store := versions.NewGormStore(db, log, set.Templates, set.TemplateVersions)
	metrics := observability.NewMetrics()
	b := bus.NewMemoryBus()

	svc := mutation.NewService(db, log, staleness.New(), set, store, mutation.NewBusNotifier(b, log, metrics), metrics)
	exec := tools.NewExecutor(svc, log, metrics, tools.DefaultMaxCalls)
	signer := authtoken.NewSigner("router-test", time.Minute)

	router := NewRouter(RouterConfig{
		Log:              log,
		Metrics:          metrics,
		MetricsEnabled:   true,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, signer),
		HealthHandler:    httpH.NewHealthHandler(db),
		ContentHandler:   httpH.NewContentHandler(log, svc),
		TemplateHandler:  httpH.NewTemplateHandler(log, svc),
		ActivityHandler:  httpH.NewActivityHandler(log, svc),
		StructureHandler: httpH.NewStructureHandler(log, svc),
		AgentHandler:     httpH.NewAgentHandler(log, exec),
	})

	editor, err := signer.Issue(uuid.New(), "editor")
	require.NoError(t, err)
	admin, err := signer.Issue(uuid.New(), "admin")
	require.NoError(t, err)
	return &apiFixture{router: router, bus: b, editor: editor, admin: admin}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func idOf(t *testing.T, body map[string]any, key string) string {
	t.Helper()
	obj, ok := body[key].(map[string]any)
	require.True(t, ok, "missing %q in %v", key, body)
	id, ok := obj["id"].(string)
	require.True(t, ok, "missing id in %v", obj)
	return id
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func (f *apiFixture) document(t *testing.T, text string) string {
	t.Helper()
	status, body := f.do(t, nethttp.MethodPost, "/api/libraries", f.editor, map[string]any{"title": "Notes"})
	require.Equal(t, nethttp.StatusCreated, status)
	libID := idOf(t, body, "library")

	status, body = f.do(t, nethttp.MethodPost, "/api/libraries/"+libID+"/documents", f.editor, map[string]any{"title": "Doc", "body": text})
	require.Equal(t, nethttp.StatusCreated, status)
	return idOf(t, body, "document")
}

func TestDocumentReadGatesWrite(t *testing.T) {
	f := newAPI(t)
	docID := f.document(t, "hello world")
	content := "/api/documents/" + docID + "/content"

	status, _ := f.do(t, nethttp.MethodPut, content, f.editor, map[string]any{"content": "rewritten"})
	require.Equal(t, nethttp.StatusOK, status, "an untracked record accepts the first write")

	status, body := f.do(t, nethttp.MethodPut, content, f.editor, map[string]any{"content": "again"})
	require.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "stale_context", errorCode(body))
	assert.NotNil(t, body["failure"])

	status, body = f.do(t, nethttp.MethodGet, content, f.editor, nil)
	require.Equal(t, nethttp.StatusOK, status)
	got, _ := body["content"].(map[string]any)
	assert.Equal(t, "rewritten", got["body"])

	status, body = f.do(t, nethttp.MethodPatch, content, f.editor, map[string]any{
		"operations": []map[string]string{{"search": "rewritten", "replace": "patched"}},
	})
	require.Equal(t, nethttp.StatusOK, status, "%v", body)
	written, _ := body["content"].(map[string]any)
	assert.Equal(t, "patched", written["body"])

	published := f.bus.Published()
	require.NotEmpty(t, published)
	assert.Equal(t, "document:"+docID, published[len(published)-1].Channel)
}

func TestPatchFailuresMapToUnprocessable(t *testing.T) {
	f := newAPI(t)
	docID := f.document(t, "one two one")
	content := "/api/documents/" + docID + "/content"

	cases := []struct {
		search string
		code   string
	}{
		{"three", "search_not_found"},
		{"one", "ambiguous_match"},
	}
	for _, tc := range cases {
		status, _ := f.do(t, nethttp.MethodGet, content, f.editor, nil)
		require.Equal(t, nethttp.StatusOK, status)

		status, body := f.do(t, nethttp.MethodPatch, content, f.editor, map[string]any{
			"operations": []map[string]string{{"search": tc.search, "replace": "x"}},
		})
		require.Equal(t, nethttp.StatusUnprocessableEntity, status)
		assert.Equal(t, tc.code, errorCode(body))
		failure, _ := body["failure"].(map[string]any)
		assert.Equal(t, "one two one", failure["current_content"])
	}

	status, body := f.do(t, nethttp.MethodPatch, content, f.editor, map[string]any{"operations": []map[string]string{}})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", errorCode(body))
}

func TestTemplateVersioningRoutes(t *testing.T) {
	f := newAPI(t)
	status, body := f.do(t, nethttp.MethodPost, "/api/templates", f.editor, map[string]any{
		"name":             "Quiz card",
		"input_schema":     []map[string]any{{"id": "question", "type": "text", "label": "Question"}},
		"generated_source": "render(question)",
		"sample_data":      map[string]any{"question": "2+2?"},
	})
	require.Equal(t, nethttp.StatusCreated, status, "%v", body)
	tplID := idOf(t, body, "template")
	base := "/api/templates/" + tplID

	grown := map[string]any{"input_schema": []map[string]any{
		{"id": "question", "type": "text", "label": "Question"},
		{"id": "answer", "type": "text", "label": "Answer"},
	}}

	status, _ = f.do(t, nethttp.MethodGet, base+"/content", f.editor, nil)
	require.Equal(t, nethttp.StatusOK, status)
	status, body = f.do(t, nethttp.MethodPatch, base+"/schema", f.editor, grown)
	require.Equal(t, nethttp.StatusConflict, status)
	assert.Equal(t, "structural_change_rejected", errorCode(body))

	status, body = f.do(t, nethttp.MethodPost, base+"/versions", f.editor, grown)
	require.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, "forbidden", errorCode(body))

	status, body = f.do(t, nethttp.MethodPost, base+"/versions", f.admin, grown)
	require.Equal(t, nethttp.StatusCreated, status, "%v", body)
	assert.EqualValues(t, 2, body["version"])

	status, body = f.do(t, nethttp.MethodGet, base+"/versions", f.editor, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 2, body["current_version"])
	list, _ := body["versions"].([]any)
	assert.Len(t, list, 2)
}

func TestAgentToolCallsRoute(t *testing.T) {
	f := newAPI(t)
	docID := f.document(t, "alpha beta")

	args := func(v any) json.RawMessage {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return raw
	}
	status, body := f.do(t, nethttp.MethodPost, "/api/agent/tool-calls", f.editor, map[string]any{
		"calls": []tools.Call{
			{ID: "1", Name: "get_content", Arguments: args(map[string]any{"kind": "document", "id": docID})},
			{ID: "2", Name: "patch_content", Arguments: args(map[string]any{
				"kind": "document", "id": docID,
				"operations": []map[string]string{{"search": "beta", "replace": "gamma"}},
			})},
			{ID: "3", Name: "delete_everything", Arguments: args(map[string]any{})},
		},
	})
	require.Equal(t, nethttp.StatusOK, status, "%v", body)
	results, _ := body["results"].([]any)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, true, r.(map[string]any)["ok"])
	}
	skipped, _ := body["skipped"].([]any)
	require.Len(t, skipped, 1)
	assert.Equal(t, "unsupported", skipped[0].(map[string]any)["reason"])
}

func TestAuthAndHousekeepingRoutes(t *testing.T) {
	f := newAPI(t)

	status, _ := f.do(t, nethttp.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = f.do(t, nethttp.MethodGet, "/readyz", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = f.do(t, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)

	status, _ = f.do(t, nethttp.MethodGet, "/api/documents/"+uuid.NewString()+"/content", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, body := f.do(t, nethttp.MethodGet, "/api/documents/"+uuid.NewString()+"/content", f.editor, nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(body))

	status, body = f.do(t, nethttp.MethodGet, "/api/documents/not-a-uuid/content", f.editor, nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "invalid_record_id", errorCode(body))
}
