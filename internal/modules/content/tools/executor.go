// Package tools exposes the content mutation service to an autonomous agent
// as a bounded, strictly sequential batch of tool calls.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

const DefaultMaxCalls = 8

type Call struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Result is what the agent reads back. Recoverable failures (stale context,
// patch mismatches, bad arguments) are results with OK=false, never errors.
type Result struct {
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Text   string `json:"text"`
	Data   any    `json:"data,omitempty"`
}

type Skip struct {
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Batch struct {
	Results []Result `json:"results"`
	Skipped []Skip   `json:"skipped"`
}

// Spec describes one tool to the agent.
type Spec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type runFunc func(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error)

type toolSpec struct {
	Spec
	run runFunc
}

var toolRegistry = map[string]toolSpec{
	"get_content": {
		Spec: Spec{Name: "get_content", Description: "Read a record's current content. Required before every write after a modification."},
		run:  runGetContent,
	},
	"replace_content": {
		Spec: Spec{Name: "replace_content", Description: "Replace a record's whole content, optionally renaming it."},
		run:  runReplaceContent,
	},
	"patch_content": {
		Spec: Spec{Name: "patch_content", Description: "Apply ordered exact-match search/replace operations; each search must match exactly once."},
		run:  runPatchContent,
	},
	"get_template_for_activity": {
		Spec: Spec{Name: "get_template_for_activity", Description: "Resolve the template fields an activity renders against, with upgrade availability."},
		run:  runGetTemplateForActivity,
	},
	"update_schema": {
		Spec: Spec{Name: "update_schema", Description: "Edit a template's input schema labels, descriptions, placeholders or defaults."},
		run:  runUpdateSchema,
	},
	"list_versions": {
		Spec: Spec{Name: "list_versions", Description: "List a template's schema versions."},
		run:  runListVersions,
	},
}

// Specs lists the registered tools sorted by name.
func Specs() []Spec {
	names := make([]string, 0, len(toolRegistry))
	for n := range toolRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Spec, 0, len(names))
	for _, n := range names {
		out = append(out, toolRegistry[n].Spec)
	}
	return out
}

type Executor struct {
	svc      mutation.Service
	log      *logger.Logger
	metrics  *observability.Metrics
	maxCalls int
}

func NewExecutor(svc mutation.Service, baseLog *logger.Logger, metrics *observability.Metrics, maxCalls int) *Executor {
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCalls
	}
	return &Executor{
		svc:      svc,
		log:      baseLog.With("service", "ContentToolExecutor"),
		metrics:  metrics,
		maxCalls: maxCalls,
	}
}

func (e *Executor) MaxCalls() int { return e.maxCalls }

// Execute runs calls one at a time in order. Calls past the bound are skipped
// with reason "max_calls". A canceled context stops the batch; calls that
// already committed stay committed. Only infrastructure faults return an
// error, together with the results gathered so far.
func (e *Executor) Execute(dbc dbctx.Context, calls []Call) (*Batch, error) {
	out := &Batch{Results: []Result{}, Skipped: []Skip{}}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
		dbc.Ctx = ctx
	}
	executed := 0
	for _, call := range calls {
		name := strings.ToLower(strings.TrimSpace(call.Name))
		if executed >= e.maxCalls {
			out.Skipped = append(out.Skipped, Skip{CallID: call.ID, Name: call.Name, Reason: "max_calls"})
			e.metrics.RecordToolCall(name, "skipped")
			continue
		}
		if ctx.Err() != nil {
			out.Skipped = append(out.Skipped, Skip{CallID: call.ID, Name: call.Name, Reason: "canceled"})
			continue
		}
		spec, ok := toolRegistry[name]
		if !ok {
			out.Skipped = append(out.Skipped, Skip{CallID: call.ID, Name: call.Name, Reason: "unsupported"})
			e.metrics.RecordToolCall("unsupported", "skipped")
			continue
		}

		executed++
		res, err := spec.run(e, dbc, call.Arguments)
		if err != nil {
			e.metrics.RecordToolCall(name, "error")
			fields := append([]interface{}{"tool", name, "call_id", call.ID, "error", err}, ctxutil.LogFields(ctx)...)
			e.log.Error("tool call failed", fields...)
			return out, fmt.Errorf("tool %s: %w", name, err)
		}
		res.CallID = call.ID
		res.Name = name
		outcome := "ok"
		if !res.OK {
			outcome = "rejected"
		}
		e.metrics.RecordToolCall(name, outcome)
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// recoverable turns service errors the agent can act on into a result.
func recoverable(err error) (Result, bool) {
	switch {
	case errors.Is(err, mutation.ErrValidation), errors.Is(err, mutation.ErrNotFound), errors.Is(err, mutation.ErrForbidden):
		return Result{OK: false, Text: err.Error()}, true
	default:
		return Result{}, false
	}
}

func argError(err error) Result {
	return Result{OK: false, Text: err.Error()}
}

func kindAndID(kind, id string) (mutation.Kind, uuid.UUID, error) {
	k, err := mutation.ParseKind(kind)
	if err != nil {
		return "", uuid.Nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: invalid id %q", mutation.ErrValidation, id)
	}
	return k, parsed, nil
}

func writeResult(res *mutation.WriteResult, okText string) Result {
	if res.Failure != nil {
		return Result{OK: false, Text: string(res.Failure.Code) + ": " + res.Failure.Message, Data: res.Failure}
	}
	return Result{OK: true, Text: okText, Data: res}
}

func runGetContent(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error) {
	var args getContentArgs
	if err := decodeArgs(raw, &args); err != nil {
		return argError(err), nil
	}
	kind, id, err := kindAndID(args.Kind, args.ID)
	if err != nil {
		return argError(err), nil
	}
	c, err := e.svc.Read(dbc, kind, id)
	if err != nil {
		if r, ok := recoverable(err); ok {
			return r, nil
		}
		return Result{}, err
	}
	return Result{OK: true, Text: c.Body, Data: c}, nil
}

func runReplaceContent(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error) {
	var args replaceContentArgs
	if err := decodeArgs(raw, &args); err != nil {
		return argError(err), nil
	}
	kind, id, err := kindAndID(args.Kind, args.ID)
	if err != nil {
		return argError(err), nil
	}
	res, err := e.svc.Replace(dbc, kind, id, args.Content, args.Title)
	if err != nil {
		if r, ok := recoverable(err); ok {
			return r, nil
		}
		return Result{}, err
	}
	return writeResult(res, "content replaced"), nil
}

func runPatchContent(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error) {
	var args patchContentArgs
	if err := decodeArgs(raw, &args); err != nil {
		return argError(err), nil
	}
	kind, id, err := kindAndID(args.Kind, args.ID)
	if err != nil {
		return argError(err), nil
	}
	res, err := e.svc.Patch(dbc, kind, id, args.Operations, args.Title)
	if err != nil {
		if r, ok := recoverable(err); ok {
			return r, nil
		}
		return Result{}, err
	}
	return writeResult(res, fmt.Sprintf("applied %d operations", len(args.Operations))), nil
}

func runGetTemplateForActivity(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error) {
	var args getTemplateForActivityArgs
	if err := decodeArgs(raw, &args); err != nil {
		return argError(err), nil
	}
	id, err := uuid.Parse(args.ActivityID)
	if err != nil {
		return argError(err), nil
	}
	res, err := e.svc.ResolveTemplateForActivity(dbc, id)
	if err != nil {
		if r, ok := recoverable(err); ok {
			return r, nil
		}
		return Result{}, err
	}
	text := fmt.Sprintf("activity renders template version %d (latest %d)", res.ServedVersion, res.LatestVersion)
	if res.UpgradeAvailable {
		text += "; an upgrade is available"
	}
	return Result{OK: true, Text: text, Data: res}, nil
}

func runUpdateSchema(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error) {
	var args updateSchemaArgs
	if err := decodeArgs(raw, &args); err != nil {
		return argError(err), nil
	}
	id, err := uuid.Parse(args.TemplateID)
	if err != nil {
		return argError(err), nil
	}
	res, err := e.svc.UpdateSchema(dbc, id, args.InputSchema)
	if err != nil {
		if r, ok := recoverable(err); ok {
			return r, nil
		}
		return Result{}, err
	}
	return writeResult(res, "schema updated"), nil
}

func runListVersions(e *Executor, dbc dbctx.Context, raw json.RawMessage) (Result, error) {
	var args listVersionsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return argError(err), nil
	}
	id, err := uuid.Parse(args.TemplateID)
	if err != nil {
		return argError(err), nil
	}
	list, err := e.svc.ListVersions(dbc, id)
	if err != nil {
		if r, ok := recoverable(err); ok {
			return r, nil
		}
		return Result{}, err
	}
	return Result{OK: true, Text: fmt.Sprintf("current version %d, %d versions", list.CurrentVersion, len(list.Versions)), Data: list}, nil
}
