package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates a request across logs, spans and published events.
type TraceData struct {
	TraceID   string
	RequestID string

	// RecordKind and RecordID name the content record a request targets,
	// when its route carries one.
	RecordKind string
	RecordID   string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the trace and request ids of ctx as logger key/values.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	var out []interface{}
	if td.TraceID != "" {
		out = append(out, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		out = append(out, "request_id", td.RequestID)
	}
	if td.RecordKind != "" {
		out = append(out, "record_kind", td.RecordKind, "record_id", td.RecordID)
	}
	return out
}
