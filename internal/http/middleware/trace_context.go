package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/neurobridge-content/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// recordCollections maps the collection segment of /api/<collection>/:id
// routes to the record kind it serves.
var recordCollections = map[string]string{
	"documents":  "document",
	"activities": "activity",
	"templates":  "template",
	"libraries":  "library",
	"sections":   "section",
}

// AttachTraceContext assigns request and trace ids, preferring inbound
// headers, then the active span, then a fresh uuid. Routes addressing one
// record also tag the trace data and the active span with its kind and id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		span := trace.SpanFromContext(c.Request.Context())
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" && span.SpanContext().HasTraceID() {
			traceID = span.SpanContext().TraceID().String()
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		td := &ctxutil.TraceData{TraceID: traceID, RequestID: reqID}
		if kind, id, ok := routeRecord(c.FullPath(), c.Param("id")); ok {
			td.RecordKind = kind
			td.RecordID = id
			span.SetAttributes(
				attribute.String("content.kind", kind),
				attribute.String("content.id", id),
			)
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

// routeRecord reads the record a route like /api/documents/:id/content
// addresses. Routes without an :id after a known collection yield false.
func routeRecord(fullPath, id string) (kind, recordID string, ok bool) {
	parts := strings.Split(strings.Trim(fullPath, "/"), "/")
	if len(parts) < 3 || parts[0] != "api" || parts[2] != ":id" {
		return "", "", false
	}
	kind, ok = recordCollections[parts[1]]
	if !ok || strings.TrimSpace(id) == "" {
		return "", "", false
	}
	return kind, id, true
}
