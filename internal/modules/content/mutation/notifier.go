package mutation

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
	"github.com/yungbote/neurobridge-content/internal/realtime"
	"github.com/yungbote/neurobridge-content/internal/realtime/bus"
)

// Notifier announces committed changes. Implementations must not fail the
// caller; delivery problems are logged.
type Notifier interface {
	ContentUpdated(ctx context.Context, kind Kind, id uuid.UUID, operation string, stamps staleness.Stamps)
	VersionCreated(ctx context.Context, templateID uuid.UUID, version int)
	ActivityMigrated(ctx context.Context, activityID uuid.UUID, from, to int)
	ConversationCleared(ctx context.Context, kind Kind, id uuid.UUID)
}

type busNotifier struct {
	bus     bus.Bus
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewBusNotifier(b bus.Bus, baseLog *logger.Logger, metrics *observability.Metrics) Notifier {
	return &busNotifier{bus: b, log: baseLog.With("service", "ContentNotifier"), metrics: metrics}
}

func (n *busNotifier) ContentUpdated(ctx context.Context, kind Kind, id uuid.UUID, operation string, stamps staleness.Stamps) {
	n.publish(ctx, realtime.SSEMessage{
		Channel: realtime.RecordChannel(string(kind), id),
		Event:   realtime.SSEEventContentUpdated,
		Data: realtime.ContentUpdate{
			Kind:       string(kind),
			RecordID:   id,
			Operation:  operation,
			ModifiedAt: stamps.ModifiedAt,
		},
	})
}

func (n *busNotifier) VersionCreated(ctx context.Context, templateID uuid.UUID, version int) {
	n.publish(ctx, realtime.SSEMessage{
		Channel: realtime.RecordChannel(string(KindTemplate), templateID),
		Event:   realtime.SSEEventVersionCreated,
		Data: realtime.ContentUpdate{
			Kind:      string(KindTemplate),
			RecordID:  templateID,
			Operation: "create_version",
			Version:   version,
		},
	})
}

func (n *busNotifier) ActivityMigrated(ctx context.Context, activityID uuid.UUID, from, to int) {
	n.publish(ctx, realtime.SSEMessage{
		Channel: realtime.RecordChannel(string(KindActivity), activityID),
		Event:   realtime.SSEEventActivityMigrated,
		Data: map[string]any{
			"record_id":    activityID,
			"from_version": from,
			"to_version":   to,
		},
	})
}

func (n *busNotifier) ConversationCleared(ctx context.Context, kind Kind, id uuid.UUID) {
	n.publish(ctx, realtime.SSEMessage{
		Channel: realtime.RecordChannel(string(kind), id),
		Event:   realtime.SSEEventConversationCleared,
		Data:    realtime.ContentUpdate{Kind: string(kind), RecordID: id, Operation: "clear_conversation"},
	})
}

func (n *busNotifier) publish(ctx context.Context, msg realtime.SSEMessage) {
	if n == nil || n.bus == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := n.bus.Publish(context.WithoutCancel(ctx), msg)
	n.metrics.RecordEvent(string(msg.Event), err)
	if err != nil {
		n.log.Warn("publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
}

type nopNotifier struct{}

func (nopNotifier) ContentUpdated(context.Context, Kind, uuid.UUID, string, staleness.Stamps) {}
func (nopNotifier) VersionCreated(context.Context, uuid.UUID, int) {}
func (nopNotifier) ActivityMigrated(context.Context, uuid.UUID, int, int) {}
func (nopNotifier) ConversationCleared(context.Context, Kind, uuid.UUID) {}
