package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
	"github.com/yungbote/neurobridge-content/internal/realtime"
)

const maxStreamChannels = 32

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/events?channel=documents:<id>&channel=templates:<id>
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	channels, err := streamChannels(c.QueryArray("channel"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", err)
		return
	}

	var userID uuid.UUID
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}
	client := h.hub.NewSSEClient(userID)
	for _, ch := range channels {
		h.hub.AddChannel(client, ch)
	}
	h.log.Debug("SSEStream open", "client_id", client.ID, "channels", channels)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("SSEStream closed", "client_id", client.ID)
}

// streamChannels normalizes "kind:id" channel names so that "document:x"
// and "documents:x" land on the same channel the notifier publishes to.
func streamChannels(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one channel is required")
	}
	if len(raw) > maxStreamChannels {
		return nil, fmt.Errorf("at most %d channels per stream", maxStreamChannels)
	}
	out := make([]string, 0, len(raw))
	for _, ch := range raw {
		kindPart, idPart, ok := strings.Cut(strings.TrimSpace(ch), ":")
		if !ok {
			return nil, fmt.Errorf("channel %q must look like kind:id", ch)
		}
		kind, err := mutation.ParseKind(kindPart)
		if err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idPart)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch, err)
		}
		out = append(out, realtime.RecordChannel(kind.String(), id))
	}
	return out, nil
}
