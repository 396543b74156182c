package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/patch"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type ContentHandler struct {
	log *logger.Logger
	svc mutation.Service
}

func NewContentHandler(log *logger.Logger, svc mutation.Service) *ContentHandler {
	return &ContentHandler{log: log.With("handler", "ContentHandler"), svc: svc}
}

type replaceContentRequest struct {
	Content string  `json:"content"`
	Title   *string `json:"title"`
}

type patchContentRequest struct {
	Operations []patch.Operation `json:"operations" binding:"required,min=1,dive"`
	Title      *string           `json:"title"`
}

// GET /api/:kind/:id/content
func (h *ContentHandler) GetContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid_record_id")
	if !ok {
		return
	}
	out, err := h.svc.Read(requestDBC(c), kind, id)
	if err != nil {
		serviceError(c, h.log, "GetContent", err)
		return
	}
	response.RespondOK(c, gin.H{"content": out})
}

// PUT /api/:kind/:id/content
func (h *ContentHandler) ReplaceContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid_record_id")
	if !ok {
		return
	}
	var req replaceContentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Replace(requestDBC(c), kind, id, req.Content, req.Title)
	if err != nil {
		serviceError(c, h.log, "ReplaceContent", err)
		return
	}
	response.RespondWrite(c, res)
}

// PATCH /api/:kind/:id/content
func (h *ContentHandler) PatchContent(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid_record_id")
	if !ok {
		return
	}
	var req patchContentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Patch(requestDBC(c), kind, id, req.Operations, req.Title)
	if err != nil {
		serviceError(c, h.log, "PatchContent", err)
		return
	}
	response.RespondWrite(c, res)
}

type appendMessageRequest struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// GET /api/:kind/:id/conversation?limit=
func (h *ContentHandler) ListConversation(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid_record_id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	msgs, err := h.svc.ListConversation(requestDBC(c), kind, id, limit)
	if err != nil {
		serviceError(c, h.log, "ListConversation", err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// POST /api/:kind/:id/conversation
func (h *ContentHandler) AppendMessage(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid_record_id")
	if !ok {
		return
	}
	var req appendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.AppendMessage(requestDBC(c), kind, id, req.Role, req.Content)
	if err != nil {
		serviceError(c, h.log, "AppendMessage", err)
		return
	}
	response.RespondCreated(c, gin.H{"message": msg})
}

// DELETE /api/:kind/:id/conversation
func (h *ContentHandler) ClearConversation(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid_record_id")
	if !ok {
		return
	}
	n, err := h.svc.ClearConversation(requestDBC(c), kind, id)
	if err != nil {
		serviceError(c, h.log, "ClearConversation", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}
