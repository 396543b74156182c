package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/tools"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type AgentHandler struct {
	log  *logger.Logger
	exec *tools.Executor
}

func NewAgentHandler(log *logger.Logger, exec *tools.Executor) *AgentHandler {
	return &AgentHandler{log: log.With("handler", "AgentHandler"), exec: exec}
}

type toolCallsRequest struct {
	Calls []tools.Call `json:"calls" binding:"required"`
}

// GET /api/agent/tools
func (h *AgentHandler) ListTools(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"tools":     tools.Specs(),
		"max_calls": h.exec.MaxCalls(),
	})
}

// POST /api/agent/tool-calls
func (h *AgentHandler) ExecuteToolCalls(c *gin.Context) {
	var req toolCallsRequest
	if !bindJSON(c, &req) {
		return
	}
	batch, err := h.exec.Execute(requestDBC(c), req.Calls)
	if err != nil {
		h.log.Error("tool batch aborted", "error", err, "completed", len(batch.Results))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": response.APIError{Message: "tool batch aborted", Code: "tool_batch_aborted"},
			"batch": batch,
		})
		return
	}
	response.RespondOK(c, batch)
}
