package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type ActivityHandler struct {
	log *logger.Logger
	svc mutation.Service
}

func NewActivityHandler(log *logger.Logger, svc mutation.Service) *ActivityHandler {
	return &ActivityHandler{log: log.With("handler", "ActivityHandler"), svc: svc}
}

type createActivityRequest struct {
	Title      string          `json:"title" binding:"required"`
	TemplateID uuid.UUID       `json:"template_id" binding:"required"`
	Data       json.RawMessage `json:"data"`
}

type migrateRequest struct {
	ToVersion *int `json:"to_version" binding:"omitempty,min=1"`
}

// POST /api/sections/:id/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	sectionID, ok := parseID(c, "id", "invalid_section_id")
	if !ok {
		return
	}
	var req createActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	act, err := h.svc.CreateActivity(requestDBC(c), mutation.CreateActivityInput{
		SectionID:  sectionID,
		TemplateID: req.TemplateID,
		Title:      req.Title,
		Data:       req.Data,
	})
	if err != nil {
		serviceError(c, h.log, "CreateActivity", err)
		return
	}
	response.RespondCreated(c, gin.H{"activity": act})
}

// GET /api/sections/:id/activities
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	sectionID, ok := parseID(c, "id", "invalid_section_id")
	if !ok {
		return
	}
	acts, err := h.svc.ListActivities(requestDBC(c), sectionID)
	if err != nil {
		serviceError(c, h.log, "ListActivities", err)
		return
	}
	response.RespondOK(c, gin.H{"activities": acts})
}

// GET /api/activities/:id/template
func (h *ActivityHandler) GetTemplate(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_activity_id")
	if !ok {
		return
	}
	out, err := h.svc.ResolveTemplateForActivity(requestDBC(c), id)
	if err != nil {
		serviceError(c, h.log, "GetTemplate", err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/activities/:id/migrate
func (h *ActivityHandler) Migrate(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_activity_id")
	if !ok {
		return
	}
	var req migrateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	out, err := h.svc.MigrateActivity(requestDBC(c), id, req.ToVersion)
	if err != nil {
		serviceError(c, h.log, "Migrate", err)
		return
	}
	response.RespondOK(c, out)
}
