package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/schema"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type TemplateHandler struct {
	log *logger.Logger
	svc mutation.Service
}

func NewTemplateHandler(log *logger.Logger, svc mutation.Service) *TemplateHandler {
	return &TemplateHandler{log: log.With("handler", "TemplateHandler"), svc: svc}
}

type createTemplateRequest struct {
	Name            string         `json:"name" binding:"required"`
	InputSchema     []schema.Field `json:"input_schema"`
	GeneratedSource string         `json:"generated_source"`
	SampleData      map[string]any `json:"sample_data"`
	Dependencies    []string       `json:"dependencies"`
	ToolList        []string       `json:"tool_list"`
}

type schemaRequest struct {
	InputSchema []schema.Field `json:"input_schema" binding:"required"`
}

// POST /api/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	tmpl, err := h.svc.CreateTemplate(requestDBC(c), mutation.CreateTemplateInput{
		Name: req.Name,
		Fields: versions.Fields{
			InputSchema:     req.InputSchema,
			GeneratedSource: req.GeneratedSource,
			SampleData:      req.SampleData,
			Dependencies:    req.Dependencies,
			ToolList:        req.ToolList,
		},
	})
	if err != nil {
		serviceError(c, h.log, "CreateTemplate", err)
		return
	}
	response.RespondCreated(c, gin.H{"template": tmpl})
}

// PATCH /api/templates/:id/schema
func (h *TemplateHandler) UpdateSchema(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_template_id")
	if !ok {
		return
	}
	var req schemaRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.UpdateSchema(requestDBC(c), id, req.InputSchema)
	if err != nil {
		serviceError(c, h.log, "UpdateSchema", err)
		return
	}
	response.RespondWrite(c, res)
}

// POST /api/templates/:id/versions
func (h *TemplateHandler) CreateVersion(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_template_id")
	if !ok {
		return
	}
	var req schemaRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.UpdateSchemaVersioned(requestDBC(c), id, req.InputSchema)
	if err != nil {
		serviceError(c, h.log, "CreateVersion", err)
		return
	}
	if res != nil && res.VersionCreated {
		response.RespondCreated(c, res)
		return
	}
	response.RespondWrite(c, res)
}

// GET /api/templates/:id/versions
func (h *TemplateHandler) ListVersions(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_template_id")
	if !ok {
		return
	}
	out, err := h.svc.ListVersions(requestDBC(c), id)
	if err != nil {
		serviceError(c, h.log, "ListVersions", err)
		return
	}
	response.RespondOK(c, out)
}
