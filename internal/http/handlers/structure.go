package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

// StructureHandler creates the containers records live in.
type StructureHandler struct {
	log *logger.Logger
	svc mutation.Service
}

func NewStructureHandler(log *logger.Logger, svc mutation.Service) *StructureHandler {
	return &StructureHandler{log: log.With("handler", "StructureHandler"), svc: svc}
}

type titleRequest struct {
	Title string `json:"title" binding:"required"`
}

type createDocumentRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// POST /api/libraries
func (h *StructureHandler) CreateLibrary(c *gin.Context) {
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	lib, err := h.svc.CreateLibrary(requestDBC(c), req.Title)
	if err != nil {
		serviceError(c, h.log, "CreateLibrary", err)
		return
	}
	response.RespondCreated(c, gin.H{"library": lib})
}

// POST /api/libraries/:id/documents
func (h *StructureHandler) CreateDocument(c *gin.Context) {
	libraryID, ok := parseID(c, "id", "invalid_library_id")
	if !ok {
		return
	}
	var req createDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := h.svc.CreateDocument(requestDBC(c), libraryID, req.Title, req.Body)
	if err != nil {
		serviceError(c, h.log, "CreateDocument", err)
		return
	}
	response.RespondCreated(c, gin.H{"document": doc})
}

// POST /api/sections
func (h *StructureHandler) CreateSection(c *gin.Context) {
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	sec, err := h.svc.CreateCourseSection(requestDBC(c), req.Title)
	if err != nil {
		serviceError(c, h.log, "CreateSection", err)
		return
	}
	response.RespondCreated(c, gin.H{"section": sec})
}

// GET /api/libraries/:id/documents
func (h *StructureHandler) ListDocuments(c *gin.Context) {
	libraryID, ok := parseID(c, "id", "invalid_library_id")
	if !ok {
		return
	}
	docs, err := h.svc.ListDocuments(requestDBC(c), libraryID)
	if err != nil {
		serviceError(c, h.log, "ListDocuments", err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}
