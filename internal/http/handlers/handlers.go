package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/http/response"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/platform/apierr"
	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func parseID(c *gin.Context, param, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(param)))
	if err != nil || id == uuid.Nil {
		if err == nil {
			err = errors.New("nil id")
		}
		response.RespondServiceError(c, apierr.BadRequest(code, err))
		return uuid.Nil, false
	}
	return id, true
}

// KindKey is the gin context key the router sets on per-kind routes.
const KindKey = "record_kind"

// WithKind pins the record kind for every route in a group.
func WithKind(kind mutation.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(KindKey, kind.String())
		c.Next()
	}
}

func parseKind(c *gin.Context) (mutation.Kind, bool) {
	raw := c.GetString(KindKey)
	if raw == "" {
		raw = c.Param("kind")
	}
	kind, err := mutation.ParseKind(raw)
	if err != nil {
		response.RespondServiceError(c, apierr.NotFound("unknown_kind", err))
		return "", false
	}
	return kind, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondServiceError(c, apierr.BadRequest("invalid_request", err))
		return false
	}
	return true
}

// serviceError answers err and logs anything that is not a caller mistake.
func serviceError(c *gin.Context, log *logger.Logger, op string, err error) {
	if _, ok := apierr.As(err); !ok &&
		!errors.Is(err, mutation.ErrNotFound) &&
		!errors.Is(err, mutation.ErrValidation) &&
		!errors.Is(err, mutation.ErrForbidden) {
		log.Error(op+" failed", "error", err, "path", c.FullPath())
		_ = c.Error(err)
	}
	response.RespondServiceError(c, err)
}
