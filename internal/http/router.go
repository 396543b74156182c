package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-content/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-content/internal/http/middleware"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	Metrics        *observability.Metrics
	MetricsEnabled bool
	CORSOrigins    []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	ContentHandler   *httpH.ContentHandler
	TemplateHandler  *httpH.TemplateHandler
	ActivityHandler  *httpH.ActivityHandler
	StructureHandler *httpH.StructureHandler
	AgentHandler     *httpH.AgentHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	// Free-form JSON (sample data, defaults) keeps integers exact.
	binding.EnableDecoderUseNumber = true

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(observability.Handler()))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Structure
		if cfg.StructureHandler != nil {
			api.POST("/libraries", cfg.StructureHandler.CreateLibrary)
			api.POST("/libraries/:id/documents", cfg.StructureHandler.CreateDocument)
			api.GET("/libraries/:id/documents", cfg.StructureHandler.ListDocuments)
			api.POST("/sections", cfg.StructureHandler.CreateSection)
		}

		// Templates and activities
		if cfg.TemplateHandler != nil {
			api.POST("/templates", cfg.TemplateHandler.CreateTemplate)
			api.PATCH("/templates/:id/schema", cfg.TemplateHandler.UpdateSchema)
			api.GET("/templates/:id/versions", cfg.TemplateHandler.ListVersions)
			versioned := []gin.HandlerFunc{}
			if cfg.AuthMiddleware != nil {
				versioned = append(versioned, cfg.AuthMiddleware.RequirePrivileged())
			}
			versioned = append(versioned, cfg.TemplateHandler.CreateVersion)
			api.POST("/templates/:id/versions", versioned...)
		}
		if cfg.ActivityHandler != nil {
			api.POST("/sections/:id/activities", cfg.ActivityHandler.CreateActivity)
			api.GET("/sections/:id/activities", cfg.ActivityHandler.ListActivities)
			api.GET("/activities/:id/template", cfg.ActivityHandler.GetTemplate)
			api.POST("/activities/:id/migrate", cfg.ActivityHandler.Migrate)
		}

		// Record content, one group per kind
		if cfg.ContentHandler != nil {
			for _, kind := range mutation.Kinds {
				records := api.Group("/"+kind.Plural()+"/:id", httpH.WithKind(kind))
				records.GET("/content", cfg.ContentHandler.GetContent)
				records.PUT("/content", cfg.ContentHandler.ReplaceContent)
				records.PATCH("/content", cfg.ContentHandler.PatchContent)
				records.GET("/conversation", cfg.ContentHandler.ListConversation)
				records.POST("/conversation", cfg.ContentHandler.AppendMessage)
				records.DELETE("/conversation", cfg.ContentHandler.ClearConversation)
			}
		}

		// Agent
		if cfg.AgentHandler != nil {
			api.GET("/agent/tools", cfg.AgentHandler.ListTools)
			api.POST("/agent/tool-calls", cfg.AgentHandler.ExecuteToolCalls)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/events", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
