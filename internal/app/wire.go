package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-content/internal/data/repos"
	httpserver "github.com/yungbote/neurobridge-content/internal/http"
	httpH "github.com/yungbote/neurobridge-content/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-content/internal/http/middleware"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/staleness"
	"github.com/yungbote/neurobridge-content/internal/modules/content/tools"
	"github.com/yungbote/neurobridge-content/internal/modules/content/versions"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/authtoken"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
	"github.com/yungbote/neurobridge-content/internal/realtime"
	"github.com/yungbote/neurobridge-content/internal/realtime/bus"
)

// wireBus picks Redis when REDIS_ADDR is set so several replicas share one
// event stream, and an in-process bus otherwise.
func wireBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set; using in-process event bus")
		return bus.NewMemoryBus(), nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}
	return b, nil
}

func wireService(db *gorm.DB, log *logger.Logger, reposet repos.Set, eventBus bus.Bus, metrics *observability.Metrics) mutation.Service {
	store := versions.NewGormStore(db, log, reposet.Templates, reposet.TemplateVersions)
	notifier := mutation.NewBusNotifier(eventBus, log, metrics)
	return mutation.NewService(db, log, staleness.New(), reposet, store, notifier, metrics)
}

func wireRouter(
	log *logger.Logger,
	cfg Config,
	db *gorm.DB,
	svc mutation.Service,
	exec *tools.Executor,
	signer *authtoken.Signer,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) httpserver.RouterConfig {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpserver.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		MetricsEnabled: cfg.MetricsEnabled,
		CORSOrigins:    cfg.CORSOrigins,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, signer),

		HealthHandler:    httpH.NewHealthHandler(db),
		ContentHandler:   httpH.NewContentHandler(log, svc),
		TemplateHandler:  httpH.NewTemplateHandler(log, svc),
		ActivityHandler:  httpH.NewActivityHandler(log, svc),
		StructureHandler: httpH.NewStructureHandler(log, svc),
		AgentHandler:     httpH.NewAgentHandler(log, exec),
		RealtimeHandler:  httpH.NewRealtimeHandler(log, hub),
	}
}
