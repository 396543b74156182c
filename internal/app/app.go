package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/neurobridge-content/internal/data/db"
	"github.com/yungbote/neurobridge-content/internal/data/repos"
	httpserver "github.com/yungbote/neurobridge-content/internal/http"
	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/modules/content/tools"
	"github.com/yungbote/neurobridge-content/internal/observability"
	"github.com/yungbote/neurobridge-content/internal/platform/authtoken"
	"github.com/yungbote/neurobridge-content/internal/platform/logger"
	"github.com/yungbote/neurobridge-content/internal/realtime"
	"github.com/yungbote/neurobridge-content/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Server   *httpserver.Server
	Cfg      Config
	Repos    repos.Set
	Service  mutation.Service
	Executor *tools.Executor
	Signer   *authtoken.Signer
	Metrics  *observability.Metrics
	Bus      bus.Bus
	SSEHub   *realtime.SSEHub

	store        *dbpkg.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New opens the store, migrates it and wires every component. It does not
// start background work; call Start for that.
func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	cfg.Summary(log)

	store, err := dbpkg.NewService(cfg.Database.toDB(), log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := store.DB()

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel.toOtel())

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	eventBus, err := wireBus(log, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	hub := realtime.NewSSEHub(log)

	reposet := repos.New(theDB, log)
	svc := wireService(theDB, log, reposet, eventBus, metrics)
	exec := tools.NewExecutor(svc, log, metrics, cfg.AgentMaxToolCalls)
	signer := authtoken.NewSigner(cfg.JWTSecretKey, cfg.AccessTokenTTL)
	if !signer.Enabled() {
		log.Warn("JWT_SECRET_KEY not set; API runs unauthenticated and versioned schema writes are refused")
	}

	routerCfg := wireRouter(log, cfg, theDB, svc, exec, signer, hub, metrics)
	server := httpserver.NewServer(routerCfg)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Service:      svc,
		Executor:     exec,
		Signer:       signer,
		Metrics:      metrics,
		Bus:          eventBus,
		SSEHub:       hub,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// Start forwards bus messages into the SSE hub until Close.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if err := a.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start bus forwarder: %w", err)
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

// Shutdown stops accepting requests and drains in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("bus close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
