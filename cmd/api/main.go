package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workflow-service/internal/api/http"
	"github.com/spec-kit/workflow-service/internal/api/http/handlers"
	"github.com/spec-kit/workflow-service/internal/config"
	"github.com/spec-kit/workflow-service/internal/events"
	"github.com/spec-kit/workflow-service/internal/observability"
	"github.com/spec-kit/workflow-service/internal/persistence"
	"github.com/spec-kit/workflow-service/internal/repository"
	"github.com/spec-kit/workflow-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	registerEventLogging(dispatcher, logger)

	store := repository.NewStore(pg.PoolHandle())

	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		Store:  store,
		Cache:  redis.CacheClient(),
		Logger: logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Resolver:   directoryService,
		Dispatcher: dispatcher,
	})
	requestService := service.NewChangeRequestService(service.ChangeRequestDependencies{
		Store:      store,
		Dispatcher: dispatcher,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, metrics),
		ChangeRequests: handlers.NewChangeRequestsHandler(requestService, metrics),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		DirectoryStore: directoryService,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// registerEventLogging mirrors every workflow event into the log stream.
func registerEventLogging(dispatcher events.Dispatcher, logger *zap.Logger) {
	dispatcher.SubscribeAll(func(ctx context.Context, event events.Event) error {
		logger.Info("workflow event",
			zap.String("type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.String("actor_id", event.ActorID),
			zap.Time("at", event.Timestamp))
		return nil
	})
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
