package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ssu-portal/internal/api/http"
	"github.com/spec-kit/ssu-portal/internal/api/http/handlers"
	"github.com/spec-kit/ssu-portal/internal/auth"
	"github.com/spec-kit/ssu-portal/internal/config"
	"github.com/spec-kit/ssu-portal/internal/events"
	"github.com/spec-kit/ssu-portal/internal/observability"
	"github.com/spec-kit/ssu-portal/internal/persistence"
	"github.com/spec-kit/ssu-portal/internal/repository"
	"github.com/spec-kit/ssu-portal/internal/service"
	"github.com/spec-kit/ssu-portal/internal/store"
	"github.com/spec-kit/ssu-portal/internal/webhook"
	"github.com/spec-kit/ssu-portal/internal/worker"
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

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	snapshotRepo, err := repository.NewSnapshotRepository(cfg.Storage.Backend, redis.Client, pg.PoolHandle())
	if err != nil {
		logger.Fatal("failed to init snapshot repository", zap.Error(err))
	}
	settingsRepo, err := repository.NewSettingsRepository(cfg.Storage.Backend, redis.Client, pg.PoolHandle())
	if err != nil {
		logger.Fatal("failed to init settings repository", zap.Error(err))
	}

	ticketStore := store.NewTicketStore(snapshotRepo, logger)
	if err := ticketStore.Load(ctx); err != nil {
		logger.Fatal("failed to load tickets", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	confirmations := webhook.NewConfirmationHub(logger)
	sink := webhook.NewSinkClient(cfg.Delivery.RequestTimeout())

	lifecycleService := service.NewLifecycleService(ticketStore, dispatcher)
	importService := service.NewImportService(ticketStore, dispatcher)
	integrationService := service.NewIntegrationService(settingsRepo, cfg.App.PublicBaseURL, logger)
	deliveryService := service.NewDeliveryService(cfg.Delivery, service.DeliveryDependencies{
		Store:         ticketStore,
		Lifecycle:     lifecycleService,
		Settings:      settingsRepo,
		Sink:          sink,
		Confirmations: confirmations,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	seedUsers, err := auth.SeedUsers("123456", cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to seed user directory", zap.Error(err))
	}
	directory := auth.NewStaticDirectory(seedUsers)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(directory, tokens)
	authMiddleware := auth.NewAuthMiddleware(tokens, directory)

	notificationService := service.NewNotificationService(dispatcher, ticketStore, metrics, logger)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{BodyLimit: 32 * 1024 * 1024})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketStore, importService, lifecycleService, deliveryService),
		Integration:    handlers.NewIntegrationHandler(integrationService),
		Callback:       handlers.NewCallbackHandler(integrationService, confirmations, metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		mux := stdhttp.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		logger.Info("metrics listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := stdhttp.ListenAndServe(cfg.App.MetricsAddr, mux); err != nil {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
