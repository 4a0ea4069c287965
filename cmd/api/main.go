package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/fleet-service/internal/api/http"
	"github.com/spec-kit/fleet-service/internal/api/http/handlers"
	"github.com/spec-kit/fleet-service/internal/api/ws"
	"github.com/spec-kit/fleet-service/internal/auth"
	"github.com/spec-kit/fleet-service/internal/config"
	"github.com/spec-kit/fleet-service/internal/events"
	"github.com/spec-kit/fleet-service/internal/observability"
	"github.com/spec-kit/fleet-service/internal/persistence"
	"github.com/spec-kit/fleet-service/internal/repository"
	"github.com/spec-kit/fleet-service/internal/service"
	"github.com/spec-kit/fleet-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	inspectionRepo := repository.NewInspectionRepository(pool)
	shipmentRepo := repository.NewShipmentRepository(pool)
	tripRepo := repository.NewTripRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo, logger)
	vehicleService := service.NewVehicleService(vehicleRepo)
	inspectionService := service.NewInspectionService(inspectionRepo, vehicleRepo, dispatcher)
	shipmentService := service.NewShipmentService(shipmentRepo, dispatcher)
	tripService := service.NewTripService(service.TripDependencies{
		TripRepo:     tripRepo,
		UserRepo:     userRepo,
		VehicleRepo:  vehicleRepo,
		ShipmentRepo: shipmentRepo,
	}, dispatcher)
	notificationService := service.NewNotificationService(
		dispatcher, notificationRepo, userRepo, redis.Client, logger, cfg.Notification)

	cookieIssuer := auth.NewCookieIssuer(authService.TokenManager(), auth.CookiePolicy{
		Domain:   cfg.Auth.CookieDomain,
		Path:     cfg.Auth.CookiePath,
		Secure:   cfg.Auth.CookieSecure,
		HTTPOnly: true,
		SameSite: cfg.Auth.CookieSameSite,
	})
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	hub := ws.NewHub(redis.Client, cfg.Notification, logger)
	streamAuth := ws.NewAuthenticator(authService.TokenManager(), userRepo, logger)
	streamHandler := ws.NewHandler(streamAuth, hub, logger)

	worker.StartNotificationWorker(ctx, notificationService, hub, logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cookieIssuer),
		Vehicles:       handlers.NewVehiclesHandler(vehicleService),
		Inspections:    handlers.NewInspectionsHandler(inspectionService),
		Shipments:      handlers.NewShipmentsHandler(shipmentService),
		Trips:          handlers.NewTripsHandler(tripService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Stream:         streamHandler,
		AuthMiddleware: authMiddleware,
	})

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
