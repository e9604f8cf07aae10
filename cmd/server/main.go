package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	handlers "github.com/ptiporki19/pxv-pay-app-sub003/internal/adapter/handler/http"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/adapter/repository"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
	domainRepo "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/repository"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/authz"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/database"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/events"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/geolite"
	grpcServer "github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/grpc"
	httpServer "github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/http"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/mail"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/metrics"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/realtime"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/resilience"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/infrastructure/storage"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/usecase"
	"github.com/ptiporki19/pxv-pay-app-sub003/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting PXV Pay",
		zap.String("environment", cfg.Service.Environment),
		zap.String("version", cfg.Service.Version),
		zap.String("config_file", cfg.File))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, logger); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	m := metrics.New()
	repos := database.NewRepositories(db, logger)

	// Realtime notifications, bridged through redis when configured
	var redisClient messaging.RedisClient
	if cfg.Redis.Enabled() {
		redisClient, err = messaging.NewRedisClient(messaging.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	} else {
		logger.Info("Redis not configured, notification streams are local to this instance")
	}

	hub := realtime.NewHub(realtime.Options{
		Buffer:        cfg.Realtime.SubscriberBuffer,
		ChannelPrefix: cfg.Realtime.ChannelPrefix,
		Redis:         redisClient,
		Metrics:       m,
		Logger:        logger,
	})
	if err := hub.Start(ctx); err != nil {
		logger.Fatal("Failed to start realtime hub", zap.Error(err))
	}
	defer func() {
		if err := hub.Close(); err != nil {
			logger.Error("Failed to close realtime hub", zap.Error(err))
		}
	}()

	// Outbound adapters
	var proofs provider.ProofStorage
	if cfg.Storage.Enabled() {
		s3Storage, err := storage.NewS3ProofStorage(ctx, cfg.Storage, logger)
		if err != nil {
			logger.Fatal("Failed to initialize proof storage", zap.Error(err))
		}
		proofs = s3Storage
	} else {
		logger.Warn("Proof storage not configured, proof uploads are rejected")
	}

	publisher, err := events.NewPublisher(ctx, cfg.Events, m, logger)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}

	mailer := mail.NewDecisionMailer(mail.NewMailer(cfg.Email, logger))

	geo, closeGeo, err := geolite.NewLocator(cfg.GeoIP, logger)
	if err != nil {
		logger.Fatal("Failed to initialize GeoIP locator", zap.Error(err))
	}
	defer closeGeo()

	var checker provider.PermissionChecker
	if cfg.SpiceDB.Enabled() {
		spicedb, closeSpiceDB, err := authz.NewSpiceDBChecker(cfg.SpiceDB, logger)
		if err != nil {
			logger.Fatal("Failed to initialize SpiceDB client", zap.Error(err))
		}
		defer closeSpiceDB()
		checker = spicedb
	}

	var profiles domainRepo.ProfileRepository
	if cfg.Supabase.Enabled() {
		breaker := resilience.NewCircuitBreaker("supabase_profiles", resilience.Settings{}, logger, m)
		profiles = repository.NewSupabaseProfileRepository(
			cfg.Supabase.ProjectURL,
			cfg.Supabase.ServiceRoleKey,
			cfg.Supabase.ProfilesTable,
			breaker,
			logger,
		)
	} else {
		logger.Warn("Hosted profile API not configured, only resource owners are authorized")
	}

	// Use cases
	authorizer := usecase.NewAuthorizationService(profiles, checker, cfg.Supabase.RoleCacheTTL, logger)
	notifications := usecase.NewNotificationService(repos.Notification, hub, m, logger)
	checkout := usecase.NewCheckoutService(
		repos.CheckoutLink,
		repos.PaymentMethod,
		repos.Payment,
		proofs,
		notifications,
		publisher,
		geo,
		m,
		usecase.ProofPolicy{MaxSize: cfg.Storage.MaxProofSize, AllowedTypes: cfg.Storage.AllowedTypes},
		logger,
	)
	payments := usecase.NewPaymentService(repos.Payment, authorizer, proofs, notifications, mailer, publisher, m, logger)
	links := usecase.NewCheckoutLinkService(repos.CheckoutLink, authorizer, logger)
	methods := usecase.NewPaymentMethodService(repos.PaymentMethod, authorizer, logger)
	dashboard := usecase.NewDashboardService(repos.Payment, repos.CheckoutLink, repos.Notification, logger)

	// Initialize servers
	dbCheck := func(ctx context.Context) error { return database.Ping(ctx, db) }
	httpSrv := httpServer.NewServer(cfg, logger, m, httpServer.Handlers{
		Checkout:      handlers.NewCheckoutHandler(checkout, logger),
		Payment:       handlers.NewPaymentHandler(payments, logger),
		CheckoutLink:  handlers.NewCheckoutLinkHandler(links, logger),
		PaymentMethod: handlers.NewPaymentMethodHandler(methods, logger),
		Notification:  handlers.NewNotificationHandler(notifications, 0, logger),
		Dashboard:     handlers.NewDashboardHandler(dashboard, logger),
	}, healthChecks(redisClient, dbCheck))
	grpcSrv := grpcServer.NewServer(cfg, logger, map[string]grpcServer.HealthCheck{"database": dbCheck})

	// Start servers
	go func() {
		if err := grpcSrv.Start(); err != nil {
			logger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()
	go grpcSrv.Watch(ctx, 15*time.Second)

	go func() {
		if err := httpSrv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down servers...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()

	// HTTP first so open SSE streams end before the hub closes
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	// Customer emails already queued are bounded by their own timeout
	payments.Wait()

	logger.Info("Servers shut down successfully")
}

func healthChecks(redisClient messaging.RedisClient, dbCheck httpServer.HealthCheck) map[string]httpServer.HealthCheck {
	checks := map[string]httpServer.HealthCheck{"database": dbCheck}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	return checks
}
