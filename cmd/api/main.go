package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/agriportal/agriportal-backend/api/controllers"
	"github.com/agriportal/agriportal-backend/api/routes"
	"github.com/agriportal/agriportal-backend/internal/certificates"
	"github.com/agriportal/agriportal-backend/internal/mailer"
	"github.com/agriportal/agriportal-backend/internal/messages"
	"github.com/agriportal/agriportal-backend/internal/notifications"
	"github.com/agriportal/agriportal-backend/internal/permits"
	product "github.com/agriportal/agriportal-backend/internal/products"
	"github.com/agriportal/agriportal-backend/internal/registrations"
	"github.com/agriportal/agriportal-backend/internal/uploads"
	"github.com/agriportal/agriportal-backend/pkg/config"
	"github.com/agriportal/agriportal-backend/pkg/db"
	"github.com/agriportal/agriportal-backend/pkg/logger"
	"github.com/agriportal/agriportal-backend/pkg/metrics"
	"github.com/agriportal/agriportal-backend/pkg/migrate"
	"github.com/agriportal/agriportal-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, db.Options{
		UseSQLite:   cfg.FeatureFlags.UseSQLite,
		AutoMigrate: cfg.FeatureFlags.AutoMigrate && cfg.App.IsDev(),
	}, logg)
	requireResource(ctx, logg, "database", err)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	transport, err := mailer.NewTransport(ctx, cfg.Mail, logg)
	requireResource(ctx, logg, "mail transport", err)

	generator := certificates.NewGenerator(cfg.Certificate, certificates.WithMetrics(pipelineMetrics))
	dispatcher, err := mailer.NewDispatcher(transport, mailer.Address{
		Name:  cfg.Mail.FromName,
		Email: cfg.Mail.FromEmail,
	}, generator, logg, pipelineMetrics)
	requireResource(ctx, logg, "mail dispatcher", err)

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	notificationService, err := notifications.NewService(notificationsRepo)
	requireResource(ctx, logg, "notifications service", err)

	registrationService, err := registrations.NewService(
		registrations.NewRepository(dbClient.DB()),
		dispatcher,
		generator,
		notificationService,
		logg,
	)
	requireResource(ctx, logg, "registrations service", err)

	permitService, err := permits.NewService(permits.NewRepository(dbClient.DB()), dispatcher, logg)
	requireResource(ctx, logg, "permits service", err)

	productService, err := product.NewService(product.NewRepository(dbClient.DB()), notificationsRepo, dbClient, logg)
	requireResource(ctx, logg, "products service", err)

	messageService, err := messages.NewService(messages.NewRepository(dbClient.DB()), redisClient, logg)
	requireResource(ctx, logg, "messages service", err)

	store, err := uploads.NewDiskStore(cfg.Uploads.Dir)
	requireResource(ctx, logg, "uploads directory", err)
	uploadService, err := uploads.NewService(cfg.Uploads, store, logg)
	requireResource(ctx, logg, "uploads service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"mail_transport": transport.Name(),
		"db_driver":      dbClient.Driver(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Health: map[string]controllers.Pinger{
				"db":    dbClient,
				"redis": redisClient,
			},
			Redis:         redisClient,
			Metrics:       registry,
			Registrations: registrationService,
			Permits:       permitService,
			Products:      productService,
			Notifications: notificationService,
			Messages:      messageService,
			Uploads:       uploadService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if shutdownErr != nil {
		logg.Error(serverCtx, "error during shutdown", shutdownErr)
		os.Exit(1)
	}
	logg.Info(serverCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize resource", err)
	os.Exit(1)
}
