package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"payoutrecon/docs"
	"payoutrecon/internal/cache"
	"payoutrecon/internal/config"
	"payoutrecon/internal/database"
	"payoutrecon/internal/database/migration"
	handlers "payoutrecon/internal/http/handler"
	"payoutrecon/internal/http/middleware"
	"payoutrecon/internal/logger"
	"payoutrecon/internal/otel"
	"payoutrecon/internal/repository/postgres"
	"payoutrecon/internal/service"
	"payoutrecon/internal/shopify"
	"payoutrecon/internal/storage"
)

// maxUploadBytes bounds payout CSV uploads.
const maxUploadBytes = 32 << 20

// @title Payout Reconciliation API
// @version 1.0
// @description Reconciles Shopify orders against Shopify Payments payout exports.
// @BasePath /
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Location())
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		logger.Component(log, "api").Fatal("startup_failed", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	apiLog := logger.Component(log, "api")

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			apiLog.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return err
	}

	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	client := shopify.NewClient(shopify.OptionsFromConfig(cfg.Shopify), log)
	orderCache := cache.New(objStore, cfg.Cache.MaxAge(), cfg.Cache.Enabled, log)
	fetcher := cache.NewFetcher(client, orderCache)

	svc := service.NewReconciliationService(fetcher, objStore, postgres.NewRunPostgres(db), metrics, log, opts)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    maxUploadBytes,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Tracing(otel.ServiceName))
	app.Use(middleware.Logger(log))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.RegisterRoutes(app, db, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		apiLog.Info("server_listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	apiLog.Info("server_shutdown")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
