package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"inventario/docs"
	"inventario/internal/attachment"
	"inventario/internal/config"
	"inventario/internal/database"
	"inventario/internal/database/migration"
	"inventario/internal/events"
	handlers "inventario/internal/http/handler"
	"inventario/internal/http/middleware"
	"inventario/internal/logger"
	apiotel "inventario/internal/otel"
	"inventario/internal/repository/postgres"
	"inventario/internal/service"
	"inventario/internal/storage"
	"inventario/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func migrateAction(ctx context.Context, _ *cli.Command) error {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	return migration.EnsureMigrated(ctx, db, log, cfg.Database.Host)
}

func serveAction(ctx context.Context, _ *cli.Command) error {
	cfg := config.Load()
	log := logger.New(cfg.Log)

	shutdownTracing, err := apiotel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	backend, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init attachment storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	files, err := attachment.NewStore(backend, cfg.Storage.MaxBytes, reg)
	if err != nil {
		return fmt.Errorf("init attachment store: %w", err)
	}

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	publishers := events.Multi{hub}
	if cfg.RabbitMQ.URL != "" {
		mq, err := events.NewRabbitMQ(cfg.RabbitMQ)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer mq.Close()
		publishers = append(publishers, mq)
		log.Info("event_publisher_enabled", "queue", cfg.RabbitMQ.Queue)
	}

	productSvc := service.NewProductService(
		postgres.NewProductPostgres(db),
		files,
		service.WithPublisher(publishers),
		service.WithPrune(cfg.Storage.Prune),
		service.WithLogger(log),
	)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "inventario",
		BodyLimit:    cfg.BodyLimitBytes,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Routes{
		DB:        db,
		Products:  productSvc,
		Files:     files,
		Events:    hub.Serve,
		Metrics:   middleware.MetricsHandler(reg),
		PublicDir: cfg.PublicDir,
	})

	return listen(ctx, app, ":"+cfg.Port, log)
}

// listen serves until ctx is canceled, then drains in-flight requests.
func listen(ctx context.Context, app *fiber.App, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server_exited")
	return nil
}
