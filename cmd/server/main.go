package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/config"
	"github.com/iliyamo/bqomis-portal/internal/database"
	"github.com/iliyamo/bqomis-portal/internal/devdata"
	"github.com/iliyamo/bqomis-portal/internal/finder"
	"github.com/iliyamo/bqomis-portal/internal/handler"
	"github.com/iliyamo/bqomis-portal/internal/metrics"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/queue"
	"github.com/iliyamo/bqomis-portal/internal/refcache"
	"github.com/iliyamo/bqomis-portal/internal/repository"
	"github.com/iliyamo/bqomis-portal/internal/router"
	"github.com/iliyamo/bqomis-portal/internal/telemetry"
	queue_publisher "github.com/iliyamo/bqomis-portal/internal/service"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	if envErr != nil {
		logger.Warn("no .env file loaded; using process environment", "error", envErr)
	}

	shutdownTracing := telemetry.Setup(cfg.OTelServiceName, logger)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Error("mysql connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)); err != nil {
		logger.Error("mysql migrations failed", "error", err)
		os.Exit(1)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	reg := prometheus.DefaultRegisterer
	api := backend.NewClient(cfg.BackendBaseURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(logger.With("component", "backend")),
		backend.WithMetrics(metrics.NewBackendMetrics(reg)),
	)

	rc := config.LoadRefCacheConfig()
	catalog := handler.NewCatalog(api, refcache.New(rdb, rc.Prefix, rc.TTL, logger))
	finders := finder.NewRegistry(catalog, availability.DefaultThresholds, cfg.FinderIdleTTL, logger)
	defer finders.Close()

	sessions := repository.NewSessionRepo(db)
	publisher := queue_publisher.New(cfg.AMQPURL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AMQPURL != "" {
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogDir: "logs", Logger: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("booking consumer stopped", "error", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "request_id", v.RequestID}
			if v.Error != nil {
				logger.Error("request", append(args, "error", v.Error)...)
				return nil
			}
			logger.Info("request", args...)
			return nil
		},
	}))
	e.Use(middleware.Metrics(metrics.NewHTTPMetrics(reg)))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	router.RegisterRoutes(e, promhttp.Handler())
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, api, sessions, finders, logger),
		handler.NewProfileHandler(api, sessions, logger),
		cfg.JWTSecret,
		limit,
	)
	router.RegisterClient(e, router.ClientHandlers{
		Finder:    handler.NewFinderHandler(api, finders, logger),
		Booking:   handler.NewBookingHandler(api, publisher, logger),
		Reference: handler.NewReferenceHandler(catalog),
	}, cfg.JWTSecret, middleware.NewRedisCache(config.LoadCacheConfig(), rdb), limit)
	router.RegisterAdmin(e, router.AdminHandlers{
		Locations:    handler.NewAdminLocationHandler(api, catalog, logger),
		Appointments: handler.NewAdminAppointmentHandler(api),
		Users:        handler.NewAdminUserHandler(api, sessions, finders, logger),
		Settings:     handler.NewAdminSettingsHandler(api),
		Dashboard:    handler.NewAdminDashboardHandler(api),
		DevData:      handler.NewAdminDevDataHandler(devdata.NewRunner(api, logger, metrics.NewGeneratorMetrics(reg))),
	}, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "backend", cfg.BackendBaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", "error", err)
	}
}
