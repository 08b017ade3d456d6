package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/commhub/backend/internal/infrastructure/auth"
	"github.com/commhub/backend/internal/infrastructure/cache"
	"github.com/commhub/backend/internal/infrastructure/config"
	"github.com/commhub/backend/internal/infrastructure/docx"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/commhub/backend/internal/infrastructure/outbound"
	"github.com/commhub/backend/internal/infrastructure/persistence"
	"github.com/commhub/backend/internal/infrastructure/telemetry"
	"github.com/commhub/backend/internal/interfaces/http/handler"
	"github.com/commhub/backend/internal/interfaces/http/middleware"
	"github.com/commhub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Env)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting communication service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		_ = tp.Shutdown(context.Background())
	}()

	db, err := persistence.NewDatabase(ctx, cfg.Database, log,
		persistence.WithQueryLogLevel(cfg.Log.Level),
		persistence.WithSlowQueryThreshold(cfg.Telemetry.SlowQuery),
		persistence.WithConnectRetry(5, 2*time.Second),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:        tp.IsEnabled() && cfg.Telemetry.DBTracing,
		DBName:         cfg.Database.DBName,
		LogFullSQL:     cfg.Telemetry.DBLogFullSQL && !cfg.App.IsProduction(),
		SlowQuery:      cfg.Telemetry.SlowQuery,
		TracerProvider: tp.Provider(),
	}, log); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}

	catalogCache, redisClient := cache.NewCatalogCache(ctx, cfg.Catalog, cfg.Redis, log)
	if redisClient != nil {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	reg := prometheus.DefaultRegisterer
	reg.MustRegister(outbound.BlockedRequests)
	reg.MustRegister(collectors.NewDBStatsCollector(db.SQL(), cfg.Database.DBName))
	letterMetrics := telemetry.NewLetterMetrics(reg)
	httpMetrics := middleware.NewHTTPMetrics(reg)

	documents, err := newDocumentRepository(cfg.DocumentRepository, log)
	if err != nil {
		log.Fatal("Failed to configure document repository", zap.Error(err))
	}
	members, err := newMemberDataSource(cfg.MemberData, log)
	if err != nil {
		log.Fatal("Failed to configure member data sources", zap.Error(err))
	}
	publisher, err := newArtifactPublisher(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to configure letter storage", zap.Error(err))
	}

	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	letterRepo := persistence.NewGormLetterRepository(db.DB)
	fieldRepo := persistence.NewGormFieldCatalogRepository(db.DB)

	fieldService := commapp.NewFieldCatalogService(fieldRepo, catalogCache, log)
	templateService := commapp.NewTemplateService(templateRepo, documents, docx.Extract, fieldService, log)
	letterService := commapp.NewLetterService(
		templateRepo,
		letterRepo,
		documents,
		members,
		fieldService,
		docx.NewMerger(docx.WithMergerLogger(log)),
		publisher,
		commapp.WithLetterMetrics(letterMetrics),
		commapp.WithLetterLogger(log),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health", "/metrics"))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Enabled:        tp.IsEnabled(),
		TracerProvider: tp.Provider(),
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(middleware.BodyLimits{
		Default:   cfg.HTTP.MaxJSONBodySize,
		Multipart: cfg.HTTP.MaxBodySize,
	}))
	if cfg.Telemetry.MetricsEnabled {
		engine.Use(httpMetrics.Middleware())
	}

	var generateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		generateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	base := handler.NewBaseHandler(log, !cfg.App.IsProduction())
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	health := handler.NewHealthHandler(checks, 2*time.Second, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	routerOpts := []router.RouterOption{
		router.WithHealth(health.Health),
		router.WithAPIMiddleware(
			middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
				Validator: jwtService,
				Logger:    log,
			}),
			middleware.SpanEnricher(),
		),
	}
	if cfg.Telemetry.MetricsEnabled {
		routerOpts = append(routerOpts, router.WithMetrics(prometheus.DefaultGatherer))
	}

	r := router.NewRouter(engine, routerOpts...)
	r.Register(router.NewCommunicationRoutes(router.CommunicationRoutesConfig{
		Handlers: router.CommunicationHandlers{
			Letters:   handler.NewLetterHandler(base, letterService),
			Templates: handler.NewTemplateHandler(base, templateService),
			Fields:    handler.NewFieldHandler(base, fieldService),
		},
		GenerateLimiter: generateLimiter,
		Logger:          log,
	}))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		c.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		c.AllowHeaders = cfg.CORSAllowHeaders
	}
	return c
}
