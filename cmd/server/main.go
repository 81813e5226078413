package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	aftersalesapp "github.com/tourze/aftersales/internal/application/aftersales"
	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/infrastructure/auth"
	"github.com/tourze/aftersales/internal/infrastructure/cache"
	"github.com/tourze/aftersales/internal/infrastructure/config"
	"github.com/tourze/aftersales/internal/infrastructure/event"
	"github.com/tourze/aftersales/internal/infrastructure/logger"
	"github.com/tourze/aftersales/internal/infrastructure/persistence"
	"github.com/tourze/aftersales/internal/infrastructure/scheduler"
	"github.com/tourze/aftersales/internal/infrastructure/telemetry"
	"github.com/tourze/aftersales/internal/interfaces/http/handler"
	"github.com/tourze/aftersales/internal/interfaces/http/middleware"
	"github.com/tourze/aftersales/internal/interfaces/http/router"
)

//	@title			Aftersales Service API
//	@version		1.0
//	@description	售后服务 API - 退货、退款与换货的全生命周期管理

//	@contact.name	API Support
//	@contact.url	https://github.com/tourze/aftersales

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Aftersales Service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// OpenTelemetry providers. Both are no-ops when telemetry is disabled.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    15 * time.Second,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Register gorm tracing when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Error("Failed to register database tracing", zap.Error(err))
		}
	}

	// Business metrics with backlog gauge collection
	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("aftersales.business"),
			Logger:          log,
			BacklogProvider: telemetry.NewGormBacklogMetricsProvider(db.DB),
		})
		if err != nil {
			log.Error("Failed to initialize business metrics", zap.Error(err))
			businessMetrics = nil
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(), time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize repositories
	aftersalesRepo := persistence.NewGormAftersalesRepository(db.DB)
	logRepo := persistence.NewGormAftersalesLogRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	skuRepo := persistence.NewGormSkuRepository(db.DB)
	stockService := persistence.NewGormStockService(db.DB)
	expressRepo := persistence.NewGormExpressCompanyRepository(db.DB)
	addressRepo := persistence.NewGormReturnAddressRepository(db.DB)

	// Submission guard: Redis-backed when configured, in-process otherwise.
	// The in-process guard only protects a single instance; multi-instance
	// deployments must configure Redis.
	var guard aftersalesapp.SubmissionGuard
	if cfg.Redis.Host != "" {
		redisGuard, err := cache.NewRedisSubmissionGuard(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, "aftersales")
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		guard = redisGuard
		log.Info("Redis submission guard enabled",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		guard = cache.NewInMemorySubmissionGuard()
		log.Info("In-memory submission guard enabled")
	}

	// Initialize application services
	calculator := aftersales.NewRefundCalculator(cfg.Aftersales.MaxRefundDays)
	aftersalesService := aftersalesapp.NewAftersalesService(
		aftersalesRepo, logRepo, orderRepo, expressRepo, calculator, log, cfg.Aftersales.TimeoutDays,
	)
	refundService := aftersalesapp.NewRefundService(aftersalesRepo, orderRepo, calculator)
	expressService := aftersalesapp.NewReturnExpressService(
		aftersalesRepo, expressRepo, addressRepo, guard, log,
	)

	// JWT service for authentication middleware
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Request created -> order line marked as in after-sales
	createdHandler := aftersalesapp.NewAftersalesCreatedHandler(orderRepo, log)
	eventBus.Subscribe(createdHandler)

	// State transitions -> order line status kept in sync
	statusChangedHandler := aftersalesapp.NewAftersalesStatusChangedHandler(orderRepo, log)
	eventBus.Subscribe(statusChangedHandler)

	// Request cancelled or closed -> order line released
	cancelledHandler := aftersalesapp.NewAftersalesCancelledHandler(orderRepo, log)
	eventBus.Subscribe(cancelledHandler)

	// Request completed -> stock restored, line completed, order rolled up
	completedHandler := aftersalesapp.NewAftersalesCompletedHandler(
		aftersalesRepo, orderRepo, skuRepo, stockService, orderRepo, orderRepo, log,
	)
	eventBus.Subscribe(completedHandler)

	log.Info("Event handlers registered",
		zap.Strings("created_events", createdHandler.EventTypes()),
		zap.Strings("status_changed_events", statusChangedHandler.EventTypes()),
		zap.Strings("cancelled_events", cancelledHandler.EventTypes()),
		zap.Strings("completed_events", completedHandler.EventTypes()),
	)

	// Inject event bus into services that publish events
	aftersalesService.SetEventPublisher(eventBus)
	expressService.SetEventPublisher(eventBus)

	if businessMetrics != nil {
		aftersalesService.SetBusinessMetrics(businessMetrics)
	}

	// Start timeout sweeper (if enabled)
	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
			Interval:   cfg.Scheduler.SweepInterval,
			BatchSize:  cfg.Scheduler.SweepBatchSize,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, aftersalesService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start timeout sweeper", zap.Error(err))
		}
		defer sweeper.Stop()
		log.Info("Timeout sweeper started",
			zap.Duration("interval", cfg.Scheduler.SweepInterval),
			zap.Int("batch_size", cfg.Scheduler.SweepBatchSize),
		)
	}

	// Initialize HTTP handlers
	aftersalesHandler := handler.NewAftersalesHandler(aftersalesService)
	refundHandler := handler.NewRefundHandler(refundService)
	expressHandler := handler.NewReturnExpressHandler(expressService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Observability middleware (no-ops when telemetry is disabled)
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:          cfg.Telemetry.Enabled,
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}))

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes.
	// The refund callback is invoked by the payment gateway, not a user.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/aftersales/callback/refund",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Enrich spans with user attributes once authentication has run
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingAttributeInjector())
	}

	// Customer-facing after-sales routes
	aftersalesRoutes := router.NewDomainGroup("aftersales", "/aftersales")
	aftersalesRoutes.POST("", aftersalesHandler.Apply)
	aftersalesRoutes.GET("", aftersalesHandler.List)
	aftersalesRoutes.POST("/refund-quote", refundHandler.Quote)
	aftersalesRoutes.POST("/callback/refund/:id", aftersalesHandler.RefundCallback)
	aftersalesRoutes.GET("/:id", aftersalesHandler.GetDetail)
	aftersalesRoutes.POST("/:id/cancel", aftersalesHandler.Cancel)
	aftersalesRoutes.POST("/:id/resubmit", aftersalesHandler.Resubmit)
	aftersalesRoutes.POST("/:id/return-express", expressHandler.SubmitReturnExpress)

	// Queries the order system makes against this service
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("/:orderId/refundable", refundHandler.OrderRefundable)
	orderRoutes.GET("/:orderId/line-status", refundHandler.OrderLineStatus)

	// Carrier registry and merchant return address
	expressRoutes := router.NewDomainGroup("express", "/express")
	expressRoutes.GET("/companies", expressHandler.ListCompanies)
	expressRoutes.GET("/return-address", expressHandler.GetReturnAddress)

	// Admin review and processing routes
	adminRoutes := router.NewDomainGroup("admin", "/admin/aftersales")
	adminRoutes.Use(middleware.RequireAdmin())
	adminRoutes.GET("", aftersalesHandler.AdminList)
	adminRoutes.POST("/sweep-timeouts", aftersalesHandler.SweepTimeouts)
	adminRoutes.GET("/:id", aftersalesHandler.AdminGetDetail)
	adminRoutes.POST("/:id/approve", aftersalesHandler.Approve)
	adminRoutes.POST("/:id/reject", aftersalesHandler.Reject)
	adminRoutes.POST("/:id/request-modification", aftersalesHandler.RequestModification)
	adminRoutes.POST("/:id/cancel", aftersalesHandler.AdminCancel)
	adminRoutes.POST("/:id/confirm-receipt", aftersalesHandler.ConfirmReceipt)
	adminRoutes.POST("/:id/confirm-exchange-shipment", aftersalesHandler.ConfirmExchangeShipment)
	adminRoutes.POST("/:id/cs-resolve", aftersalesHandler.CSResolve)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(aftersalesRoutes).
		Register(orderRoutes).
		Register(expressRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
