package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gym_backend/internal/config"
	"gym_backend/internal/events"
	"gym_backend/internal/handler"
	"gym_backend/internal/logger"
	"gym_backend/internal/middleware"
	"gym_backend/internal/repository"
	"gym_backend/internal/service"
	"gym_backend/internal/telemetry"
	"gym_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("Failed to initialise tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(tctx); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(ctx, dbPool); err != nil {
		log.Error("Failed to auto-migrate database", "error", err)
		os.Exit(1)
	}

	// --- Audit Events ---
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisAddr != "" {
		redisClient, err := events.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Error("Failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		publisher = events.NewRedisPublisher(redisClient, cfg.AuditStream)
		log.Info("Audit events enabled", "stream", cfg.AuditStream)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, utils.DefaultTokenTTL)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	paymentRepo := repository.NewPaymentRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, cfg.AdminCode, publisher)
	memberService := service.NewMemberService(userRepo, cfg.AdminCode, publisher)
	paymentService := service.NewPaymentService(paymentRepo, publisher)
	dashboardService := service.NewDashboardService(userRepo, paymentRepo)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(memberService)
	adminHandler := handler.NewAdminHandler(memberService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// --- Setup Gin Router ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("Invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		middleware.TracingMiddleware(cfg.ServiceName),
		middleware.MetricsMiddleware(metrics),
	)

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-auth-token, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	go authLimiter.RunSweeper(ctx, time.Minute, middleware.DefaultLimiterIdleTTL)

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, middleware.RateLimitMiddleware(authLimiter))
	userHandler.RegisterUserRoutes(apiGroup, jwtAuthMW, middleware.MemberMiddleware())
	paymentHandler.RegisterPaymentRoutes(apiGroup, jwtAuthMW, middleware.StrictlyMemberMiddleware())
	adminHandler.RegisterAdminRoutes(apiGroup, jwtAuthMW, middleware.AdminMiddleware())
	dashboardHandler.RegisterDashboardRoutes(apiGroup, jwtAuthMW, middleware.AdminMiddleware())

	router.GET("/health", handler.HealthHandler(dbPool))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "error", err)
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
}
