package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/cache"
	"github.com/alireja-khan/rbac-admin-portal/internal/config"
	"github.com/alireja-khan/rbac-admin-portal/internal/handler"
	"github.com/alireja-khan/rbac-admin-portal/internal/logger"
	"github.com/alireja-khan/rbac-admin-portal/internal/middleware"
	"github.com/alireja-khan/rbac-admin-portal/internal/query"
	"github.com/alireja-khan/rbac-admin-portal/internal/router"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
	"github.com/alireja-khan/rbac-admin-portal/internal/telemetry"
	"github.com/alireja-khan/rbac-admin-portal/internal/view"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting admin portal...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		log.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		log.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// List cache: Redis when configured, in-process otherwise. The portal
	// holds no data of record; losing the cache only costs a refetch.
	var listCache cache.Store = cache.NewMemoryStore()
	if cfg.Redis.Enabled {
		redisClient, err := cache.Connect(ctx, &cache.RedisConfig{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn(fmt.Sprintf("Redis connection failed, using in-process cache: %v", err))
		} else {
			defer redisClient.Close()
			listCache = cache.NewRedisStore(redisClient, 5*time.Minute)
			log.Info("Redis connected, list cache is shared")
		}
	}

	// Upstream API client and the query layer on top of it
	api := apiclient.New(&apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	})
	queries := query.NewCoordinator(api, listCache, log)

	// Session cookie store
	sessions := session.NewStore(&session.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.IsProduction(),
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(view.Templates())

	// Apply global middlewares
	engine.Use(gin.Recovery())
	if cfg.OTel.Enabled {
		engine.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))

	// Health check for the load balancer
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
		})
	})

	router.Register(engine, &router.Deps{
		Sessions:  sessions,
		Auth:      handler.NewAuthHandler(api, sessions, log),
		Dashboard: handler.NewDashboardHandler(),
		Users:     handler.NewUserHandler(queries, sessions, log),
		Projects:  handler.NewProjectHandler(queries, sessions, log),
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info(fmt.Sprintf("Admin portal listening on %s (upstream: %s)", addr, cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	log.Info("Server exited gracefully")
}
