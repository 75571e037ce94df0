package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/webdevsha/permitak/internal/app"
	"github.com/webdevsha/permitak/internal/infrastructure/config"
	"github.com/webdevsha/permitak/internal/infrastructure/logger"
	"github.com/webdevsha/permitak/internal/infrastructure/scheduler"
	"github.com/webdevsha/permitak/internal/interfaces/http/handler"
	"github.com/webdevsha/permitak/internal/interfaces/http/middleware"
	"github.com/webdevsha/permitak/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer logger.Sync(log)

	log.Info("Starting Permit Akaun",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	container, err := app.Build(context.Background(), cfg, log, app.Options{Version: version})
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	sweeps, err := scheduler.NewSweepScheduler(container.Reconciler, container.Locker, log, scheduler.SweepSchedulerConfig{
		Enabled:   cfg.Sweep.Enabled,
		Interval:  cfg.Sweep.Interval,
		OlderThan: cfg.Sweep.OlderThan,
		Timeout:   cfg.Sweep.Timeout,
	})
	if err != nil {
		log.Fatal("Invalid sweep configuration", zap.Error(err))
	}
	sweeps.Start(context.Background())

	engine := newEngine(cfg, container, log)

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sweeps.Stop(ctx); err != nil {
		log.Warn("Sweep scheduler did not stop in time", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

// newEngine builds the gin engine. Middleware order:
//  1. RequestID
//  2. Tracing, so later middleware and handlers run inside the request span
//  3. Recovery
//  4. Logger
//  5. Metrics
//  6. Security headers, CORS and the body limit
func newEngine(cfg *config.Config, c *app.Container, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	if c.Tracer.IsEnabled() {
		engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(c.Metrics.GinMiddleware())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		AllowMethods:  cfg.HTTP.CORSAllowMethods,
		AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	api := []gin.HandlerFunc{middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:     c.JWT,
		TokenBlacklist: c.Blacklist,
		Logger:         log,
	})}
	if c.Tracer.IsEnabled() {
		api = append(api, middleware.TracingAttributeInjector())
	}

	now := handler.LocalClock(cfg.App.Location())
	router.Mount(engine, router.Handlers{
		Health:       handler.NewHealthHandler(c.DB, version),
		Locations:    handler.NewLocationHandler(c.Locations, c.Assignments),
		Tenants:      handler.NewTenantHandler(c.Tenants, c.Assignments, c.Arrears, now),
		Assignments:  handler.NewAssignmentHandler(c.Assignments),
		Payments:     handler.NewPaymentHandler(c.Tenants, c.Assignments, c.Reconciler, cfg.HTTP.MaxReceiptSize),
		Transactions: handler.NewTransactionHandler(c.Ledger),
		Dashboard:    handler.NewDashboardHandler(c.Arrears, now),
		Metrics:      c.Metrics.Handler(),
	}, api...)
	return engine
}
