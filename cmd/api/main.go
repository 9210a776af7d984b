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

	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/secondary/postgres"
	"github.com/lorrc/fleet-dashboard-backend/internal/adapters/secondary/vehiclefeed"
	"github.com/lorrc/fleet-dashboard-backend/internal/auth"
	"github.com/lorrc/fleet-dashboard-backend/internal/config"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/services"
	"github.com/lorrc/fleet-dashboard-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// Background workers stop when ctx is cancelled during shutdown.
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Initialize Database Pool
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied", "path", cfg.Database.MigrationsPath)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Real-time hub
	hub := websocket.NewHub(logger)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	// 5. Dependency Injection (Wiring the Hexagon)
	recordRepo := postgres.NewRecordRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)

	// A nil interface, not a typed nil, marks the feed as unconfigured.
	var feed ports.VehicleFeed
	if cfg.VehicleFeed.URL != "" {
		feed = vehiclefeed.NewClient(cfg.VehicleFeed.URL, cfg.VehicleFeed.RequestTimeout, logger)
	}

	recordService := services.NewRecordService(recordRepo)
	statsService := services.NewStatsService(statsRepo)
	vehicleService := services.NewVehicleService(feed, recordRepo, hub, logger)

	if feed != nil {
		poller := services.NewPoller(vehicleService, cfg.VehicleFeed.PollInterval, logger)
		go poller.Run(ctx)
	} else {
		logger.Warn("VEHICLE_FEED_URL not set, serving stored vehicle records")
	}

	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(ctx, mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	var tokenManager *auth.TokenManager
	if cfg.JWT.Enabled {
		tokenManager = auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	}

	// 6. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Config:       cfg,
		Logger:       logger,
		Records:      recordService,
		Stats:        statsService,
		Vehicles:     vehicleService,
		Health:       pool,
		Hub:          hub,
		TokenManager: tokenManager,
		RateLimiter:  rateLimiter,
	})

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stops the poller and rate limiter cleanup and closes WebSocket clients.
	stop()
	select {
	case <-hubDone:
	case <-shutdownCtx.Done():
		logger.Warn("hub did not stop before shutdown deadline")
	}

	logger.Info("server shutdown complete")
}
