package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/mapnav/internal/adapters/http"
	mongoadapter "github.com/samirrijal/mapnav/internal/adapters/mongo"
	natsadapter "github.com/samirrijal/mapnav/internal/adapters/nats"
	"github.com/samirrijal/mapnav/internal/adapters/postgres"
	"github.com/samirrijal/mapnav/internal/adapters/valkey"
	"github.com/samirrijal/mapnav/internal/core/ports"
	"github.com/samirrijal/mapnav/internal/core/usecases"
	"github.com/samirrijal/mapnav/internal/pkg/config"
	"github.com/samirrijal/mapnav/internal/pkg/logging"
	"github.com/samirrijal/mapnav/internal/pkg/metrics"
	"github.com/samirrijal/mapnav/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("mapnav-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	repo, closeDB, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer closeDB()

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	deps := &http.Dependencies{Cache: cache}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		publisher = pub
		deps.NATS = pub.Conn()
		defer pub.Close()
	}

	// Use cases
	deps.Locations = usecases.NewLocationService(repo, cacheSvc, publisher)
	deps.Distance = usecases.NewDistanceService()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "mapnav API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(http.CORSMiddleware(cfg.CORS.AllowOrigins, cfg.CORS.MaxAge))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "driver", cfg.Database.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// openRepository connects the configured store and returns its repository and closer.
func openRepository(ctx context.Context, cfg *config.Config) (ports.LocationRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, err := mongoadapter.New(ctx, cfg.Database.MongoURI, cfg.Database.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return mongoadapter.NewLocationRepo(client), client.Close, nil

	default:
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		go reportPoolStats(ctx, db)
		return postgres.NewLocationRepo(db), db.Close, nil
	}
}

// reportPoolStats refreshes the connection pool gauges every 15s.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
