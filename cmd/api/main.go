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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/imartinde/senderos/internal/adapters/elevation"
	"github.com/imartinde/senderos/internal/adapters/http"
	"github.com/imartinde/senderos/internal/adapters/memory"
	"github.com/imartinde/senderos/internal/adapters/osrm"
	"github.com/imartinde/senderos/internal/adapters/overpass"
	"github.com/imartinde/senderos/internal/adapters/postgres"
	"github.com/imartinde/senderos/internal/adapters/valkey"
	"github.com/imartinde/senderos/internal/core/ports"
	"github.com/imartinde/senderos/internal/core/usecases"
	"github.com/imartinde/senderos/internal/pkg/config"
	"github.com/imartinde/senderos/internal/pkg/logging"
	"github.com/imartinde/senderos/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("senderos-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("senderos-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Cache: Valkey when reachable, in-process fallback otherwise.
	var cache ports.CacheService
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, using in-memory cache", "error", err)
		cache = memory.New()
	} else {
		defer vk.Close()
		cache = vk
	}

	// Providers
	routeProvider := osrm.New(
		cfg.OSRM.Servers,
		cfg.OSRM.MaxWaypoints,
		time.Duration(cfg.OSRM.TimeoutSeconds)*time.Second,
		cache,
	)
	elevationProvider := elevation.New(
		cfg.Elevation.Python,
		cfg.Elevation.Script,
		cfg.Elevation.DEMPath,
		time.Duration(cfg.Elevation.TimeoutSeconds)*time.Second,
	)

	// Database and POI source. The database is only required when the
	// imported store backs POI matching.
	var db *postgres.DB
	var poiRepo ports.PoiRepository
	var poiProvider ports.PoiProvider

	switch cfg.Pois.Source {
	case "database":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()

		repo := postgres.NewPoiRepo(db)
		poiRepo = repo
		poiProvider = postgres.NewPoiProvider(repo)
	default:
		poiProvider = overpass.New(
			cfg.Overpass.URL,
			time.Duration(cfg.Overpass.TimeoutSeconds)*time.Second,
			cache,
		)
	}

	// Use cases
	hikingSvc := usecases.NewHikingService(routeProvider, elevationProvider, cfg.OSRM.Profile)
	poiSvc := usecases.NewPoiService(poiProvider, cfg.Pois.PerCategoryLimit)

	deps := &http.Dependencies{
		Hiking:           hikingSvc,
		Pois:             poiSvc,
		PoiRepo:          poiRepo,
		DB:               db,
		Cache:            cache,
		DefaultPoiRadius: cfg.Pois.DefaultRadius,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Senderos API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:5173, https://*.senderosgc.es",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
