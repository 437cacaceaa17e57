package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"

	"github.com/samirrijal/propmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/propmap/internal/adapters/nats"
	"github.com/samirrijal/propmap/internal/adapters/postgres"
	"github.com/samirrijal/propmap/internal/adapters/valkey"
	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/explorer"
	"github.com/samirrijal/propmap/internal/core/ports"
	"github.com/samirrijal/propmap/internal/core/usecases"
	"github.com/samirrijal/propmap/internal/pkg/config"
	"github.com/samirrijal/propmap/internal/pkg/logging"
	"github.com/samirrijal/propmap/internal/pkg/telemetry"
	"github.com/samirrijal/propmap/internal/pkg/validation"
	"github.com/samirrijal/propmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("propmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	closeLogs, err := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FluentHost: cfg.Logging.FluentHost,
		FluentPort: cfg.Logging.FluentPort,
		Tag:        "propmap-api",
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLogs()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache
	var cache ports.CacheService
	vk, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		cache = vk
		defer vk.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Stream)
	if err != nil {
		slog.Warn("nats unavailable, listing events disabled", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	// Repos & use cases
	listingRepo := postgres.NewListingRepo(db)
	imageStore := postgres.NewImageStore(db, "/v1/images/")

	listingSvc := usecases.NewListingService(listingRepo, imageStore, cache, publisher, validation.MustNew()).
		WithMaxImageBytes(cfg.Images.MaxBytes)

	containment, err := explorer.ParseContainment(cfg.Explore.Containment)
	if err != nil {
		log.Fatalf("explore: %v", err)
	}
	exploreSvc := usecases.NewExploreService(listingSvc, containment, cfg.Explore.SessionTTL)
	go exploreSvc.RunJanitor(ctx, cfg.Explore.SweepInterval)

	// Listing events from any instance refresh the open sessions here.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable, sessions refresh on local writes only", "error", err)
	} else {
		defer sub.Close()
		err = sub.SubscribeListingEvents(ctx, func(ctx context.Context, ev *domain.ListingEvent) error {
			slog.Debug("listing event", "kind", ev.Kind, "listing_id", ev.ListingID)
			return exploreSvc.Refresh(ctx)
		})
		if err != nil {
			slog.Warn("subscribe listing events failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Listings:      listingSvc,
		Explore:       exploreSvc,
		DB:            db,
		Cache:         vk,
		MaxImageBytes: cfg.Images.MaxBytes,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Temporal (optional): enables DELETE ?async=true
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		slog.Warn("temporal unavailable, async removal disabled", "error", err)
	} else {
		defer tc.Close()
		deps.Removals = workflows.NewRemovalStarter(tc, cfg.Temporal.TaskQueue)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    int(cfg.Images.MaxBytes) + 1024*1024, // image plus form fields
		AppName:      "Propmap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSOrigins, ", "),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "containment", containment.String())
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
