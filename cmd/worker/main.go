package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/propmap/internal/adapters/nats"
	"github.com/samirrijal/propmap/internal/adapters/postgres"
	"github.com/samirrijal/propmap/internal/adapters/valkey"
	"github.com/samirrijal/propmap/internal/core/ports"
	"github.com/samirrijal/propmap/internal/core/usecases"
	"github.com/samirrijal/propmap/internal/pkg/config"
	"github.com/samirrijal/propmap/internal/pkg/logging"
	"github.com/samirrijal/propmap/internal/pkg/validation"
	"github.com/samirrijal/propmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("propmap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	closeLogs, err := logging.Setup(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FluentHost: cfg.Logging.FluentHost,
		FluentPort: cfg.Logging.FluentPort,
		Tag:        "propmap-worker",
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLogs()

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vk, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, cache will not be invalidated", "error", err)
	} else {
		cache = vk
		defer vk.Close()
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Stream); err != nil {
		slog.Warn("nats unavailable, removals will not be announced", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	listings := usecases.NewListingService(
		postgres.NewListingRepo(db),
		postgres.NewImageStore(db, "/v1/images/"),
		cache,
		publisher,
		validation.MustNew(),
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ListingRemovalWorkflow)
	w.RegisterActivity(&workflows.RemovalActivities{Listings: listings})

	slog.Info("listing worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
