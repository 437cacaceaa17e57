package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	natsadapter "github.com/samirrijal/propmap/internal/adapters/nats"
	"github.com/samirrijal/propmap/internal/adapters/postgres"
	"github.com/samirrijal/propmap/internal/core/ports"
	"github.com/samirrijal/propmap/internal/core/usecases"
	"github.com/samirrijal/propmap/internal/pkg/config"
	"github.com/samirrijal/propmap/internal/pkg/logging"
	"github.com/samirrijal/propmap/internal/pkg/validation"
)

// Imports a JSON array of listings from a file or an http(s) URL:
//
//	importer [-batch 500] seed/listings.json
func main() {
	batchSize := flag.Int("batch", usecases.DefaultImportBatchSize, "listings per upsert batch")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: importer [-batch N] <file.json|url>")
	}
	source := flag.Arg(0)

	cfg, err := config.Load("propmap-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	closeLogs, err := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Tag:    "propmap-importer",
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLogs()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	data, err := readSource(ctx, source)
	if err != nil {
		log.Fatalf("read %s: %v", source, err)
	}
	var records []usecases.ImportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatalf("parse %s: %v", source, err)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Open explore sessions pick the import up through the broker.
	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Stream); err != nil {
		slog.Warn("nats unavailable, import will not be announced", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	svc := usecases.NewListingService(
		postgres.NewListingRepo(db),
		postgres.NewImageStore(db, "/v1/images/"),
		nil,
		publisher,
		validation.MustNew(),
	)

	start := time.Now()
	report, err := svc.Import(ctx, records, *batchSize)
	for _, s := range report.Skipped {
		slog.Warn("skipped", "reason", s)
	}
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	slog.Info("import complete",
		"source", source,
		"imported", report.Imported,
		"skipped", len(report.Skipped),
		"duration", time.Since(start).Round(time.Millisecond),
	)
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
