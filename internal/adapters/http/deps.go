package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/propmap/internal/adapters/postgres"
	"github.com/samirrijal/propmap/internal/adapters/valkey"
	"github.com/samirrijal/propmap/internal/core/ports"
	"github.com/samirrijal/propmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Listings *usecases.ListingService
	Explore  *usecases.ExploreService
	Removals ports.ListingRemovalScheduler // nil disables ?async=true
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache

	// MaxImageBytes bounds multipart uploads; zero uses the service default.
	MaxImageBytes int64
}
