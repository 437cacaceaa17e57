package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/propmap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID, propagated into the slog context
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Listings
	v1.Get("/listings", timeout.NewWithContext(ListListingsHandler(deps), requestTimeout))
	v1.Post("/listings", timeout.NewWithContext(CreateListingHandler(deps), requestTimeout))
	v1.Get("/listings/nearby", timeout.NewWithContext(NearbyListingsHandler(deps), requestTimeout))
	v1.Get("/listings/facets", timeout.NewWithContext(FacetsHandler(deps), requestTimeout))
	v1.Get("/listings/:id", timeout.NewWithContext(GetListingHandler(deps), requestTimeout))
	v1.Patch("/listings/:id", timeout.NewWithContext(UpdateListingHandler(deps), requestTimeout))
	v1.Delete("/listings/:id", timeout.NewWithContext(DeleteListingHandler(deps), requestTimeout))
	v1.Get("/images/:id", timeout.NewWithContext(GetImageHandler(deps), requestTimeout))

	// Explore sessions
	v1.Post("/explore/sessions", timeout.NewWithContext(OpenSessionHandler(deps), requestTimeout))
	v1.Get("/explore/sessions/:id", GetSessionHandler(deps))
	v1.Delete("/explore/sessions/:id", CloseSessionHandler(deps))
	v1.Post("/explore/sessions/:id/commands", ApplyCommandHandler(deps))
	v1.Get("/explore/visible", timeout.NewWithContext(VisibleHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/explore/:id", websocket.New(ExploreWebSocketHandler(deps.Explore)))
}
