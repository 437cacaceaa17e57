package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/propmap/api"
)

// docsPage loads Swagger UI from the CDN and points it at the embedded
// document. Operations start collapsed since the explore commands are long.
const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>propmap API</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="docs"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>SwaggerUIBundle({url: '/docs/openapi.yaml', dom_id: '#docs', docExpansion: 'none'});</script>
</body>
</html>`

// SetupDocs serves the API reference at /docs and the OpenAPI document at
// /docs/openapi.yaml. The document is compiled into the binary.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(docsPage)
	})
	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		c.Set(fiber.HeaderCacheControl, "public, max-age=300")
		return c.Send(api.OpenAPI)
	})
}
