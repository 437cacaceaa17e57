package http_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/propmap/api"
	handler "github.com/samirrijal/propmap/internal/adapters/http"
)

func loadSpec(t *testing.T) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the document and checks it covers every route.
func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/listings",
		"/v1/listings/nearby",
		"/v1/listings/facets",
		"/v1/listings/{id}",
		"/v1/images/{id}",
		"/v1/explore/sessions",
		"/v1/explore/sessions/{id}",
		"/v1/explore/sessions/{id}/commands",
		"/v1/explore/visible",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	expectedSchemas := []string{
		"Listing",
		"ListingInput",
		"ListingPatch",
		"FilterCriteria",
		"Command",
		"Snapshot",
		"SessionResponse",
		"Facets",
		"APIError",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPICommandActions keeps the documented command actions in step
// with what the explore service accepts.
func TestOpenAPICommandActions(t *testing.T) {
	spec := loadSpec(t)

	action := spec.Components.Schemas["Command"].Value.Properties["action"].Value
	got := make(map[string]bool)
	for _, v := range action.Enum {
		got[v.(string)] = true
	}
	for _, want := range []string{"search", "filter", "refine", "reset", "draw", "erase", "select", "deselect", "sort"} {
		if !got[want] {
			t.Errorf("action %q missing from Command schema", want)
		}
	}
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	spec := loadSpec(t)

	if spec.Info.Title != "Propmap API" {
		t.Errorf("expected title 'Propmap API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if spec.Info.Description == "" {
		t.Error("expected non-empty description")
	}
	if len(spec.Servers) == 0 {
		t.Fatal("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", spec.Info.Title, spec.Info.Version, spec.Servers[0].URL)
}

func TestDocsRoutes(t *testing.T) {
	app := fiber.New()
	handler.SetupDocs(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html, got %q", ct)
	}
	page, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(page, []byte("/docs/openapi.yaml")) {
		t.Error("expected the page to load /docs/openapi.yaml")
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("expected application/yaml, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, api.OpenAPI) {
		t.Error("expected the embedded document to be served unchanged")
	}
}
