package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("propmap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "propmap-test" {
		t.Errorf("expected service name propmap-test, got %s", cfg.Telemetry.ServiceName)
	}
	if cfg.Explore.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %s", cfg.Explore.SessionTTL)
	}
	if cfg.Images.MaxBytes != 5<<20 {
		t.Errorf("expected 5 MiB image limit, got %d", cfg.Images.MaxBytes)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PROPMAP_SERVER_PORT", "9090")
	t.Setenv("PROPMAP_EXPLORE_CONTAINMENT", "polygon")

	cfg, err := Load("propmap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Explore.Containment != "polygon" {
		t.Errorf("expected polygon containment, got %s", cfg.Explore.Containment)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Format: "xml"},
		Explore: ExploreConfig{Containment: "circle"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "database.host", "logging.format", "explore.containment", "images.max_bytes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "db", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@h:5432/db?sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}
