package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type recordingPoster struct {
	tags []string
	msgs []map[string]interface{}
}

func (p *recordingPoster) Post(tag string, message interface{}) error {
	p.tags = append(p.tags, tag)
	p.msgs = append(p.msgs, message.(map[string]interface{}))
	return nil
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, slog.LevelInfo, "json")).Info("hello", "listing_id", "abc")
	if !strings.Contains(buf.String(), `"listing_id":"abc"`) {
		t.Errorf("expected json output, got %s", buf.String())
	}
}

func TestNewHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, slog.LevelWarn, "text")).Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("expected info suppressed at warn level, got %s", buf.String())
	}
}

func TestFluentHandler(t *testing.T) {
	p := &recordingPoster{}
	logger := slog.New(NewFluentHandler(p, slog.LevelInfo)).With("service", "api").WithGroup("req")

	logger.Debug("dropped")
	logger.Error("upload failed", "id", "x1", "error", errors.New("disk full"))

	if len(p.msgs) != 1 {
		t.Fatalf("expected 1 posted record, got %d", len(p.msgs))
	}
	if p.tags[0] != "error" {
		t.Errorf("expected tag error, got %s", p.tags[0])
	}
	m := p.msgs[0]
	if m["message"] != "upload failed" || m["service"] != "api" || m["req.id"] != "x1" {
		t.Errorf("unexpected record %+v", m)
	}
	if m["req.error"] != "disk full" {
		t.Errorf("expected error text, got %v", m["req.error"])
	}
}

func TestFanout(t *testing.T) {
	var buf bytes.Buffer
	p := &recordingPoster{}
	h := &fanout{handlers: []slog.Handler{
		NewHandler(&buf, slog.LevelInfo, "json"),
		NewFluentHandler(p, slog.LevelWarn),
	}}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "info only", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected stdout handler to log")
	}
	if len(p.msgs) != 0 {
		t.Error("fluent handler should skip info at warn level")
	}
}
