package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orxport/internal/config"
	"orxport/internal/services"
)

func TestNewJSONHandlerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("exported", String("format", "png-64"), Int("count", 3))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v (%s)", err, buf.String())
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if payload["format"] != "png-64" || payload["count"] != float64(3) {
		t.Fatalf("unexpected attrs: %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerHeaderAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithWorker(services.WithEmoji(context.Background(), "grinning"), 2)
	WithContext(ctx, NewComponentLogger(logger, "export")).Info("rendered", String("dest_path", "out/png/grinning.png"))

	out := buf.String()
	if !strings.Contains(out, "INFO [export] Worker 2 · :grinning: – rendered") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - dest path: out/png/grinning.png") {
		t.Fatalf("expected field line, got %q", out)
	}
	if strings.Contains(out, "- worker:") {
		t.Fatalf("subject fields should not repeat at info level: %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", Error(errors.New("boom")))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "error: boom") {
		t.Fatalf("expected warn output with error, got %q", out)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "orxport.log")

	logger, err := NewFromConfig(&cfg, true)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Debug("debug enabled by verbose")

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "debug enabled by verbose") {
		t.Fatalf("expected debug line in log file, got %q", data)
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithWorker(ctx, 0)
	fields := ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldRunID || fields[1].Key != FieldWorker {
		t.Fatalf("unexpected field order: %v", fields)
	}
	if got := ContextFields(context.Background()); len(got) != 0 {
		t.Fatalf("expected no fields for bare context, got %v", got)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
	NewComponentLogger(nil, "cache").Info("ignored")
}
