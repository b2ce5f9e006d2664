package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("json")); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}

	if err := Sync(); err != nil {
		t.Errorf("failed to sync logger: %v", err)
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "quotation created",
		String("number", "NXR000001"),
		Float64("total", 45500),
		Bool("replayed", false),
		Duration("elapsed", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "quotation created" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["number"] != "NXR000001" {
		t.Errorf("unexpected number: %v", entry["number"])
	}
	if entry["elapsed"] != "1.5s" {
		t.Errorf("unexpected elapsed: %v", entry["elapsed"])
	}
	src, _ := entry["source"].(string)
	if !strings.Contains(src, "logger_test.go") {
		t.Errorf("source should point at the caller, got %q", src)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()

	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug should be emitted after SetLevelString(debug), got %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
	_ = SetLevelString("info")
}

func TestLoggerNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("render")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "rendered", String("format", "pdf"))
	if !strings.Contains(buf.String(), "render.format=pdf") {
		t.Errorf("expected grouped attribute, got %q", buf.String())
	}
}
