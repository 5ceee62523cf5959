package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentSeed, Output: &buf})

	logger.Info("loaded", FieldCount, 60)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec[FieldComponent] != ComponentSeed {
		t.Errorf("component = %v, want %q", rec[FieldComponent], ComponentSeed)
	}
	if rec[FieldCount] != float64(60) {
		t.Errorf("count = %v, want 60", rec[FieldCount])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record missing")
	}
}

func TestFromContext(t *testing.T) {
	logger := New(Config{Output: &bytes.Buffer{}, Component: ComponentHTTP})
	ctx := NewContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return stored logger")
	}

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	FromContext(context.Background()).Info("fallback")
	if !strings.Contains(buf.String(), `"component":"unknown"`) {
		t.Errorf("fallback logger should tag component unknown: %s", buf.String())
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{400, "WARN"},
		{500, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf, Component: ComponentHTTP}))
		r := httptest.NewRequest("GET", "/statistics?month=March", nil)

		sl.LogHTTPEnd(context.Background(), r, tt.status, 3, "127.0.0.1")

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("status %d: bad JSON: %v", tt.status, err)
		}
		if rec["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, rec["level"], tt.level)
		}
		if rec[FieldSuccess] != (tt.status < 400) {
			t.Errorf("status %d: success = %v", tt.status, rec[FieldSuccess])
		}
	}
}

func TestLogErrorWithNilFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))

	sl.LogError(context.Background(), "boom", errors.New("store down"), OpStatistics, nil)

	if !strings.Contains(buf.String(), "store down") {
		t.Errorf("error text missing from %s", buf.String())
	}
}

func TestWithRequestIDSkipsEmpty(t *testing.T) {
	if _, ok := NewFields().WithRequestID("")[FieldRequestID]; ok {
		t.Error("empty request id should not be recorded")
	}
	if got := NewFields().WithRequestID("req_1")[FieldRequestID]; got != "req_1" {
		t.Errorf("request id = %v", got)
	}
}
