package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestForComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil)).With("service", "docqa-api")

	ForComponent(base, "rerank").Info("scored")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}
	if record["service"] != "docqa-api" {
		t.Fatalf("expected service attr to survive, got %v", record["service"])
	}
	if record["component"] != "rerank" {
		t.Fatalf("expected component attr, got %v", record["component"])
	}
}

func TestForComponentNilFallsBackToDefault(t *testing.T) {
	log := ForComponent(nil, "nats")
	if log == nil {
		t.Fatal("expected a usable logger for a nil base")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
