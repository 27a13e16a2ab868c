package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"":        Info,
		"WARNING": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestLogger_LevelAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFromCore(core, "dog-meal-planner").With(map[string]any{"request_id": "abc", "": "skipped"})

	l.Debug("hidden", nil)
	l.Info("plan created", map[string]any{"plan_id": "p1"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry above debug, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["app"] != "dog-meal-planner" || ctx["request_id"] != "abc" || ctx["plan_id"] != "p1" {
		t.Fatalf("unexpected fields %v", ctx)
	}
	if _, ok := ctx[""]; ok {
		t.Fatalf("blank keys must be dropped")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, Output: &buf})

	l.Warn("recipe rejected", map[string]any{"findings": 3})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "recipe rejected" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["findings"] != float64(3) {
		t.Fatalf("unexpected findings %v", entry["findings"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatText, Output: &buf})

	l.Info("starting server", map[string]any{"addr": ":8080"})

	if !strings.Contains(buf.String(), "starting server") || !strings.Contains(buf.String(), ":8080") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("ignored", map[string]any{"x": 1})
	if err := l.Sync(); err != nil {
		t.Fatalf("unexpected sync error: %v", err)
	}
}
