package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf, Options{})

	log.WithField("target", "primary").Info("forward attempted")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["message"] != "forward attempted" {
		t.Errorf("message = %v, want %q", entry["message"], "forward attempted")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["target"] != "primary" {
		t.Errorf("target = %v, want primary", entry["target"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf, Options{})

	log.Info("suppressed")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn entry missing")
	}
	if !strings.Contains(out, `"level":"warning"`) {
		t.Errorf("warn level not renamed to warning: %s", out)
	}
}

func TestWithError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf, Options{})

	log.WithError(errors.New("boom")).Error("forward failed")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("error field missing: %s", buf.String())
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
		nil,
	)
	log := slog.New(h)

	log.Info("hello")

	if !strings.Contains(a.String(), "hello") {
		t.Error("first handler missed record")
	}
	if !strings.Contains(b.String(), "hello") {
		t.Error("second handler missed record")
	}
}
