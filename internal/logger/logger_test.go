package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.WithFields(map[string]any{"session": "abc"}).Error(errors.New("boom"), "click failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["level"] != "error" || entry["session"] != "abc" || entry["error"] != "boom" || entry["message"] != "click failed" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestLevelFiltersEntries(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "WARN", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info("hidden")
	log.Debug("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Info("ignored")
	log.Error(errors.New("x"), "ignored")
	if log.WithFields(map[string]any{"a": 1}) != nil {
		t.Fatalf("nil logger should derive nil")
	}
	Nop().Info("discarded")
}
