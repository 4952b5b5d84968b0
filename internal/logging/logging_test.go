package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":       logrus.InfoLevel,
		"debug":  logrus.DebugLevel,
		" WARN ": logrus.WarnLevel,
		"error":  logrus.ErrorLevel,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shopdesk.log")
	logger, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithField("request_id", "abc").Debug("GET /api/SanPham/newest")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if logger.File() != path {
		t.Fatalf("File() = %q, want %q", logger.File(), path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("log line %q is not JSON: %v", data, err)
	}
	if doc["level"] != "debug" || doc["request_id"] != "abc" || doc["msg"] != "GET /api/SanPham/newest" {
		t.Fatalf("log line = %v, want level, msg and field", doc)
	}
	if _, err := time.Parse(TimestampFormat, doc["time"].(string)); err != nil {
		t.Fatalf("time %v does not match TimestampFormat: %v", doc["time"], err)
	}
}

func TestNew_TeesWarningsOnly(t *testing.T) {
	var stderr bytes.Buffer
	logger, err := New(Options{Stderr: &stderr})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")

	out := stderr.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("stderr = %q, info should not be copied", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("stderr = %q, want warning", out)
	}
}

func TestNew_RejectsBadLevel(t *testing.T) {
	if _, err := New(Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error")
	}
}
