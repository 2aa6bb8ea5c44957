package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewWritesJSONRecords(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Info(context.Background(), "hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewSlogLoggerWrapsCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Error(context.Background(), "boom")

	if !bytes.Contains(buf.Bytes(), []byte("msg=boom")) {
		t.Fatalf("expected text record, got %q", buf.String())
	}
}

func TestWithAddsPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	child := l.With("component", "auth")
	child.Warn(context.Background(), "locked")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["component"] != "auth" {
		t.Fatalf("expected persistent field, got %v", rec)
	}
}
