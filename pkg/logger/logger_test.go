package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithContextAddsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&buf, slog.LevelDebug))
	defer SetDefault(prev)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UsernameKey, "alice")
	ctx = context.WithValue(ctx, ServiceKey, "api")

	InfoContext(ctx, "hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{"msg": "hello", "request_id": "req-1", "username": "alice", "service": "api", "k": "v"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&buf, slog.LevelInfo))
	defer SetDefault(prev)

	Debug("noisy")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
