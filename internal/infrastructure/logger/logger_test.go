package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gtservice/gtledger/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerFormatsOutput(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "json", Output: &buf})

		log.Info().Str("part", "BRK-001").Msg("hello")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
		}
		if entry["message"] != "hello" || entry["part"] != "BRK-001" {
			t.Fatalf("unexpected entry: %v", entry)
		}
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "console", Output: &buf})

		log.Info().Msg("hello")

		if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "hello") {
			t.Fatalf("expected console output, got %q", buf.String())
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "warn", Format: "json", Output: &buf})

		log.Info().Msg("dropped")

		if buf.Len() != 0 {
			t.Fatalf("expected info to be filtered, got %q", buf.String())
		}
	})
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = domain.ContextWithUser(ctx, &domain.User{ID: "user-7"})

	FromContext(ctx, base).Info().Msg("with context")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["request_id"] != "req-42" || entry["user_id"] != "user-7" {
		t.Fatalf("context fields missing: %v", entry)
	}
}

func TestFromContextWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: "json", Output: &buf})

	FromContext(context.Background(), base).Warn().Str("key", "k").Msg("bare")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := entry["request_id"]; ok {
		t.Fatalf("unexpected request_id: %v", entry)
	}
	if entry["level"] != "warn" || entry["key"] != "k" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
