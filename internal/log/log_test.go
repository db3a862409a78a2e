package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
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

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: FormatJSON, Component: ComponentLedger, Output: &buf})

	l.InfoContext(context.Background(), "payment recorded", FieldAmountCents, 1200)
	l.WithComponent(ComponentWorker).DebugContext(context.Background(), "mirrored")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0][FieldComponent] != ComponentLedger || lines[0][FieldAmountCents] != float64(1200) {
		t.Errorf("unexpected first line %v", lines[0])
	}
	if lines[1][FieldComponent] != ComponentWorker {
		t.Errorf("unexpected second line %v", lines[1])
	}
}

func TestNewHandlerFormats(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, FormatTint, "unknown"} {
		var buf bytes.Buffer
		h := NewHandler(Config{Level: slog.LevelInfo, Format: format, Output: &buf})
		slog.New(h).Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("format %q wrote %q", format, buf.String())
		}
	}
}

func TestFieldsToSliceIsSorted(t *testing.T) {
	got := NewFields().
		WithOperation(OpCreate).
		WithEntity("payment", "p1").
		WithError(errors.New("boom")).
		WithUser("").
		ToSlice()

	want := []any{FieldEntityID, "p1", FieldEntityKind, "payment", FieldError, "boom", FieldOperation, OpCreate}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: FormatJSON, Output: &buf}))
	req := httptest.NewRequest(http.MethodGet, "/payments?x=1", nil)

	sl.LogHTTPEnd(context.Background(), req, "req_1", http.StatusOK, 3, "1.2.3.4")
	sl.LogHTTPEnd(context.Background(), req, "req_2", http.StatusUnprocessableEntity, 3, "1.2.3.4")
	sl.LogHTTPEnd(context.Background(), req, "req_3", http.StatusInternalServerError, 3, "1.2.3.4")

	lines := decodeLines(t, &buf)
	levels := []string{"INFO", "WARN", "ERROR"}
	for i, l := range lines {
		if l["level"] != levels[i] || l[FieldComponent] != ComponentHTTP || l[FieldQuery] != "x=1" {
			t.Errorf("line %d: unexpected %v", i, l)
		}
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("expected fallback logger, got %q", got.Component())
	}

	l := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Errorf("expected attached logger, got %v", got)
	}
}
