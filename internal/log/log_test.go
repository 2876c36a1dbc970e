package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		_ = SetLevel("info")
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background(), "hello", "tenant", "acme")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	if !strings.Contains(line, "ts=") {
		t.Fatalf("expected timestamp field in log line, got %q", line)
	}
	if !strings.Contains(line, "level=info") {
		t.Fatalf("expected level field in log line, got %q", line)
	}
	if !strings.Contains(line, "msg=hello") {
		t.Fatalf("expected message field in log line, got %q", line)
	}
	if !strings.Contains(line, "tenant=acme") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestWarnIsFilteredAtErrorLevel(t *testing.T) {
	buf := captureLogs(t)

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}
	Warn(nil, "logo fetch failed")
	if buf.Len() != 0 {
		t.Fatalf("expected warn to be filtered, got %q", buf.String())
	}

	if err := SetLevel("WARN"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}
	Warn(nil, "logo fetch failed")
	if !strings.Contains(buf.String(), "level=warn") {
		t.Fatalf("expected warn entry, got %q", buf.String())
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWithScopesRequestFields(t *testing.T) {
	buf := captureLogs(t)

	ctx := With(context.Background(), "host", "acme.mystore.app")
	ctx = With(ctx, "tenant", "acme-id")
	Info(ctx, "storefront loaded", "state", "ready")
	Info(context.Background(), "unscoped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "host=acme.mystore.app tenant=acme-id state=ready") {
		t.Fatalf("expected scoped fields before call fields, got %q", lines[0])
	}
	if strings.Contains(lines[1], "host=") {
		t.Fatalf("expected unscoped line without request fields, got %q", lines[1])
	}
}

func TestScopedFieldsAreNotSharedBetweenCalls(t *testing.T) {
	buf := captureLogs(t)

	ctx := With(context.Background(), "host", "bloom.mystore.app")
	Info(ctx, "first", "n", 1)
	Info(ctx, "second")

	if strings.Contains(strings.Split(buf.String(), "\n")[1], "n=1") {
		t.Fatalf("call fields leaked into a later entry: %q", buf.String())
	}
}
