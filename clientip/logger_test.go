package clientip

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
)

type loggerTestContextKey string

type capturedLogEntry struct {
	ctx   context.Context
	msg   string
	attrs map[string]any
}

type capturedLogger struct {
	mu      sync.Mutex
	entries []capturedLogEntry
}

func (l *capturedLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, capturedLogEntry{
		ctx:   ctx,
		msg:   msg,
		attrs: attrsToMap(args),
	})
}

func (l *capturedLogger) snapshot() []capturedLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]capturedLogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func attrsToMap(args []any) map[string]any {
	attrs := make(map[string]any)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs[key] = args[i+1]
	}
	return attrs
}

func assertAttr(t *testing.T, attrs map[string]any, key string, want any) {
	t.Helper()

	got, ok := attrs[key]
	if !ok {
		t.Fatalf("missing %q attr", key)
	}

	if got != want {
		t.Fatalf("%s attr = %v, want %v", key, got, want)
	}
}

func assertCommonSecurityWarningAttrs(t *testing.T, attrs map[string]any, event, source, path, remoteAddr string) {
	t.Helper()

	assertAttr(t, attrs, "event", event)
	assertAttr(t, attrs, "source", source)
	assertAttr(t, attrs, "path", path)
	assertAttr(t, attrs, "remote_addr", remoteAddr)
}

func TestLogging_MultipleHeaders_WarnsWithRequestContext(t *testing.T) {
	logger := &capturedLogger{}

	resolver, err := New(
		Priority(SourceXRealIP),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := newTestRequest("10.0.0.1:8080", nil)
	req.Header.Add("X-Real-IP", "1.1.1.1")
	req.Header.Add("X-Real-IP", "2.2.2.2")

	ctxKey := loggerTestContextKey("trace_id")
	req = req.WithContext(context.WithValue(context.Background(), ctxKey, "trace-123"))

	if result := resolver.Resolve(req); result.Valid() {
		t.Fatalf("Resolve() = %+v, want invalid result", result)
	}

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("warning count = %d, want 1", len(entries))
	}

	entry := entries[0]
	if got := entry.ctx.Value(ctxKey); got != "trace-123" {
		t.Fatalf("context value = %v, want trace-123", got)
	}
	assertCommonSecurityWarningAttrs(t, entry.attrs, securityEventMultipleHeaders, SourceXRealIP, "/contact", "10.0.0.1:8080")
	assertAttr(t, entry.attrs, "header", "X-Real-IP")
	assertAttr(t, entry.attrs, "header_count", 2)
}

func TestLogging_ChainTooLong(t *testing.T) {
	logger := &capturedLogger{}

	resolver, err := New(
		MaxChainLength(2),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := newTestRequest("10.0.0.1:8080", http.Header{"X-Forwarded-For": {"1.1.1.1, 2.2.2.2, 3.3.3.3"}})

	result := resolver.Resolve(req)
	if got := result.String(); got != "1.1.1.1" {
		t.Fatalf("Resolve() = %q, want 1.1.1.1", got)
	}

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("warning count = %d, want 1", len(entries))
	}

	assertCommonSecurityWarningAttrs(t, entries[0].attrs, securityEventChainTooLong, SourceXForwardedFor, "/contact", "10.0.0.1:8080")
	assertAttr(t, entries[0].attrs, "chain_length", 3)
	assertAttr(t, entries[0].attrs, "max_length", 2)
}

func TestLogging_NoWarningsForOrdinaryRequests(t *testing.T) {
	logger := &capturedLogger{}

	resolver, err := New(WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resolver.Resolve(newTestRequest("", http.Header{"X-Forwarded-For": {"unknown, 1.1.1.1"}}))
	resolver.Resolve(newTestRequest("", http.Header{"X-Real-Ip": {"not-an-ip"}}))

	if entries := logger.snapshot(); len(entries) != 0 {
		t.Fatalf("warning count = %d, want 0", len(entries))
	}
}

func TestWithLogger_AcceptsSlogLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := New(WithLogger(logger)); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}
