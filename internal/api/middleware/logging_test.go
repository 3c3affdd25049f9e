package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// captureLogs routes the default logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// requestLine decodes the single "http request" record in buf.
func requestLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if rec["msg"] == "http request" {
			return rec
		}
	}
	t.Fatal("no http request log line written")
	return nil
}

// TestResponseWriter_Unwrap verifies the Unwrap method for interface assertion passthrough.
func TestResponseWriter_Unwrap(t *testing.T) {
	handler := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*responseWriter)
		if !ok {
			t.Fatal("expected *responseWriter")
		}
		unwrapped := rw.Unwrap()
		if unwrapped == nil {
			t.Fatal("Unwrap() returned nil")
		}
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
}

// TestResponseWriter_CapturesStatusAndSize verifies that status and size are tracked.
func TestResponseWriter_CapturesStatusAndSize(t *testing.T) {
	var captured *responseWriter
	handler := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest("POST", "/api/check", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", w.Code)
	}
	if w.Body.String() != "hello" {
		t.Errorf("expected body 'hello', got %q", w.Body.String())
	}
	if captured.status != http.StatusCreated || captured.size != 5 {
		t.Errorf("captured status=%d size=%d, want 201 and 5", captured.status, captured.size)
	}
}

// TestResponseWriter_DefaultStatus verifies a handler that never calls WriteHeader is logged as 200.
func TestResponseWriter_DefaultStatus(t *testing.T) {
	var captured *responseWriter
	handler := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if captured.status != http.StatusOK {
		t.Errorf("expected default status 200, got %d", captured.status)
	}
}

func TestRequestLogging_IncludesHandlerFields(t *testing.T) {
	buf := captureLogs(t)

	handler := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogFields(r.Context(), "view", "result")
		w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/check", nil))

	rec := requestLine(t, buf)
	if rec["view"] != "result" {
		t.Errorf("expected view=result in request log, got %v", rec["view"])
	}
	if rec["level"] != "INFO" {
		t.Errorf("expected INFO level, got %v", rec["level"])
	}
}

func TestRequestLogging_ServerErrorLevel(t *testing.T) {
	buf := captureLogs(t)

	handler := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if rec := requestLine(t, buf); rec["level"] != "ERROR" {
		t.Errorf("expected ERROR level for 500, got %v", rec["level"])
	}
}

func TestAddLogFields_OutsideRequestLogging(t *testing.T) {
	// Must not panic without the middleware in the chain.
	AddLogFields(httptest.NewRequest("GET", "/", nil).Context(), "view", "error")
}
