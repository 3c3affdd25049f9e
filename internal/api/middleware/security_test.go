package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/models"
)

// okHandler is a simple handler that returns 200 OK for testing middleware.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// --- CORS Tests ---

func TestCORS_AllowAnyOrigin(t *testing.T) {
	handler := CORS(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/check", nil)
	req.Header.Set("Origin", "https://warpcast.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	acao := rec.Header().Get("Access-Control-Allow-Origin")
	if acao != "*" {
		t.Errorf("expected Access-Control-Allow-Origin *, got %q", acao)
	}

	if acac := rec.Header().Get("Access-Control-Allow-Credentials"); acac != "" {
		t.Errorf("expected no Access-Control-Allow-Credentials, got %q", acac)
	}
}

func TestCORS_NoOriginNoHeaders(t *testing.T) {
	handler := CORS(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if acao := rec.Header().Get("Access-Control-Allow-Origin"); acao != "" {
		t.Errorf("expected no Access-Control-Allow-Origin without Origin, got %q", acao)
	}
}

func TestCORS_PreflightOptions(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/check", nil)
	req.Header.Set("Origin", "https://warpcast.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if called {
		t.Error("preflight should not reach the inner handler")
	}
	if acam := rec.Header().Get("Access-Control-Allow-Methods"); acam != "GET, POST, OPTIONS" {
		t.Errorf("unexpected Access-Control-Allow-Methods %q", acam)
	}
	if maxAge := rec.Header().Get("Access-Control-Max-Age"); maxAge != "3600" {
		t.Errorf("expected Access-Control-Max-Age 3600, got %q", maxAge)
	}
}

// --- BodyLimit Tests ---

func TestBodyLimit_RejectsDeclaredOversize(t *testing.T) {
	handler := BodyLimit(16)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(strings.Repeat("x", 17)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	var body models.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Error.Code != config.ErrorRequestTooLarge {
		t.Errorf("expected code %s, got %s", config.ErrorRequestTooLarge, body.Error.Code)
	}
}

func TestBodyLimit_CapsUndeclaredBody(t *testing.T) {
	var readErr error
	handler := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Error("expected read error past the limit")
	}
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	var got string
	handler := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader("hello"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "hello" {
		t.Errorf("expected body 'hello', got %q", got)
	}
}
