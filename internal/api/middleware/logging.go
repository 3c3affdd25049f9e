package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type logFieldsKey struct{}

// logFields collects handler-supplied attributes for the request log line.
type logFields struct {
	mu    sync.Mutex
	attrs []any
}

// AddLogFields attaches key/value pairs to the request log line written by
// RequestLogging. Outside RequestLogging it does nothing.
func AddLogFields(ctx context.Context, args ...any) {
	f, ok := ctx.Value(logFieldsKey{}).(*logFields)
	if !ok {
		return
	}
	f.mu.Lock()
	f.attrs = append(f.attrs, args...)
	f.mu.Unlock()
}

// RequestLogging logs every frame request once it completes: method, path,
// request id, status, size, duration, and whatever the handler added with
// AddLogFields (the rendered view, for frame endpoints). 5xx responses log at
// ERROR and 4xx at WARN.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		fields := &logFields{}

		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), logFieldsKey{}, fields)))

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"requestID", chimw.GetReqID(r.Context()),
			"status", rw.status,
			"duration", time.Since(start).Round(time.Millisecond).String(),
			"size", rw.size,
			"remoteAddr", r.RemoteAddr,
		}
		fields.mu.Lock()
		args = append(args, fields.attrs...)
		fields.mu.Unlock()

		level := slog.LevelInfo
		switch {
		case rw.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case rw.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		slog.Log(r.Context(), level, "http request", args...)
	})
}
