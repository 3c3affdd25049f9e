package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/Fantasim/sazonframe/internal/api/middleware"
	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/frame"
	"github.com/Fantasim/sazonframe/internal/view"
)

// Checker produces the view states served by the frame endpoints.
type Checker interface {
	Initial(note string) view.State
	Check(ctx context.Context, input string) view.State
	Title() string
}

// FrameDeps holds the dependencies of the frame handlers.
type FrameDeps struct {
	Checker  Checker
	Renderer *frame.Renderer
}

// InitialHandler returns a handler for GET|POST /api. A posted text input is
// echoed under the prompt.
func InitialHandler(deps *FrameDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := frame.ParseAction(r)

		var note string
		if action.Submitted {
			note = action.InputText
		}

		slog.Debug("initial frame requested",
			"method", r.Method,
			"fid", action.FID,
			"hasNote", note != "",
		)

		writeFrame(w, r, deps, deps.Checker.Initial(note))
	}
}

// CheckHandler returns a handler for GET|POST /api/check. The input is the
// submitted text, or the value carried by the pressed button.
func CheckHandler(deps *FrameDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := frame.ParseAction(r)

		slog.Info("balance check requested",
			"method", r.Method,
			"fid", action.FID,
			"buttonIndex", action.ButtonIndex,
			"input", action.Input(),
		)

		state := deps.Checker.Check(r.Context(), action.Input())
		writeFrame(w, r, deps, state)
	}
}

// writeFrame renders state into a buffer first so a template failure can still
// produce a clean error response.
func writeFrame(w http.ResponseWriter, r *http.Request, deps *FrameDeps, state view.State) {
	middleware.AddLogFields(r.Context(), "view", state.Kind.String())
	if state.Detail != "" {
		middleware.AddLogFields(r.Context(), "viewDetail", state.Detail)
	}

	f, err := deps.Renderer.Build(deps.Checker.Title(), state)
	if err != nil {
		slog.Error("failed to build frame", "kind", state.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, config.ErrorInternal, "failed to render frame")
		return
	}

	var buf bytes.Buffer
	if err := deps.Renderer.Render(&buf, f); err != nil {
		slog.Error("failed to render frame", "kind", state.Kind, "error", err)
		writeError(w, http.StatusInternalServerError, config.ErrorInternal, "failed to render frame")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write frame response", "error", err)
	}
}
