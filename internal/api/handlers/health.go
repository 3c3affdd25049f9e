package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/models"
)

// HealthHandler returns a handler for the GET /api/health endpoint.
func HealthHandler(cfg *config.Config, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("health check requested", "remoteAddr", r.RemoteAddr)

		writeJSON(w, http.StatusOK, models.HealthResponse{
			Status:       "ok",
			Version:      version,
			ChainID:      cfg.ChainID,
			Network:      cfg.NetworkName(),
			TokenAddress: cfg.TokenAddress,
			TokenSymbol:  cfg.TokenSymbol,
		})
	}
}
