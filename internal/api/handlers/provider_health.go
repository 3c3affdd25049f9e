package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Fantasim/sazonframe/internal/chain"
	"github.com/Fantasim/sazonframe/internal/config"
	"github.com/Fantasim/sazonframe/internal/models"
)

// GetProviderHealth returns a handler for GET /api/health/providers.
// Every call checks the endpoints live and nothing is cached.
func GetProviderHealth(checks []chain.EndpointCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("provider health requested", "remoteAddr", r.RemoteAddr)

		results := chain.RunHealthChecks(r.Context(), config.HealthCheckTimeout, checks)

		providers := make([]models.ProviderHealth, 0, len(results))
		for i, res := range results {
			p := models.ProviderHealth{
				Name:      res.Name,
				ChainID:   checks[i].ChainID,
				Status:    "ok",
				LatencyMs: res.Latency.Milliseconds(),
			}
			if !res.OK {
				p.Status = "down"
				p.Error = res.Error.Error()
			}
			providers = append(providers, p)
		}

		slog.Debug("provider health response", "providerCount", len(providers))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": providers,
		})
	}
}
