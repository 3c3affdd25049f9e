package chain

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EndpointCheck describes one RPC endpoint and the chain id it must serve.
type EndpointCheck struct {
	Name    string
	Client  ChainIDReader
	ChainID int64
}

// HealthCheckResult holds the outcome of a single endpoint check.
type HealthCheckResult struct {
	Name    string
	OK      bool
	Latency time.Duration
	Error   error
}

// RunHealthChecks verifies every endpoint concurrently and logs the results.
// Failures only emit WARN logs; they never prevent startup or fail a request.
func RunHealthChecks(ctx context.Context, timeout time.Duration, checks []EndpointCheck) []HealthCheckResult {
	slog.Info("running rpc health checks", "endpoints", len(checks))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]HealthCheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(i int, c EndpointCheck) {
			defer wg.Done()

			start := time.Now()
			err := VerifyChainID(ctx, c.Client, c.ChainID)
			latency := time.Since(start)

			results[i] = HealthCheckResult{
				Name:    c.Name,
				OK:      err == nil,
				Latency: latency,
				Error:   err,
			}

			if err != nil {
				slog.Warn("rpc health check FAILED",
					"endpoint", c.Name,
					"chainID", c.ChainID,
					"latency", latency.Round(time.Millisecond),
					"error", err,
				)
				return
			}

			slog.Info("rpc health check passed",
				"endpoint", c.Name,
				"chainID", c.ChainID,
				"latency", latency.Round(time.Millisecond),
			)
		}(i, check)
	}

	wg.Wait()

	var failed int
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	slog.Info("rpc health checks complete",
		"total", len(results),
		"failed", failed,
	)

	return results
}
