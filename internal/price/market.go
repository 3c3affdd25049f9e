package price

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Fantasim/sazonframe/internal/config"
)

// PriceService fetches the token's USD spot price from a market-data endpoint
// serving a DEX-pair document.
type PriceService struct {
	client *http.Client
	url    string
}

// NewPriceService creates a PriceService for the pair endpoint at url.
func NewPriceService(url string) *PriceService {
	slog.Info("price service initialized", "url", url)

	return &PriceService{
		client: &http.Client{
			Timeout: config.APITimeout,
		},
		url: url,
	}
}

// pairResponse is the subset of the pair document we read: {"pair":{"priceUsd":"0.0001"}}.
type pairResponse struct {
	Pair *struct {
		PriceUSD json.RawMessage `json:"priceUsd"`
	} `json:"pair"`
}

// GetUSDPrice returns the spot price, or config.FallbackPriceUSD on any failure.
func (ps *PriceService) GetUSDPrice(ctx context.Context) float64 {
	usd, err := ps.FetchUSDPrice(ctx)
	return ps.orFallback(usd, err)
}

func (ps *PriceService) orFallback(usd float64, err error) float64 {
	if err != nil {
		slog.Error("price fetch failed, using fallback",
			"url", ps.url,
			"fallback", config.FallbackPriceUSD,
			"error", err,
		)
		return config.FallbackPriceUSD
	}
	return usd
}

// Recorder is a single-use price fetcher that behaves like GetUSDPrice and
// keeps the error behind the last fallback. It suits one-shot callers such as
// the CLI; it is not meant to be shared between requests.
type Recorder struct {
	svc *PriceService

	mu  sync.Mutex
	err error
}

// NewRecorder wraps svc.
func NewRecorder(svc *PriceService) *Recorder {
	return &Recorder{svc: svc}
}

// GetUSDPrice fetches once and records the outcome.
func (r *Recorder) GetUSDPrice(ctx context.Context) float64 {
	usd, err := r.svc.FetchUSDPrice(ctx)

	r.mu.Lock()
	r.err = err
	r.mu.Unlock()

	return r.svc.orFallback(usd, err)
}

// Err returns the error of the last fetch, nil if it succeeded or never ran.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// FetchUSDPrice performs a single GET against the market-data endpoint.
// No retries.
func (ps *PriceService) FetchUSDPrice(ctx context.Context) (float64, error) {
	slog.Info("fetching token price", "url", ps.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ps.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", config.ErrPriceFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := ps.client.Do(req)
	if err != nil {
		slog.Error("market data request failed",
			"error", err,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return 0, fmt.Errorf("%w: %v", config.ErrPriceFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("market data non-200 response",
			"status", resp.StatusCode,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return 0, fmt.Errorf("%w: HTTP %d", config.ErrPriceFetchFailed, resp.StatusCode)
	}

	var body pairResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, config.MaxPriceResponseBytes)).Decode(&body); err != nil {
		slog.Error("market data decode failed",
			"error", err,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return 0, fmt.Errorf("%w: decode error: %v", config.ErrPriceFetchFailed, err)
	}

	if body.Pair == nil || len(body.Pair.PriceUSD) == 0 {
		return 0, fmt.Errorf("%w: %w", config.ErrPriceFetchFailed, config.ErrPriceMissing)
	}

	usd, err := parsePrice(body.Pair.PriceUSD)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", config.ErrPriceFetchFailed, err)
	}

	slog.Info("token price fetched",
		"priceUSD", usd,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return usd, nil
}

// parsePrice accepts the price as a JSON string ("0.00012") or number.
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return 0, config.ErrPriceMissing
	}

	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("priceUsd: %w", err)
		}
		if text == "" {
			return 0, config.ErrPriceMissing
		}
	}

	usd, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("priceUsd %q is not a number", text)
	}
	if math.IsNaN(usd) || math.IsInf(usd, 0) || usd < 0 {
		return 0, fmt.Errorf("priceUsd %q is out of range", text)
	}
	return usd, nil
}
