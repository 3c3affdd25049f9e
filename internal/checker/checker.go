package checker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Fantasim/sazonframe/internal/view"
)

// AddressResolver turns free-form input into an address.
type AddressResolver interface {
	Resolve(ctx context.Context, input string) (string, error)
}

// BalanceFetcher returns a display balance or an error marker; it never fails.
type BalanceFetcher interface {
	BalanceText(ctx context.Context, holder string) string
}

// PriceFetcher returns a USD price or a fallback; it never fails.
type PriceFetcher interface {
	GetUSDPrice(ctx context.Context) float64
}

// Checker runs the balance check workflow: resolve, then balance, then price,
// one after another.
type Checker struct {
	resolver AddressResolver
	balances BalanceFetcher
	prices   PriceFetcher
	views    *view.Builder
}

// New creates a Checker.
func New(resolver AddressResolver, balances BalanceFetcher, prices PriceFetcher, views *view.Builder) *Checker {
	return &Checker{
		resolver: resolver,
		balances: balances,
		prices:   prices,
		views:    views,
	}
}

// Check produces the state for one check request. Every outcome is renderable,
// so it has no error return.
func (c *Checker) Check(ctx context.Context, input string) (state view.State) {
	if strings.TrimSpace(input) == "" {
		slog.Info("check requested without input")
		return c.views.MissingInput()
	}

	start := time.Now()

	// Last-resort guard: a panic in a collaborator still yields the failure view.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("balance check panicked", "input", input, "panic", r)
			state = c.views.Failure(input, fmt.Errorf("%v", r))
		}
	}()

	address, err := c.resolver.Resolve(ctx, input)
	if err != nil {
		slog.Warn("balance check failed at resolution",
			"input", input,
			"error", err,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return c.views.Failure(input, err)
	}

	slog.Info("fetching balance and price for address", "input", input, "address", address)

	balanceText := c.balances.BalanceText(ctx, address)
	priceUSD := c.prices.GetUSDPrice(ctx)

	state = c.views.Result(input, address, balanceText, priceUSD)

	slog.Info("balance check complete",
		"input", input,
		"address", address,
		"balance", balanceText,
		"priceUSD", priceUSD,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return state
}

// Initial returns the AwaitingInput state.
func (c *Checker) Initial(note string) view.State {
	return c.views.Initial(note)
}

// Title returns the frame title.
func (c *Checker) Title() string {
	return c.views.Title()
}
