package token

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/Fantasim/sazonframe/internal/config"
)

const erc20ABIJSON = `[
	{"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

// ERC20ABI holds the two read-only ERC-20 methods the fetcher calls.
var ERC20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic(fmt.Sprintf("parse ERC-20 ABI: %v", err))
	}
	return parsed
}()

// Fetcher reads balances of one ERC-20 contract.
type Fetcher struct {
	caller   ethereum.ContractCaller
	contract common.Address
	symbol   string
}

// NewFetcher creates a Fetcher for the token at contract.
func NewFetcher(caller ethereum.ContractCaller, contract common.Address, symbol string) *Fetcher {
	slog.Info("token fetcher initialized",
		"contract", contract.Hex(),
		"symbol", symbol,
	)
	return &Fetcher{caller: caller, contract: contract, symbol: symbol}
}

// Balance returns holder's balance scaled by the contract's decimals.
// balanceOf and decimals are read sequentially, decimals at call time.
func (f *Fetcher) Balance(ctx context.Context, holder string) (decimal.Decimal, error) {
	start := time.Now()
	holderAddr := common.HexToAddress(holder)

	slog.Info("fetching token balance",
		"symbol", f.symbol,
		"holder", holder,
	)

	raw, err := f.balanceOf(ctx, holderAddr)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: balanceOf %s: %w", config.ErrBalanceFetchFailed, holder, err)
	}

	decimals, err := f.decimals(ctx)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decimals: %w", config.ErrBalanceFetchFailed, err)
	}

	balance := decimal.NewFromBigInt(raw, -int32(decimals))

	slog.Info("token balance fetched",
		"symbol", f.symbol,
		"holder", holder,
		"raw", raw.String(),
		"decimals", decimals,
		"balance", balance.String(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return balance, nil
}

// BalanceText is Balance formatted for display. Failures are logged and
// replaced by config.BalanceErrorMarker so the caller can still render a view.
func (f *Fetcher) BalanceText(ctx context.Context, holder string) string {
	balance, err := f.Balance(ctx, holder)
	if err != nil {
		slog.Error("token balance fetch failed",
			"symbol", f.symbol,
			"holder", holder,
			"error", err,
		)
		return config.BalanceErrorMarker
	}
	return balance.String()
}

func (f *Fetcher) balanceOf(ctx context.Context, holder common.Address) (*big.Int, error) {
	values, err := f.call(ctx, "balanceOf", holder)
	if err != nil {
		return nil, err
	}

	raw, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf returned %T", config.ErrMalformedResponse, values[0])
	}
	return raw, nil
}

func (f *Fetcher) decimals(ctx context.Context) (uint8, error) {
	values, err := f.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}

	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: decimals returned %T", config.ErrMalformedResponse, values[0])
	}
	return d, nil
}

// call executes a read-only eth_call against the token contract at the latest block.
func (f *Fetcher) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := ERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	output, err := f.caller.CallContract(ctx, ethereum.CallMsg{To: &f.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	if len(output) < 32 {
		slog.Warn("malformed token contract response",
			"method", method,
			"outputLen", len(output),
			"expected", 32,
		)
		return nil, fmt.Errorf("%w: %s returned %d bytes, expected 32", config.ErrMalformedResponse, method, len(output))
	}

	values, err := ERC20ABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", config.ErrMalformedResponse, method, err)
	}
	return values, nil
}

// FormatUnits divides raw by 10^decimals exactly and drops trailing zeros.
func FormatUnits(raw *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
