package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Fantasim/sazonframe/internal/config"
)

// ChainIDReader is the subset of ethclient.Client used to verify which network
// an endpoint serves.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial opens a JSON-RPC client for rpcURL. For HTTP endpoints no request is
// made until the first call.
func Dial(ctx context.Context, name, rpcURL string) (*ethclient.Client, error) {
	slog.Info("chain rpc client connecting",
		"name", name,
		"rpcURL", rpcURL,
	)

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s RPC %s: %w", name, rpcURL, err)
	}

	slog.Info("chain rpc client connected", "name", name, "rpcURL", rpcURL)
	return client, nil
}

// VerifyChainID checks that the endpoint behind client reports the want chain id.
func VerifyChainID(ctx context.Context, client ChainIDReader, want int64) error {
	got, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("query chain id: %w", err)
	}

	if !got.IsInt64() || got.Int64() != want {
		return fmt.Errorf("%w: endpoint reports %s, expected %d", config.ErrChainIDMismatch, got.String(), want)
	}

	return nil
}
