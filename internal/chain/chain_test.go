package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Fantasim/sazonframe/internal/config"
)

type fakeChainID struct {
	id  *big.Int
	err error
}

func (f fakeChainID) ChainID(ctx context.Context) (*big.Int, error) {
	return f.id, f.err
}

func TestVerifyChainID(t *testing.T) {
	tests := []struct {
		name    string
		client  fakeChainID
		wantErr error
	}{
		{"match", fakeChainID{id: big.NewInt(137)}, nil},
		{"mismatch", fakeChainID{id: big.NewInt(1)}, config.ErrChainIDMismatch},
		{"huge", fakeChainID{id: new(big.Int).Lsh(big.NewInt(1), 80)}, config.ErrChainIDMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyChainID(context.Background(), tt.client, 137)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("VerifyChainID() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("VerifyChainID() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyChainID_RPCError(t *testing.T) {
	rpcErr := errors.New("connection refused")
	err := VerifyChainID(context.Background(), fakeChainID{err: rpcErr}, 137)
	if !errors.Is(err, rpcErr) {
		t.Fatalf("VerifyChainID() error = %v, want wrapped rpc error", err)
	}
}

func TestRunHealthChecks(t *testing.T) {
	checks := []EndpointCheck{
		{Name: "polygon", Client: fakeChainID{id: big.NewInt(137)}, ChainID: 137},
		{Name: "mainnet", Client: fakeChainID{err: errors.New("timeout")}, ChainID: 1},
	}

	results := RunHealthChecks(context.Background(), time.Second, checks)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].OK || results[0].Name != "polygon" {
		t.Errorf("results[0] = %+v, want polygon OK", results[0])
	}
	if results[1].OK || results[1].Error == nil {
		t.Errorf("results[1] = %+v, want mainnet failure", results[1])
	}
}
