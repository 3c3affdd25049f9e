// Package chaintest provides an in-memory ethereum.ContractCaller for tests.
package chaintest

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrUnexpectedCall is returned when the test did not register a response for a call.
var ErrUnexpectedCall = errors.New("chaintest: unexpected contract call")

type callKey struct {
	to       common.Address
	selector [4]byte
}

type exactKey struct {
	to   common.Address
	data string
}

type callResult struct {
	output []byte
	err    error
}

// Caller answers eth_call requests from canned responses keyed by contract
// address and 4-byte method selector.
type Caller struct {
	mu        sync.Mutex
	responses map[callKey]callResult
	exact     map[exactKey]callResult
	calls     []ethereum.CallMsg
}

// NewCaller returns an empty Caller.
func NewCaller() *Caller {
	return &Caller{
		responses: make(map[callKey]callResult),
		exact:     make(map[exactKey]callResult),
	}
}

// Respond registers ABI-encoded outputs for method on contract to.
func (c *Caller) Respond(t testing.TB, to common.Address, method abi.Method, outputs ...interface{}) {
	t.Helper()

	packed, err := method.Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method.Name, err)
	}
	c.RespondRaw(to, method.ID, packed)
}

// RespondFor registers ABI-encoded outputs for method on contract to, used only
// when the call carries exactly args. It takes precedence over Respond.
func (c *Caller) RespondFor(t testing.TB, to common.Address, method abi.Method, args []interface{}, outputs ...interface{}) {
	t.Helper()

	input, err := method.Inputs.Pack(args...)
	if err != nil {
		t.Fatalf("pack %s inputs: %v", method.Name, err)
	}
	packed, err := method.Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method.Name, err)
	}

	data := append(append([]byte{}, method.ID...), input...)

	c.mu.Lock()
	c.exact[exactKey{to: to, data: string(data)}] = callResult{output: packed}
	c.mu.Unlock()
}

// RespondRaw registers a raw output for selector on contract to.
func (c *Caller) RespondRaw(to common.Address, selector []byte, output []byte) {
	c.set(to, selector, callResult{output: output})
}

// Fail makes calls to method on contract to return err.
func (c *Caller) Fail(to common.Address, method abi.Method, err error) {
	c.set(to, method.ID, callResult{err: err})
}

func (c *Caller) set(to common.Address, selector []byte, r callResult) {
	var key callKey
	key.to = to
	copy(key.selector[:], selector)

	c.mu.Lock()
	c.responses[key] = r
	c.mu.Unlock()
}

// CallContract implements ethereum.ContractCaller.
func (c *Caller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, msg)

	if msg.To == nil || len(msg.Data) < 4 {
		return nil, ErrUnexpectedCall
	}

	if r, ok := c.exact[exactKey{to: *msg.To, data: string(msg.Data)}]; ok {
		return r.output, r.err
	}

	var key callKey
	key.to = *msg.To
	copy(key.selector[:], msg.Data[:4])

	r, ok := c.responses[key]
	if !ok {
		return nil, ErrUnexpectedCall
	}
	return r.output, r.err
}

// CallData returns the calldata of every request sent to contract to, in order.
func (c *Caller) CallData(to common.Address) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out [][]byte
	for _, msg := range c.calls {
		if msg.To != nil && *msg.To == to {
			out = append(out, msg.Data)
		}
	}
	return out
}

// Calls returns how many eth_call requests the Caller has served.
func (c *Caller) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
