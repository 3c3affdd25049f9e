package ens

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/text/unicode/norm"

	"github.com/Fantasim/sazonframe/internal/config"
)

const registryABIJSON = `[{"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

const resolverABIJSON = `[
	{"inputs":[{"name":"node","type":"bytes32"}],"name":"addr","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"interfaceID","type":"bytes4"}],"name":"supportsInterface","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"name","type":"bytes"},{"name":"data","type":"bytes"}],"name":"resolve","outputs":[{"name":"","type":"bytes"}],"stateMutability":"view","type":"function"}
]`

// WildcardInterfaceID is the ERC-165 id of resolve(bytes,bytes) (ENSIP-10).
var WildcardInterfaceID = [4]byte{0x90, 0x61, 0xb9, 0x23}

// maxLabelLength is the longest label DNS wire format can carry.
const maxLabelLength = 63

var (
	// RegistryABI covers the registry's resolver(bytes32) lookup.
	RegistryABI = mustParseABI(registryABIJSON)
	// ResolverABI covers addr(bytes32), supportsInterface(bytes4) and the
	// wildcard resolve(bytes,bytes).
	ResolverABI = mustParseABI(resolverABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("parse ABI: %v", err))
	}
	return parsed
}

// Client resolves ENS names through the on-chain registry.
type Client struct {
	caller   ethereum.ContractCaller
	registry common.Address
}

// NewClient creates a Client that reads the registry at registry through caller.
func NewClient(caller ethereum.ContractCaller, registry common.Address) *Client {
	slog.Info("ens client initialized", "registry", registry.Hex())
	return &Client{caller: caller, registry: registry}
}

// ResolveName returns the address record of name. When name has no resolver of
// its own, the nearest ancestor's resolver answers, provided it supports
// wildcard resolution. A name without a usable resolver or without an address
// record yields config.ErrNameNotFound.
func (c *Client) ResolveName(ctx context.Context, name string) (common.Address, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return common.Address{}, err
	}

	node := NameHash(normalized)
	start := time.Now()

	slog.Debug("resolving ENS name",
		"name", normalized,
		"node", node.Hex(),
	)

	resolverAddr, owner, err := c.findResolver(ctx, normalized)
	if err != nil {
		return common.Address{}, err
	}
	if resolverAddr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %q has no resolver", config.ErrNameNotFound, normalized)
	}

	var addr common.Address
	if owner == normalized {
		addr, err = c.callAddress(ctx, resolverAddr, ResolverABI, "addr", node)
	} else {
		addr, err = c.resolveWildcard(ctx, resolverAddr, owner, normalized, node)
	}
	if err != nil {
		return common.Address{}, fmt.Errorf("resolver %s addr lookup for %q: %w", resolverAddr.Hex(), normalized, err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %q", config.ErrNameNotFound, normalized)
	}

	slog.Info("ENS name resolved",
		"name", normalized,
		"resolver", resolverAddr.Hex(),
		"resolverName", owner,
		"address", addr.Hex(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return addr, nil
}

// findResolver asks the registry for the resolver of name, then of each parent
// in turn, and returns the first one set together with the name it is set on.
// The top-level label is only asked about when it is the name itself.
func (c *Client) findResolver(ctx context.Context, name string) (common.Address, string, error) {
	for current := name; current != ""; current = parentName(current) {
		if current != name && !strings.Contains(current, ".") {
			break
		}

		values, err := c.call(ctx, c.registry, RegistryABI, "resolver", [32]byte(NameHash(current)))
		if err != nil {
			return common.Address{}, "", fmt.Errorf("registry lookup for %q: %w", current, err)
		}
		addr, err := addressValue(values, "resolver")
		if err != nil {
			return common.Address{}, "", err
		}

		if addr != (common.Address{}) {
			return addr, current, nil
		}
		slog.Debug("no resolver set on name", "name", current)
	}
	return common.Address{}, "", nil
}

// resolveWildcard reads the addr record of name through the resolver set on
// its ancestor owner.
func (c *Client) resolveWildcard(ctx context.Context, resolverAddr common.Address, owner, name string, node common.Hash) (common.Address, error) {
	values, err := c.call(ctx, resolverAddr, ResolverABI, "supportsInterface", WildcardInterfaceID)
	if err != nil {
		return common.Address{}, err
	}
	supported, ok := values[0].(bool)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: supportsInterface returned %T", config.ErrMalformedResponse, values[0])
	}
	if !supported {
		return common.Address{}, fmt.Errorf("%w: resolver of %q does not support wildcard names", config.ErrNameNotFound, owner)
	}

	encoded, err := DNSEncode(name)
	if err != nil {
		return common.Address{}, err
	}
	inner, err := ResolverABI.Pack("addr", [32]byte(node))
	if err != nil {
		return common.Address{}, fmt.Errorf("pack addr: %w", err)
	}

	values, err = c.call(ctx, resolverAddr, ResolverABI, "resolve", encoded, inner)
	if err != nil {
		return common.Address{}, err
	}
	result, ok := values[0].([]byte)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: resolve returned %T", config.ErrMalformedResponse, values[0])
	}
	if len(result) < 32 {
		return common.Address{}, fmt.Errorf("%w: resolve returned %d bytes of addr data, expected 32", config.ErrMalformedResponse, len(result))
	}

	addrValues, err := ResolverABI.Unpack("addr", result)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: unpack wildcard addr: %v", config.ErrMalformedResponse, err)
	}
	return addressValue(addrValues, "resolve")
}

func (c *Client) callAddress(ctx context.Context, to common.Address, contract abi.ABI, method string, node common.Hash) (common.Address, error) {
	values, err := c.call(ctx, to, contract, method, [32]byte(node))
	if err != nil {
		return common.Address{}, err
	}
	return addressValue(values, method)
}

// call packs args, runs one eth_call against to and unpacks the result.
func (c *Client) call(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(output) < 32 {
		return nil, fmt.Errorf("%w: %s returned %d bytes, expected at least 32", config.ErrMalformedResponse, method, len(output))
	}

	values, err := contract.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", config.ErrMalformedResponse, method, err)
	}
	return values, nil
}

func addressValue(values []interface{}, method string) (common.Address, error) {
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s returned %T", config.ErrMalformedResponse, method, values[0])
	}
	return addr, nil
}

func parentName(name string) string {
	_, parent, _ := strings.Cut(name, ".")
	return parent
}

// DNSEncode encodes name in DNS wire format: length-prefixed labels ending
// with a zero byte.
func DNSEncode(name string) ([]byte, error) {
	var out []byte
	for _, label := range strings.Split(name, ".") {
		if label == "" || len(label) > maxLabelLength {
			return nil, fmt.Errorf("%w: label %q cannot be DNS encoded", config.ErrInvalidAddress, label)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	return append(out, 0), nil
}

// Normalize lowercases name in NFC form and drops emoji presentation
// selectors (U+FE0F). It rejects empty labels, whitespace and control
// characters. This covers the common cases of ENSIP-15 but not its full
// confusable and script tables.
func Normalize(name string) (string, error) {
	normalized := strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
	normalized = strings.ReplaceAll(normalized, "\uFE0F", "")
	if normalized == "" {
		return "", fmt.Errorf("%w: empty ENS name", config.ErrInvalidInput)
	}

	disallowed := func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}
	if strings.IndexFunc(normalized, disallowed) >= 0 {
		return "", fmt.Errorf("%w: ENS name %q contains a disallowed character", config.ErrInvalidAddress, name)
	}

	for _, label := range strings.Split(normalized, ".") {
		if label == "" {
			return "", fmt.Errorf("%w: ENS name %q has an empty label", config.ErrInvalidAddress, name)
		}
	}

	return normalized, nil
}

// NameHash computes the EIP-137 namehash of an already normalized name.
func NameHash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}
