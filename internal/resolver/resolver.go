package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Fantasim/sazonframe/internal/config"
)

// hexAddressRegex matches an EVM hex address (0x + 40 hex chars).
var hexAddressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NameService maps a name-service name to an address.
type NameService interface {
	ResolveName(ctx context.Context, name string) (common.Address, error)
}

// Resolver turns user input into a Polygon address.
type Resolver struct {
	names NameService
}

// New creates a Resolver. names may be nil, in which case only literal
// addresses resolve.
func New(names NameService) *Resolver {
	return &Resolver{names: names}
}

// Resolve returns input unchanged when it is an address, or the address an ENS
// name points to. Only one lookup is attempted per call.
//
// Errors wrap config.ErrInvalidInput for blank input, and config.ErrInvalidAddress
// otherwise; a failed name lookup additionally wraps config.ErrUnresolvableName.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", config.ErrInvalidInput
	}

	if IsAddress(trimmed) {
		slog.Debug("input is an address", "address", trimmed)
		return trimmed, nil
	}

	if !IsENSName(trimmed) {
		slog.Debug("input is neither an address nor an ENS name", "input", trimmed)
		return "", fmt.Errorf("%w: %q", config.ErrInvalidAddress, trimmed)
	}

	if r.names == nil {
		slog.Warn("ENS resolution unavailable, no name service configured", "name", trimmed)
		return "", fmt.Errorf("%w: %w", config.ErrInvalidAddress, config.ErrUnresolvableName)
	}

	addr, err := r.names.ResolveName(ctx, trimmed)
	if err != nil {
		slog.Error("error resolving ENS name",
			"name", trimmed,
			"error", err,
		)
		return "", fmt.Errorf("%w: %w", config.ErrInvalidAddress, config.ErrUnresolvableName)
	}
	if addr == (common.Address{}) {
		slog.Warn("ENS name resolved to the zero address", "name", trimmed)
		return "", fmt.Errorf("%w: %w", config.ErrInvalidAddress, config.ErrUnresolvableName)
	}

	return addr.Hex(), nil
}

// IsAddress reports whether s is a 0x-prefixed hex address. Mixed-case input
// must carry a valid EIP-55 checksum; all-lower and all-upper input is accepted as is.
func IsAddress(s string) bool {
	if !hexAddressRegex.MatchString(s) {
		return false
	}

	digits := s[2:]
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return true
	}
	return common.HexToAddress(s).Hex() == s
}

// IsENSName reports whether s ends with the ENS suffix (case-insensitive).
func IsENSName(s string) bool {
	lower := strings.ToLower(s)
	return len(lower) > len(config.ENSNameSuffix) && strings.HasSuffix(lower, config.ENSNameSuffix)
}
