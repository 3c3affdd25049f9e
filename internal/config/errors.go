package config

import "errors"

// Sentinel errors for internal use.
var (
	ErrInvalidConfig = errors.New("invalid config")

	// Resolution
	ErrInvalidInput     = errors.New("invalid input: address or ENS name must be a non-empty string")
	ErrInvalidAddress   = errors.New("invalid address or ENS name")
	ErrUnresolvableName = errors.New("ENS name could not be resolved")
	ErrNameNotFound     = errors.New("ENS name has no address record")

	// Chain access
	ErrBalanceFetchFailed = errors.New("balance fetch failed")
	ErrChainIDMismatch    = errors.New("chain id mismatch")
	ErrMalformedResponse  = errors.New("malformed contract response")

	// Market data
	ErrPriceFetchFailed = errors.New("price fetch failed")
	ErrPriceMissing     = errors.New("price field missing from response")
)

// Error codes, shared with clients via JSON responses.
const (
	ErrorRequestTooLarge = "ERROR_REQUEST_TOO_LARGE"
	ErrorInternal        = "ERROR_INTERNAL"
)
