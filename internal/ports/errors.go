package ports

import (
	"errors"
	"fmt"
)

// Infrastructure errors for the adapter layer.
//
// These errors represent failures of collaborators outside the vault (the base
// asset, the yield source behind a strategy) and are separate from domain errors
// which represent accounting failures.
//
// Usage:
//   - Adapters return these errors when an external call fails or signals failure
//   - Domain layer never imports or uses these errors directly
//   - The vault propagates them as hard failures of the enclosing operation

// ErrInsufficientStrategyFunds indicates a strategy cannot synchronously return
// the requested amount (illiquid market, balance below request).
//
// Used by:
//   - Strategy adapters on Withdraw
//   - The vault when a strategy reports success but the recalled funds fall short
var ErrInsufficientStrategyFunds = errors.New("insufficient strategy funds")

// ErrStrategyOperationFailed indicates the yield source signaled failure
// (non-zero market error code, failed supply, failed balance query).
var ErrStrategyOperationFailed = errors.New("strategy operation failed")

// ErrAssetTransferFailed indicates a base asset transfer, transferFrom, or approve failed.
var ErrAssetTransferFailed = errors.New("asset transfer failed")

// ErrUnauthorizedCaller indicates a strategy entry point called by anyone other
// than the vault it is bound to.
var ErrUnauthorizedCaller = errors.New("caller is not the bound vault")

// MarketError carries a non-zero error code returned by an exchange-rate market.
//
// It unwraps to ErrInsufficientStrategyFunds for CodeInsufficientCash and to
// ErrStrategyOperationFailed for every other code.
type MarketError struct {
	Op   string
	Code uint64
}

// Market error codes. Zero means success; any other value is a failure.
const (
	CodeOK                       uint64 = 0
	CodeUnauthorized             uint64 = 1
	CodeMathError                uint64 = 9
	CodeTokenInsufficientBalance uint64 = 13
	CodeInsufficientCash         uint64 = 14
)

func (e *MarketError) Error() string {
	return fmt.Sprintf("market %s failed with code %d", e.Op, e.Code)
}

func (e *MarketError) Unwrap() error {
	if e.Code == CodeInsufficientCash {
		return ErrInsufficientStrategyFunds
	}
	return ErrStrategyOperationFailed
}

// CheckCode converts a market return code into an error (nil for CodeOK).
func CheckCode(op string, code uint64) error {
	if code == CodeOK {
		return nil
	}
	return &MarketError{Op: op, Code: code}
}

// Compile-time check that errors implement error interface
var (
	_ error = ErrInsufficientStrategyFunds
	_ error = ErrStrategyOperationFailed
	_ error = ErrAssetTransferFailed
	_ error = ErrUnauthorizedCaller
	_ error = (*MarketError)(nil)
)
