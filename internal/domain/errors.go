package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for share accounting failures
// Use with errors.Is() for checking and fmt.Errorf("%w", ...) for wrapping with context

var (
	// ErrInvalidAmount indicates a zero-amount deposit, withdrawal, mint, or burn
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientShares indicates the caller holds fewer shares than requested
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInsufficientBalance indicates a burn or debit exceeding the holder's balance
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNoStrategyBound indicates an operation that requires an active strategy
	ErrNoStrategyBound = errors.New("no strategy bound")

	// ErrNoSharesOutstanding indicates an asset conversion against a zero share supply
	ErrNoSharesOutstanding = errors.New("no shares outstanding")

	// ErrZeroManagedValue indicates shares are outstanding but the vault manages no value
	ErrZeroManagedValue = errors.New("shares outstanding against zero managed value")

	// ErrReentrancyViolation indicates a guarded operation was entered while another was in flight
	ErrReentrancyViolation = errors.New("reentrancy violation")

	// ErrUnauthorized indicates a caller without the owner credential
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDivisionByZero indicates a conversion with a zero denominator
	ErrDivisionByZero = errors.New("division by zero")

	// ErrAmountOverflow indicates an amount exceeding the representable range
	ErrAmountOverflow = errors.New("amount overflow")

	// ErrInvalidAccount indicates an empty account identity
	ErrInvalidAccount = errors.New("account cannot be empty")
)

// Rounding outcomes. Both wrap ErrInvalidAmount so callers matching on the
// zero-amount kind also catch deposits and withdrawals that round to nothing.
var (
	// ErrZeroShares indicates a non-zero deposit that would mint no shares
	ErrZeroShares = fmt.Errorf("deposit too small to mint shares: %w", ErrInvalidAmount)

	// ErrZeroAssets indicates a non-zero redemption that would pay out no assets
	ErrZeroAssets = fmt.Errorf("redemption too small to pay out assets: %w", ErrInvalidAmount)
)
