package ports

import (
	"context"

	"github.com/sufield/yieldvault/internal/domain"
)

// Asset is the base asset the vault accepts (a fungible token ledger).
//
// Spender-based calls model token allowances: TransferFrom moves funds owned by
// `from` on behalf of `spender`, which must hold a sufficient allowance granted
// through Approve.
//
// Error Contract:
//   - Transfer/TransferFrom/Approve return ErrAssetTransferFailed (wrapped) on any failure
//   - BalanceOf never fails for unknown accounts (returns 0)
type Asset interface {
	// Symbol is the asset's ticker, for display only.
	Symbol() string

	// BalanceOf returns the account's balance.
	BalanceOf(ctx context.Context, account domain.Account) (domain.Amount, error)

	// Transfer moves amount from `from` to `to`.
	Transfer(ctx context.Context, from, to domain.Account, amount domain.Amount) error

	// TransferFrom moves amount from `from` to `to`, consuming spender's allowance.
	TransferFrom(ctx context.Context, spender, from, to domain.Account, amount domain.Amount) error

	// Approve sets spender's allowance over owner's balance (overwrites, does not add).
	Approve(ctx context.Context, owner, spender domain.Account, amount domain.Amount) error
}

// Strategy is the pluggable yield source capability bound to at most one vault.
//
// Every mutating call carries the caller's account; implementations must reject
// any caller other than Vault() with ErrUnauthorizedCaller.
//
// Error Contract:
//   - Deposit returns ErrStrategyOperationFailed if the yield source rejects the supply
//   - Withdraw returns ErrInsufficientStrategyFunds if the amount cannot be returned
//     synchronously; it never returns less than requested while reporting success
//   - WithdrawAll returns the amount recalled
//   - Harvest returns ErrStrategyOperationFailed if a realization step signals failure
//   - BalanceOf returns an error rather than zero when the balance cannot be read
type Strategy interface {
	// Account is the strategy's own custody identity on the base asset.
	Account() domain.Account

	// Vault is the single vault allowed to drive this strategy.
	Vault() domain.Account

	// Deposit pulls amount from the vault (which has approved it) into the yield source.
	Deposit(ctx context.Context, caller domain.Account, amount domain.Amount) error

	// Withdraw returns exactly amount from the yield source to the vault.
	Withdraw(ctx context.Context, caller domain.Account, amount domain.Amount) error

	// WithdrawAll returns everything the strategy holds to the vault.
	WithdrawAll(ctx context.Context, caller domain.Account) (domain.Amount, error)

	// Harvest runs any protocol-specific yield realization step.
	Harvest(ctx context.Context, caller domain.Account) error

	// BalanceOf reports the strategy's holdings in base-asset units, including
	// yield already reflected in the receipt token.
	BalanceOf(ctx context.Context) (domain.Amount, error)
}

// RebasingMarket is a lending market whose receipt token tracks the underlying
// 1:1 and grows in place as interest accrues.
//
// Error Contract:
//   - Supply returns ErrAssetTransferFailed if the underlying cannot be pulled
//   - Withdraw returns ErrInsufficientStrategyFunds when the market lacks cash or
//     the owner's balance is below amount
type RebasingMarket interface {
	// Account is the market's custody identity (the spender to approve).
	Account() domain.Account

	// Supply pulls amount of underlying from `from` and credits receipt balance to it.
	Supply(ctx context.Context, from domain.Account, amount domain.Amount) error

	// Withdraw burns amount of owner's receipt balance and sends underlying to `to`.
	Withdraw(ctx context.Context, owner domain.Account, amount domain.Amount, to domain.Account) error

	// BalanceOf returns the owner's receipt balance in underlying units.
	BalanceOf(ctx context.Context, owner domain.Account) (domain.Amount, error)
}

// ExchangeRateMarket is a lending market with a fixed-unit receipt token whose
// redemption value is given by an external exchange rate (scaled by ExchangeRateScale).
//
// Mutating calls report failure through a non-zero code rather than an error;
// an error return is reserved for transport-level failures.
type ExchangeRateMarket interface {
	// Account is the market's custody identity (the spender to approve).
	Account() domain.Account

	// Mint supplies amount of underlying from minter and credits receipt tokens.
	Mint(ctx context.Context, minter domain.Account, amount domain.Amount) (uint64, error)

	// RedeemUnderlying burns enough receipt tokens to return amount of underlying.
	RedeemUnderlying(ctx context.Context, redeemer domain.Account, amount domain.Amount) (uint64, error)

	// Redeem burns receiptTokens and returns the underlying they are worth.
	Redeem(ctx context.Context, redeemer domain.Account, receiptTokens domain.Amount) (uint64, error)

	// AccrueInterest realizes pending interest into the exchange rate.
	AccrueInterest(ctx context.Context) (uint64, error)

	// BalanceOf returns owner's receipt token balance.
	BalanceOf(ctx context.Context, owner domain.Account) (domain.Amount, error)

	// ExchangeRate returns underlying per receipt token, scaled by ExchangeRateScale.
	ExchangeRate(ctx context.Context) (domain.Amount, error)
}

// ExchangeRateScale is the fixed-point scale of ExchangeRateMarket.ExchangeRate.
const ExchangeRateScale domain.Amount = 1_000_000_000_000_000_000

// EventSink receives the vault's audit trail.
//
// Error Contract:
//   - Publish errors are reported to the vault's logger; they never undo the
//     operation that produced the event
type EventSink interface {
	Publish(ctx context.Context, evt domain.Event) error
}

// OwnerVerifier decides whether a presented identity is the vault owner.
//
// Error Contract:
//   - VerifyOwner returns domain.ErrUnauthorized (wrapped) for any other identity
//     or for an identity that does not parse
type OwnerVerifier interface {
	VerifyOwner(ctx context.Context, presented string) error
}
