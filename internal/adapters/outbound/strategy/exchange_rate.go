package strategy

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// ExchangeRate routes vault capital into an exchange-rate lending market.
type ExchangeRate struct {
	custody
	market ports.ExchangeRateMarket
}

// NewExchangeRate creates an exchange-rate strategy at account, bound to vault.
func NewExchangeRate(account, vault domain.Account, asset ports.Asset, market ports.ExchangeRateMarket) (*ExchangeRate, error) {
	c, err := newCustody(account, vault, asset)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, fmt.Errorf("exchange-rate strategy %s: market is nil", account)
	}
	return &ExchangeRate{custody: c, market: market}, nil
}

// Deposit implements ports.Strategy.
func (s *ExchangeRate) Deposit(ctx context.Context, caller domain.Account, amount domain.Amount) error {
	if err := s.authorize("deposit", caller); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := s.pull(ctx, amount); err != nil {
		return err
	}
	if err := s.asset.Approve(ctx, s.account, s.market.Account(), amount); err != nil {
		return s.refund(ctx, amount, fmt.Errorf("approve market: %w", err))
	}
	if err := s.call("mint", func() (uint64, error) { return s.market.Mint(ctx, s.account, amount) }); err != nil {
		_ = s.asset.Approve(ctx, s.account, s.market.Account(), 0)
		return s.refund(ctx, amount, err)
	}
	return nil
}

// Withdraw implements ports.Strategy. Redeemed funds are forwarded to the
// vault; if the market delivered less than amount, what arrived is still
// forwarded and ErrInsufficientStrategyFunds is returned.
func (s *ExchangeRate) Withdraw(ctx context.Context, caller domain.Account, amount domain.Amount) error {
	if err := s.authorize("withdraw", caller); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := s.call("redeem underlying", func() (uint64, error) {
		return s.market.RedeemUnderlying(ctx, s.account, amount)
	}); err != nil {
		return err
	}
	forwarded, err := s.sweep(ctx)
	if err != nil {
		return err
	}
	if forwarded < amount {
		return fmt.Errorf("market returned %s of %s: %w", forwarded, amount, ports.ErrInsufficientStrategyFunds)
	}
	return nil
}

// WithdrawAll implements ports.Strategy.
func (s *ExchangeRate) WithdrawAll(ctx context.Context, caller domain.Account) (domain.Amount, error) {
	if err := s.authorize("withdraw all", caller); err != nil {
		return 0, err
	}
	receipts, err := s.market.BalanceOf(ctx, s.account)
	if err != nil {
		return 0, asOperationFailure("receipt balance", err)
	}
	if receipts > 0 {
		if err := s.call("redeem", func() (uint64, error) {
			return s.market.Redeem(ctx, s.account, receipts)
		}); err != nil {
			return 0, err
		}
	}
	return s.sweep(ctx)
}

// Harvest implements ports.Strategy: it realizes pending interest into the
// exchange rate.
func (s *ExchangeRate) Harvest(ctx context.Context, caller domain.Account) error {
	if err := s.authorize("harvest", caller); err != nil {
		return err
	}
	return s.call("accrue interest", func() (uint64, error) { return s.market.AccrueInterest(ctx) })
}

// BalanceOf implements ports.Strategy: receipt tokens times the exchange rate.
// Any failure to read either term fails the call.
func (s *ExchangeRate) BalanceOf(ctx context.Context) (domain.Amount, error) {
	receipts, err := s.market.BalanceOf(ctx, s.account)
	if err != nil {
		return 0, asOperationFailure("receipt balance", err)
	}
	if receipts == 0 {
		return 0, nil
	}
	rate, err := s.market.ExchangeRate(ctx)
	if err != nil {
		return 0, asOperationFailure("exchange rate", err)
	}
	value, err := domain.MulDiv(receipts, rate, ports.ExchangeRateScale)
	if err != nil {
		return 0, asOperationFailure("value receipts", err)
	}
	return value, nil
}

// call runs a coded market call and converts a non-zero code into a MarketError.
func (s *ExchangeRate) call(op string, fn func() (uint64, error)) error {
	code, err := fn()
	if err != nil {
		return asOperationFailure("market "+op, err)
	}
	return ports.CheckCode(op, code)
}

var _ ports.Strategy = (*ExchangeRate)(nil)
