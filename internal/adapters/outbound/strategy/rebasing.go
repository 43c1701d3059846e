package strategy

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// Rebasing routes vault capital into a rebasing lending market.
type Rebasing struct {
	custody
	market ports.RebasingMarket
}

// NewRebasing creates a rebasing strategy at account, bound to vault.
func NewRebasing(account, vault domain.Account, asset ports.Asset, market ports.RebasingMarket) (*Rebasing, error) {
	c, err := newCustody(account, vault, asset)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, fmt.Errorf("rebasing strategy %s: market is nil", account)
	}
	return &Rebasing{custody: c, market: market}, nil
}

// Deposit implements ports.Strategy.
func (s *Rebasing) Deposit(ctx context.Context, caller domain.Account, amount domain.Amount) error {
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
	if err := s.market.Supply(ctx, s.account, amount); err != nil {
		_ = s.asset.Approve(ctx, s.account, s.market.Account(), 0)
		return s.refund(ctx, amount, asOperationFailure("supply", err))
	}
	return nil
}

// Withdraw implements ports.Strategy. Funds go straight to the vault.
func (s *Rebasing) Withdraw(ctx context.Context, caller domain.Account, amount domain.Amount) error {
	if err := s.authorize("withdraw", caller); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	if err := s.market.Withdraw(ctx, s.account, amount, s.vault); err != nil {
		return asOperationFailure("market withdraw", err)
	}
	return nil
}

// WithdrawAll implements ports.Strategy.
func (s *Rebasing) WithdrawAll(ctx context.Context, caller domain.Account) (domain.Amount, error) {
	if err := s.authorize("withdraw all", caller); err != nil {
		return 0, err
	}
	balance, err := s.BalanceOf(ctx)
	if err != nil {
		return 0, err
	}
	if balance > 0 {
		if err := s.market.Withdraw(ctx, s.account, balance, s.vault); err != nil {
			return 0, asOperationFailure("market withdraw all", err)
		}
	}
	stray, err := s.sweep(ctx)
	if err != nil {
		return balance, err
	}
	return balance + stray, nil
}

// Harvest implements ports.Strategy. Yield accrues in the receipt balance
// itself, so there is nothing to realize.
func (s *Rebasing) Harvest(_ context.Context, caller domain.Account) error {
	return s.authorize("harvest", caller)
}

// BalanceOf implements ports.Strategy.
func (s *Rebasing) BalanceOf(ctx context.Context) (domain.Amount, error) {
	balance, err := s.market.BalanceOf(ctx, s.account)
	if err != nil {
		return 0, asOperationFailure("market balance", err)
	}
	return balance, nil
}

var _ ports.Strategy = (*Rebasing)(nil)
