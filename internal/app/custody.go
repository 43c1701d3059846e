package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// checkCounterparty rejects accounts that cannot hold shares: the empty
// account, the vault's own custody account and the bound strategy. Asset
// moves between the vault and those accounts are not deposits or payouts.
func (v *Vault) checkCounterparty(op string, acct domain.Account) error {
	if acct.IsZero() {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidAccount)
	}
	if acct == v.account {
		return fmt.Errorf("%s: vault account %s: %w", op, acct, domain.ErrInvalidAccount)
	}
	if s, ok := v.currentStrategy(); ok && acct == s.Account() {
		return fmt.Errorf("%s: strategy account %s: %w", op, acct, domain.ErrInvalidAccount)
	}
	return nil
}

// deploy approves s for amount and hands it over through s.Deposit.
// On success a compensating Withdraw is recorded.
func (v *Vault) deploy(ctx context.Context, s ports.Strategy, amount domain.Amount, undo *undoLog) error {
	if err := v.hand(ctx, s, amount); err != nil {
		return err
	}
	undo.push(fmt.Sprintf("recall %s from strategy %s", amount, s.Account()), func(ctx context.Context) error {
		return s.Withdraw(ctx, v.account, amount)
	})
	return nil
}

func (v *Vault) hand(ctx context.Context, s ports.Strategy, amount domain.Amount) error {
	if amount == 0 {
		return nil
	}
	if err := v.asset.Approve(ctx, v.account, s.Account(), amount); err != nil {
		return fmt.Errorf("approve strategy %s for %s: %w", s.Account(), amount, err)
	}
	if err := s.Deposit(ctx, v.account, amount); err != nil {
		// Drop the unused allowance; the deposit error is what matters.
		_ = v.asset.Approve(ctx, v.account, s.Account(), 0)
		return fmt.Errorf("strategy %s deposit %s: %w", s.Account(), amount, err)
	}
	return nil
}

// recall pulls amount back from s and verifies it actually arrived.
//
// A strategy that reports success but returns less than requested is treated as
// ErrInsufficientStrategyFunds: whatever did arrive is redeployed and the
// caller's operation fails rather than settling partially.
func (v *Vault) recall(ctx context.Context, s ports.Strategy, amount domain.Amount, undo *undoLog) error {
	before, err := v.IdleBalance(ctx)
	if err != nil {
		return err
	}
	withdrawErr := s.Withdraw(ctx, v.account, amount)

	// A failing strategy may still have forwarded part of the amount; whatever
	// arrived is redeployed on rollback either way.
	after, err := v.IdleBalance(ctx)
	if err != nil {
		return errors.Join(withdrawErr, err)
	}
	arrived := after.SaturatingSub(before)
	if arrived > 0 {
		undo.push(fmt.Sprintf("redeploy %s into strategy %s", arrived, s.Account()), func(ctx context.Context) error {
			return v.hand(ctx, s, arrived)
		})
	}

	if withdrawErr != nil {
		return fmt.Errorf("strategy %s withdraw %s: %w", s.Account(), amount, withdrawErr)
	}
	if arrived < amount {
		return fmt.Errorf("strategy %s returned %s of %s requested: %w",
			s.Account(), arrived, amount, ports.ErrInsufficientStrategyFunds)
	}
	return nil
}

// mint credits shares and principal together, recording the reversal.
func (v *Vault) mint(holder domain.Account, shares, assets domain.Amount, undo *undoLog) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	prevPrincipal := v.principal
	principal, err := v.principal.Add(assets)
	if err != nil {
		return fmt.Errorf("principal: %w", err)
	}
	if err := v.ledger.Mint(holder, shares); err != nil {
		return err
	}
	v.principal = principal

	undo.push(fmt.Sprintf("burn %s shares minted to %s", shares, holder), func(context.Context) error {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.principal = prevPrincipal
		return v.ledger.Burn(holder, shares)
	})
	return nil
}

// burn debits shares and reduces principal by the assets paid out, recording
// the reversal. Principal saturates at zero: payouts include yield that was
// never deposited as principal.
func (v *Vault) burn(holder domain.Account, shares, assets domain.Amount, undo *undoLog) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	prevPrincipal := v.principal
	if err := v.ledger.Burn(holder, shares); err != nil {
		return err
	}
	v.principal = v.principal.SaturatingSub(assets)

	undo.push(fmt.Sprintf("remint %s shares burned from %s", shares, holder), func(context.Context) error {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.principal = prevPrincipal
		return v.ledger.Mint(holder, shares)
	})
	return nil
}

// setBinding swaps the strategy binding, recording the reversal.
func (v *Vault) setBinding(next binding, undo *undoLog) {
	v.mu.Lock()
	prev := v.binding
	v.binding = next
	v.mu.Unlock()

	undo.push("restore previous strategy binding", func(context.Context) error {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.binding = prev
		return nil
	})
}
