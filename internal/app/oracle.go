package app

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
)

// TotalManagedValue is the vault's idle base-asset balance plus the bound
// strategy's self-reported balance (zero when unbound).
//
// It is recomputed on every call and never cached: both terms are external
// balances that can move between calls. A strategy that cannot report its
// balance fails the read rather than counting as zero.
func (v *Vault) TotalManagedValue(ctx context.Context) (domain.Amount, error) {
	idle, stratBal, err := v.readBalances(ctx)
	if err != nil {
		return 0, err
	}
	total, err := idle.Add(stratBal)
	if err != nil {
		return 0, fmt.Errorf("total managed value: %w", err)
	}
	return total, nil
}

// IdleBalance is the base asset held directly by the vault.
func (v *Vault) IdleBalance(ctx context.Context) (domain.Amount, error) {
	idle, err := v.asset.BalanceOf(ctx, v.account)
	if err != nil {
		return 0, fmt.Errorf("read idle balance: %w", err)
	}
	return idle, nil
}

func (v *Vault) readBalances(ctx context.Context) (idle, strategy domain.Amount, err error) {
	idle, err = v.IdleBalance(ctx)
	if err != nil {
		return 0, 0, err
	}
	s, ok := v.currentStrategy()
	if !ok {
		return idle, 0, nil
	}
	strategy, err = s.BalanceOf(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read strategy %s balance: %w", s.Account(), err)
	}
	return idle, strategy, nil
}
