package app

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
)

// Withdraw burns sharesIn from holder and pays out their proportional slice of
// total managed value, recalling any shortfall from the bound strategy.
// It returns the assets paid.
//
// Error Contract:
//   - domain.ErrInvalidAccount if holder is empty, the vault itself or the
//     bound strategy
//   - domain.ErrInvalidAmount for zero shares; domain.ErrZeroAssets when the
//     shares are worth less than one unit
//   - domain.ErrInsufficientShares if holder owns fewer than sharesIn
//   - domain.ErrReentrancyViolation while another guarded operation is in flight
//   - ports.ErrInsufficientStrategyFunds if the strategy cannot cover the
//     shortfall; nothing is burned and nothing is paid
//   - ports.ErrAssetTransferFailed if the payout fails (shares are reminted)
func (v *Vault) Withdraw(ctx context.Context, holder domain.Account, sharesIn domain.Amount) (domain.Amount, error) {
	release, err := v.guard.enter(opWithdraw)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := v.checkCounterparty(opWithdraw, holder); err != nil {
		return 0, err
	}
	if sharesIn == 0 {
		return 0, fmt.Errorf("%s: %w", opWithdraw, domain.ErrInvalidAmount)
	}
	if held := v.BalanceOf(holder); held < sharesIn {
		return 0, fmt.Errorf("%s: %s holds %s shares, requested %s: %w",
			opWithdraw, holder, held, sharesIn, domain.ErrInsufficientShares)
	}

	// Pre-burn snapshot.
	totalValue, err := v.TotalManagedValue(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opWithdraw, err)
	}
	supply := v.TotalShareSupply()

	assetsOut, err := domain.AssetsForShares(sharesIn, supply, totalValue)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opWithdraw, err)
	}
	if assetsOut == 0 {
		return 0, fmt.Errorf("%s %s shares: %w", opWithdraw, sharesIn, domain.ErrZeroAssets)
	}

	var undo undoLog

	idle, err := v.IdleBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opWithdraw, err)
	}
	if idle < assetsOut {
		s, ok := v.currentStrategy()
		if !ok {
			return 0, fmt.Errorf("%s: idle %s below payout %s with no strategy: %w",
				opWithdraw, idle, assetsOut, domain.ErrInsufficientBalance)
		}
		if err := v.recall(ctx, s, assetsOut-idle, &undo); err != nil {
			return 0, v.fail(ctx, opWithdraw, &undo, err)
		}
	}

	if err := v.burn(holder, sharesIn, assetsOut, &undo); err != nil {
		return 0, v.fail(ctx, opWithdraw, &undo, err)
	}

	if err := v.asset.Transfer(ctx, v.account, holder, assetsOut); err != nil {
		return 0, v.fail(ctx, opWithdraw, &undo, fmt.Errorf("pay %s to %s: %w", assetsOut, holder, err))
	}

	v.assertLedger()
	v.emit(ctx, domain.Event{
		Kind:    domain.EventWithdrawn,
		Account: holder,
		Assets:  assetsOut,
		Shares:  sharesIn,
	})
	v.logger.Info("withdraw",
		"account", holder,
		"assets", assetsOut,
		"shares", sharesIn,
		"supply_before", supply,
		"value_before", totalValue)

	return assetsOut, nil
}
