package app

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
)

// Deposit pulls assetsIn from depositor (who must have approved the vault),
// mints shares priced against the pre-deposit snapshot, and forwards the funds
// to the bound strategy, if any. It returns the shares minted.
//
// Error Contract:
//   - domain.ErrInvalidAccount if depositor is empty, the vault itself or the
//     bound strategy
//   - domain.ErrInvalidAmount for a zero deposit; domain.ErrZeroShares when the
//     deposit is too small to mint a share
//   - domain.ErrReentrancyViolation while another guarded operation is in flight
//   - ports.ErrAssetTransferFailed if the pull fails
//   - strategy errors from the forwarding step (the pull is refunded)
func (v *Vault) Deposit(ctx context.Context, depositor domain.Account, assetsIn domain.Amount) (domain.Amount, error) {
	release, err := v.guard.enter(opDeposit)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := v.checkCounterparty(opDeposit, depositor); err != nil {
		return 0, err
	}
	if assetsIn == 0 {
		return 0, fmt.Errorf("%s: %w", opDeposit, domain.ErrInvalidAmount)
	}

	// Snapshot before the transfer: pricing against a value that already
	// includes assetsIn would dilute the depositor with their own funds.
	totalValue, err := v.TotalManagedValue(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", opDeposit, err)
	}
	supply := v.TotalShareSupply()

	shares, err := domain.SharesForDeposit(assetsIn, supply, totalValue)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", opDeposit, assetsIn, err)
	}

	var undo undoLog

	if err := v.asset.TransferFrom(ctx, v.account, depositor, v.account, assetsIn); err != nil {
		return 0, v.fail(ctx, opDeposit, &undo, fmt.Errorf("pull %s from %s: %w", assetsIn, depositor, err))
	}
	undo.push(fmt.Sprintf("refund %s to %s", assetsIn, depositor), func(ctx context.Context) error {
		return v.asset.Transfer(ctx, v.account, depositor, assetsIn)
	})

	if err := v.mint(depositor, shares, assetsIn, &undo); err != nil {
		return 0, v.fail(ctx, opDeposit, &undo, err)
	}

	if s, ok := v.currentStrategy(); ok {
		if err := v.deploy(ctx, s, assetsIn, &undo); err != nil {
			return 0, v.fail(ctx, opDeposit, &undo, err)
		}
	}

	v.assertLedger()
	v.emit(ctx, domain.Event{
		Kind:    domain.EventDeposited,
		Account: depositor,
		Assets:  assetsIn,
		Shares:  shares,
	})
	v.logger.Info("deposit",
		"account", depositor,
		"assets", assetsIn,
		"shares", shares,
		"supply_before", supply,
		"value_before", totalValue)

	return shares, nil
}
