package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// custody is the part shared by both adapters: identities, the base asset,
// and the caller check.
type custody struct {
	account domain.Account
	vault   domain.Account
	asset   ports.Asset
}

func newCustody(account, vault domain.Account, asset ports.Asset) (custody, error) {
	if account.IsZero() {
		return custody{}, fmt.Errorf("strategy account: %w", domain.ErrInvalidAccount)
	}
	if vault.IsZero() {
		return custody{}, fmt.Errorf("strategy vault account: %w", domain.ErrInvalidAccount)
	}
	if account == vault {
		return custody{}, errors.New("strategy account must differ from the vault account")
	}
	if asset == nil {
		return custody{}, errors.New("strategy base asset is nil")
	}
	return custody{account: account, vault: vault, asset: asset}, nil
}

// Account implements ports.Strategy.
func (c custody) Account() domain.Account {
	return c.account
}

// Vault implements ports.Strategy.
func (c custody) Vault() domain.Account {
	return c.vault
}

func (c custody) authorize(op string, caller domain.Account) error {
	if caller != c.vault {
		return fmt.Errorf("%s called by %s: %w", op, caller, ports.ErrUnauthorizedCaller)
	}
	return nil
}

// pull moves amount from the vault into strategy custody using the vault's allowance.
func (c custody) pull(ctx context.Context, amount domain.Amount) error {
	debug.GetLogger().Debugf("strategy %s: pull %s from vault %s", c.account, amount, c.vault)
	if err := c.asset.TransferFrom(ctx, c.account, c.vault, c.account, amount); err != nil {
		return fmt.Errorf("pull %s from vault: %w", amount, err)
	}
	return nil
}

// refund returns amount from strategy custody to the vault after a failed
// supply. The supply error stays primary.
func (c custody) refund(ctx context.Context, amount domain.Amount, cause error) error {
	debug.GetLogger().Debugf("strategy %s: refund %s to vault after: %v", c.account, amount, cause)
	if err := c.asset.Transfer(ctx, c.account, c.vault, amount); err != nil {
		return errors.Join(cause, fmt.Errorf("refund %s to vault: %w", amount, err))
	}
	return cause
}

// sweep forwards everything the strategy holds directly to the vault.
func (c custody) sweep(ctx context.Context) (domain.Amount, error) {
	held, err := c.asset.BalanceOf(ctx, c.account)
	if err != nil {
		return 0, fmt.Errorf("read strategy custody: %w", err)
	}
	if held == 0 {
		return 0, nil
	}
	debug.GetLogger().Debugf("strategy %s: forward %s to vault %s", c.account, held, c.vault)
	if err := c.asset.Transfer(ctx, c.account, c.vault, held); err != nil {
		return 0, fmt.Errorf("forward %s to vault: %w", held, err)
	}
	return held, nil
}

// asOperationFailure keeps ports sentinels intact and classifies anything
// else as ErrStrategyOperationFailed.
func asOperationFailure(op string, err error) error {
	if errors.Is(err, ports.ErrInsufficientStrategyFunds) ||
		errors.Is(err, ports.ErrStrategyOperationFailed) ||
		errors.Is(err, ports.ErrAssetTransferFailed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ports.ErrStrategyOperationFailed, err)
}
