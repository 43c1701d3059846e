package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// RebindStrategy replaces the strategy binding. Pass a nil next to unbind.
//
// The current strategy, if any, is fully unwound first (WithdrawAll) and must
// be left empty; then the binding is swapped and the whole idle balance is
// deployed into next. This is the only path that moves all capital at once.
//
// Error Contract:
//   - domain.ErrUnauthorized without a credential issued by this vault
//   - ports.ErrUnauthorizedCaller if next is bound to a different vault
//   - domain.ErrReentrancyViolation while another guarded operation is in flight
//   - ports.ErrStrategyOperationFailed if the old strategy keeps a balance after WithdrawAll
//   - strategy and asset errors from the recall or redeploy; the previous
//     binding and its funds are restored
func (v *Vault) RebindStrategy(ctx context.Context, cred *OwnerCredential, next ports.Strategy) error {
	release, err := v.guard.enter(opRebind)
	if err != nil {
		return err
	}
	defer release()

	if err := v.checkCredential(cred); err != nil {
		return fmt.Errorf("%s: %w", opRebind, err)
	}
	if next != nil && next.Vault() != v.account {
		return fmt.Errorf("%s: strategy %s is bound to vault %s: %w",
			opRebind, next.Account(), next.Vault(), ports.ErrUnauthorizedCaller)
	}

	var undo undoLog

	var recalled domain.Amount
	if old, ok := v.currentStrategy(); ok {
		recalled, err = v.unwindStrategy(ctx, old, &undo)
		if err != nil {
			return v.fail(ctx, opRebind, &undo, err)
		}
	}

	v.setBinding(bindTo(next), &undo)

	var deployed domain.Amount
	if next != nil {
		idle, err := v.IdleBalance(ctx)
		if err != nil {
			return v.fail(ctx, opRebind, &undo, err)
		}
		if err := v.deploy(ctx, next, idle, &undo); err != nil {
			return v.fail(ctx, opRebind, &undo, err)
		}
		deployed = idle
	}

	evt := domain.Event{Kind: domain.EventStrategyUpdated}
	if next != nil {
		evt.Strategy = next.Account()
	}
	v.emit(ctx, evt)
	v.logger.Info("strategy updated",
		"strategy", evt.Strategy,
		"authorized_by", cred.Subject(),
		"recalled", recalled,
		"deployed", deployed)

	return nil
}

// unwindStrategy recalls everything from s and checks nothing is left behind.
func (v *Vault) unwindStrategy(ctx context.Context, s ports.Strategy, undo *undoLog) (domain.Amount, error) {
	before, err := v.IdleBalance(ctx)
	if err != nil {
		return 0, err
	}
	reported, withdrawErr := s.WithdrawAll(ctx, v.account)

	after, err := v.IdleBalance(ctx)
	if err != nil {
		return 0, errors.Join(withdrawErr, err)
	}
	arrived := after.SaturatingSub(before)
	if arrived > 0 {
		undo.push(fmt.Sprintf("redeploy %s into strategy %s", arrived, s.Account()), func(ctx context.Context) error {
			return v.hand(ctx, s, arrived)
		})
	}
	if withdrawErr != nil {
		return 0, fmt.Errorf("strategy %s withdraw all: %w", s.Account(), withdrawErr)
	}

	stranded, err := s.BalanceOf(ctx)
	if err != nil {
		return 0, fmt.Errorf("strategy %s balance after withdraw all: %w", s.Account(), err)
	}
	if stranded > 0 {
		return 0, fmt.Errorf("strategy %s kept %s after withdraw all: %w",
			s.Account(), stranded, ports.ErrStrategyOperationFailed)
	}
	if arrived != reported {
		v.logger.Warn("withdraw all reported amount differs from funds received",
			"strategy", s.Account(),
			"reported", reported,
			"received", arrived)
	}
	return arrived, nil
}
