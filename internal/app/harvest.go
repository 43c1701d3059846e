package app

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// Harvest runs the strategy's realization step, measures the change in total
// managed value around it, and pays the performance fee to the owner out of
// any profit.
//
// A harvest without profit (including a loss) takes no fee, leaves
// lastHarvestTime untouched, and still succeeds. Losses are absorbed by all
// holders through the lower managed value.
//
// Error Contract:
//   - domain.ErrNoStrategyBound if no strategy is active
//   - domain.ErrReentrancyViolation while another guarded operation is in flight
//   - strategy errors from Harvest or from the fee recall propagate
//   - ports.ErrAssetTransferFailed if the fee payment fails
func (v *Vault) Harvest(ctx context.Context) (domain.HarvestReport, error) {
	release, err := v.guard.enter(opHarvest)
	if err != nil {
		return domain.HarvestReport{}, err
	}
	defer release()

	s, ok := v.currentStrategy()
	if !ok {
		return domain.HarvestReport{}, fmt.Errorf("%s: %w", opHarvest, domain.ErrNoStrategyBound)
	}

	before, err := v.TotalManagedValue(ctx)
	if err != nil {
		return domain.HarvestReport{}, fmt.Errorf("%s: %w", opHarvest, err)
	}
	if err := s.Harvest(ctx, v.account); err != nil {
		return domain.HarvestReport{}, fmt.Errorf("%s: strategy %s: %w", opHarvest, s.Account(), err)
	}
	after, err := v.TotalManagedValue(ctx)
	if err != nil {
		return domain.HarvestReport{}, fmt.Errorf("%s: %w", opHarvest, err)
	}

	report := domain.HarvestReport{FeeAssessment: domain.AssessFee(before, after)}

	var undo undoLog
	if report.Fee > 0 {
		paid, recalled, err := v.payFee(ctx, s, report.Fee, &undo)
		if err != nil {
			return domain.HarvestReport{}, v.fail(ctx, opHarvest, &undo, err)
		}
		report.FeePaid, report.Recalled = paid, recalled
	}

	if report.HasProfit() {
		v.mu.Lock()
		v.lastHarvest = v.now()
		v.mu.Unlock()
	}

	v.emit(ctx, domain.Event{
		Kind:   domain.EventHarvested,
		Profit: report.Profit,
		Fee:    report.FeePaid,
	})
	v.logger.Info("harvest",
		"strategy", s.Account(),
		"before", before,
		"after", after,
		"profit", report.Profit,
		"fee", report.Fee,
		"fee_paid", report.FeePaid,
		"recalled", report.Recalled)

	return report, nil
}

// payFee transfers fee to the owner from idle balance. When idle balance falls
// short, the configured FeeShortfallPolicy decides between recalling the gap
// from the strategy and paying only what idle covers.
func (v *Vault) payFee(ctx context.Context, s ports.Strategy, fee domain.Amount, undo *undoLog) (paid, recalled domain.Amount, err error) {
	idle, err := v.IdleBalance(ctx)
	if err != nil {
		return 0, 0, err
	}

	paid = fee
	if idle < fee {
		switch v.feePolicy {
		case domain.FeeFromIdleOnly:
			paid = idle
			v.logger.Warn("fee underpaid from idle balance",
				"fee", fee,
				"paid", paid,
				"policy", v.feePolicy)
		default:
			recalled = fee - idle
			if err := v.recall(ctx, s, recalled, undo); err != nil {
				return 0, 0, fmt.Errorf("recall fee shortfall: %w", err)
			}
		}
	}

	if paid == 0 {
		return 0, recalled, nil
	}
	if err := v.asset.Transfer(ctx, v.account, v.owner, paid); err != nil {
		return 0, 0, fmt.Errorf("pay fee %s to %s: %w", paid, v.owner, err)
	}
	return paid, recalled, nil
}
