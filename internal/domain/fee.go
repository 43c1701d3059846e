package domain

import "fmt"

const (
	// FeeRateBps is the performance fee charged on harvested profit, in basis points.
	FeeRateBps Amount = 1000

	// BpsDenominator is the basis-point scale (100%).
	BpsDenominator Amount = 10000
)

// FeeAssessment is the outcome of comparing managed value around a harvest.
type FeeAssessment struct {
	Before Amount
	After  Amount
	Profit Amount
	Fee    Amount
}

// HasProfit reports whether the harvest produced strictly positive profit.
func (f FeeAssessment) HasProfit() bool {
	return f.Profit > 0
}

// NetToHolders is the profit left to shareholders after the fee.
func (f FeeAssessment) NetToHolders() Amount {
	return f.Profit - f.Fee
}

// AssessFee computes profit and the performance fee for a harvest.
// Fees are strictly profit-gated: when after <= before both profit and fee are zero.
func AssessFee(before, after Amount) FeeAssessment {
	a := FeeAssessment{Before: before, After: after}
	if after <= before {
		return a
	}
	a.Profit = after - before
	a.Fee = feeOn(a.Profit)
	return a
}

// feeOn returns floor(profit * FeeRateBps / BpsDenominator) without forming the product,
// using profit = q*D + r  =>  floor(profit*R/D) = q*R + floor(r*R/D).
func feeOn(profit Amount) Amount {
	q, r := profit/BpsDenominator, profit%BpsDenominator
	return q*FeeRateBps + r*FeeRateBps/BpsDenominator
}

// FeeShortfallPolicy decides how a harvest pays its fee when the idle balance
// cannot cover it, which happens whenever profit accrues inside the strategy.
type FeeShortfallPolicy string

const (
	// FeeRecallShortfall recalls the missing part of the fee from the strategy
	// before paying it. The full fee is always paid or the harvest fails.
	FeeRecallShortfall FeeShortfallPolicy = "recall"

	// FeeFromIdleOnly pays the fee out of idle balance only, paying min(fee, idle).
	// Any unpaid remainder stays with shareholders.
	FeeFromIdleOnly FeeShortfallPolicy = "idle_only"
)

// ParseFeeShortfallPolicy parses a policy name; empty selects FeeRecallShortfall.
func ParseFeeShortfallPolicy(s string) (FeeShortfallPolicy, error) {
	switch FeeShortfallPolicy(s) {
	case "", FeeRecallShortfall:
		return FeeRecallShortfall, nil
	case FeeFromIdleOnly:
		return FeeFromIdleOnly, nil
	default:
		return "", fmt.Errorf("unknown fee shortfall policy %q", s)
	}
}

// HarvestReport is returned by a successful harvest.
type HarvestReport struct {
	FeeAssessment

	// FeePaid is what actually left the vault; it is below Fee only under FeeFromIdleOnly.
	FeePaid Amount

	// Recalled is what was pulled back from the strategy to fund the fee.
	Recalled Amount
}
