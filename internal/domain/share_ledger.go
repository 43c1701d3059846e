package domain

import (
	"fmt"
	"sort"
)

// SharesForDeposit converts a deposit into shares against a pre-deposit snapshot.
//
// With no shares outstanding the deposit bootstraps the exchange rate at 1:1.
// Otherwise shares = floor(assetsIn * totalSupply / totalValue), rounding the
// minted amount down so no depositor can gain value through rounding.
//
// Error Contract:
//   - ErrInvalidAmount if assetsIn is zero
//   - ErrZeroManagedValue if shares are outstanding but totalValue is zero
//   - ErrZeroShares if the deposit is too small to mint a single share
//   - ErrAmountOverflow if the result does not fit in an Amount
func SharesForDeposit(assetsIn, totalSupply, totalValue Amount) (Amount, error) {
	if assetsIn == 0 {
		return 0, ErrInvalidAmount
	}
	if totalSupply == 0 {
		return assetsIn, nil
	}
	if totalValue == 0 {
		return 0, ErrZeroManagedValue
	}
	shares, err := MulDiv(assetsIn, totalSupply, totalValue)
	if err != nil {
		return 0, err
	}
	if shares == 0 {
		return 0, ErrZeroShares
	}
	return shares, nil
}

// AssetsForShares converts shares into the assets they redeem for:
// floor(sharesIn * totalValue / totalSupply), rounding the payout down.
//
// Error Contract:
//   - ErrNoSharesOutstanding if totalSupply is zero
//   - ErrAmountOverflow if the result does not fit in an Amount
//
// A zero sharesIn converts to zero assets; rejecting zero-share redemptions is
// the caller's decision.
func AssetsForShares(sharesIn, totalSupply, totalValue Amount) (Amount, error) {
	if totalSupply == 0 {
		return 0, ErrNoSharesOutstanding
	}
	return MulDiv(sharesIn, totalValue, totalSupply)
}

// ShareLedger is the holder -> share balance book together with the total supply.
//
// Invariant: the sum of all balances equals TotalSupply at all times.
// A holder entry exists only while its balance is non-zero.
//
// ShareLedger is not safe for concurrent use; the owning vault serializes access.
type ShareLedger struct {
	balances    map[Account]Amount
	totalSupply Amount
}

// NewShareLedger creates an empty ledger with zero supply.
func NewShareLedger() *ShareLedger {
	return &ShareLedger{
		balances: make(map[Account]Amount),
	}
}

// BalanceOf returns the holder's share balance (zero for unknown holders).
func (l *ShareLedger) BalanceOf(holder Account) Amount {
	return l.balances[holder]
}

// TotalSupply returns the number of shares outstanding.
func (l *ShareLedger) TotalSupply() Amount {
	return l.totalSupply
}

// Holders returns the number of accounts with a non-zero balance.
func (l *ShareLedger) Holders() int {
	return len(l.balances)
}

// Accounts returns holders with a non-zero balance in lexical order.
func (l *ShareLedger) Accounts() []Account {
	out := make([]Account, 0, len(l.balances))
	for a := range l.balances {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Mint credits shares to holder and increases the total supply.
func (l *ShareLedger) Mint(holder Account, shares Amount) error {
	if holder.IsZero() {
		return ErrInvalidAccount
	}
	if shares == 0 {
		return fmt.Errorf("mint: %w", ErrInvalidAmount)
	}
	supply, err := l.totalSupply.Add(shares)
	if err != nil {
		return fmt.Errorf("mint %s shares: %w", shares, err)
	}
	// Per-holder balance never exceeds supply, so it cannot overflow once supply did not.
	l.balances[holder] += shares
	l.totalSupply = supply
	return nil
}

// Burn debits shares from holder and decreases the total supply.
// The holder entry is removed when its balance reaches zero.
func (l *ShareLedger) Burn(holder Account, shares Amount) error {
	if shares == 0 {
		return fmt.Errorf("burn: %w", ErrInvalidAmount)
	}
	bal := l.balances[holder]
	remaining, err := bal.Sub(shares)
	if err != nil {
		return fmt.Errorf("burn %s shares from %s holding %s: %w", shares, holder, bal, ErrInsufficientBalance)
	}
	if remaining == 0 {
		delete(l.balances, holder)
	} else {
		l.balances[holder] = remaining
	}
	l.totalSupply -= shares
	return nil
}

// SumBalances adds every holder balance. It equals TotalSupply on a consistent ledger.
func (l *ShareLedger) SumBalances() Amount {
	var sum Amount
	for _, b := range l.balances {
		sum += b
	}
	return sum
}
