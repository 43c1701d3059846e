package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// Token is an in-memory fungible token ledger implementing ports.Asset.
type Token struct {
	symbol string
	faults *debug.FaultProfile

	mu         sync.RWMutex
	balances   map[domain.Account]domain.Amount
	allowances map[domain.Account]map[domain.Account]domain.Amount
	supply     domain.Amount
}

// TokenOption configures a Token.
type TokenOption func(*Token)

// WithTokenFaults makes the token consult faults on every transfer.
func WithTokenFaults(faults *debug.FaultProfile) TokenOption {
	return func(t *Token) {
		t.faults = faults
	}
}

// NewToken creates an empty token ledger.
func NewToken(symbol string, opts ...TokenOption) *Token {
	t := &Token{
		symbol:     symbol,
		balances:   make(map[domain.Account]domain.Amount),
		allowances: make(map[domain.Account]map[domain.Account]domain.Amount),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Symbol implements ports.Asset.
func (t *Token) Symbol() string {
	return t.symbol
}

// Mint credits amount to account out of thin air (faucet, interest backing).
func (t *Token) Mint(account domain.Account, amount domain.Amount) error {
	if account.IsZero() {
		return fmt.Errorf("mint: %w", domain.ErrInvalidAccount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	supply, err := t.supply.Add(amount)
	if err != nil {
		return fmt.Errorf("mint %s: %w", t.symbol, err)
	}
	bal, err := t.balances[account].Add(amount)
	if err != nil {
		return fmt.Errorf("mint %s: %w", t.symbol, err)
	}
	t.supply = supply
	t.balances[account] = bal
	return nil
}

// TotalSupply returns every unit ever minted.
func (t *Token) TotalSupply() domain.Amount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supply
}

// BalanceOf implements ports.Asset.
func (t *Token) BalanceOf(_ context.Context, account domain.Account) (domain.Amount, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[account], nil
}

// Allowance returns spender's remaining allowance over owner's balance.
func (t *Token) Allowance(owner, spender domain.Account) domain.Amount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowances[owner][spender]
}

// Transfer implements ports.Asset.
func (t *Token) Transfer(_ context.Context, from, to domain.Account, amount domain.Amount) error {
	if t.faults != nil && t.faults.ShouldFailTransfer() {
		return fmt.Errorf("%s transfer %s -> %s: injected fault: %w", t.symbol, from, to, ports.ErrAssetTransferFailed)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// TransferFrom implements ports.Asset. A spender moving its own funds needs no allowance.
func (t *Token) TransferFrom(_ context.Context, spender, from, to domain.Account, amount domain.Amount) error {
	if t.faults != nil && t.faults.ShouldFailTransfer() {
		return fmt.Errorf("%s transferFrom %s -> %s: injected fault: %w", t.symbol, from, to, ports.ErrAssetTransferFailed)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if spender == from {
		return t.move(from, to, amount)
	}

	allowed := t.allowances[from][spender]
	if allowed < amount {
		return fmt.Errorf("%s transferFrom: %s may spend %s of %s, needs %s: %w",
			t.symbol, spender, allowed, from, amount, ports.ErrAssetTransferFailed)
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	t.setAllowance(from, spender, allowed-amount)
	return nil
}

// Approve implements ports.Asset.
func (t *Token) Approve(_ context.Context, owner, spender domain.Account, amount domain.Amount) error {
	if owner.IsZero() || spender.IsZero() {
		return fmt.Errorf("%s approve: %w: %w", t.symbol, ports.ErrAssetTransferFailed, domain.ErrInvalidAccount)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setAllowance(owner, spender, amount)
	return nil
}

func (t *Token) setAllowance(owner, spender domain.Account, amount domain.Amount) {
	if amount == 0 {
		delete(t.allowances[owner], spender)
		return
	}
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[domain.Account]domain.Amount)
	}
	t.allowances[owner][spender] = amount
}

// move must be called with mu held.
func (t *Token) move(from, to domain.Account, amount domain.Amount) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%s transfer: %w: %w", t.symbol, ports.ErrAssetTransferFailed, domain.ErrInvalidAccount)
	}
	if amount == 0 || from == to {
		return nil
	}
	fromBal := t.balances[from]
	if fromBal < amount {
		return fmt.Errorf("%s transfer: %s holds %s, needs %s: %w: %w",
			t.symbol, from, fromBal, amount, ports.ErrAssetTransferFailed, domain.ErrInsufficientBalance)
	}
	toBal, err := t.balances[to].Add(amount)
	if err != nil {
		return fmt.Errorf("%s transfer: %w: %w", t.symbol, ports.ErrAssetTransferFailed, err)
	}
	if fromBal == amount {
		delete(t.balances, from)
	} else {
		t.balances[from] = fromBal - amount
	}
	t.balances[to] = toBal
	return nil
}

var _ ports.Asset = (*Token)(nil)
