package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// ExchangeRateMarket is an in-memory lending market with fixed-unit receipt
// tokens. A receipt token is worth rate / ports.ExchangeRateScale underlying.
//
// Mutating calls follow the coded-failure convention: a business failure is a
// non-zero code with a nil error, and state is left untouched.
type ExchangeRateMarket struct {
	account domain.Account
	token   *Token
	faults  *debug.FaultProfile

	mu       sync.Mutex
	rate     domain.Amount
	receipts map[domain.Account]domain.Amount
	supply   domain.Amount
	pending  domain.Amount
}

// NewExchangeRateMarket creates a market at account with the given initial
// exchange rate (scaled by ports.ExchangeRateScale).
func NewExchangeRateMarket(account domain.Account, token *Token, initialRate domain.Amount, opts ...MarketOption) (*ExchangeRateMarket, error) {
	if account.IsZero() {
		return nil, fmt.Errorf("exchange-rate market account: %w", domain.ErrInvalidAccount)
	}
	if token == nil {
		return nil, fmt.Errorf("exchange-rate market %s: token is nil", account)
	}
	if initialRate == 0 {
		return nil, fmt.Errorf("exchange-rate market %s: initial rate must be positive", account)
	}
	var o marketOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &ExchangeRateMarket{
		account:  account,
		token:    token,
		faults:   o.faults,
		rate:     initialRate,
		receipts: make(map[domain.Account]domain.Amount),
	}, nil
}

// Account implements ports.ExchangeRateMarket.
func (m *ExchangeRateMarket) Account() domain.Account {
	return m.account
}

// Mint implements ports.ExchangeRateMarket. The minter must have approved the market.
func (m *ExchangeRateMarket) Mint(ctx context.Context, minter domain.Account, amount domain.Amount) (uint64, error) {
	if m.faults != nil {
		if code := m.faults.TakeSupplyFailure(); code != 0 {
			return code, nil
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tokens, err := domain.MulDiv(amount, ports.ExchangeRateScale, m.rate)
	if err != nil || tokens == 0 {
		return ports.CodeMathError, nil
	}
	supply, err := m.supply.Add(tokens)
	if err != nil {
		return ports.CodeMathError, nil
	}
	if err := m.token.TransferFrom(ctx, m.account, minter, m.account, amount); err != nil {
		return ports.CodeTokenInsufficientBalance, nil
	}
	m.receipts[minter] += tokens
	m.supply = supply
	return ports.CodeOK, nil
}

// RedeemUnderlying implements ports.ExchangeRateMarket. The receipt tokens
// burned are rounded up so the market never pays more than they are worth.
func (m *ExchangeRateMarket) RedeemUnderlying(ctx context.Context, redeemer domain.Account, amount domain.Amount) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens, err := domain.MulDiv(amount, ports.ExchangeRateScale, m.rate)
	if err != nil {
		return ports.CodeMathError, nil
	}
	worth, err := domain.MulDiv(tokens, m.rate, ports.ExchangeRateScale)
	if err != nil {
		return ports.CodeMathError, nil
	}
	if worth < amount {
		tokens++
	}
	return m.redeem(ctx, redeemer, tokens, amount)
}

// Redeem implements ports.ExchangeRateMarket.
func (m *ExchangeRateMarket) Redeem(ctx context.Context, redeemer domain.Account, receiptTokens domain.Amount) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	amount, err := domain.MulDiv(receiptTokens, m.rate, ports.ExchangeRateScale)
	if err != nil {
		return ports.CodeMathError, nil
	}
	return m.redeem(ctx, redeemer, receiptTokens, amount)
}

// redeem must be called with mu held.
func (m *ExchangeRateMarket) redeem(ctx context.Context, redeemer domain.Account, tokens, amount domain.Amount) (uint64, error) {
	if m.faults != nil {
		if code := m.faults.TakeRedeemFailure(); code != 0 {
			return code, nil
		}
	}
	held := m.receipts[redeemer]
	if held < tokens {
		return ports.CodeTokenInsufficientBalance, nil
	}
	cash, err := m.token.BalanceOf(ctx, m.account)
	if err != nil {
		return 0, fmt.Errorf("redeem: read cash: %w", err)
	}
	if cash < amount {
		return ports.CodeInsufficientCash, nil
	}

	send := amount
	if m.faults != nil {
		if limit, ok := m.faults.TakeWithdrawCap(); ok && domain.Amount(limit) < send {
			send = domain.Amount(limit)
		}
	}
	if send > 0 {
		if err := m.token.Transfer(ctx, m.account, redeemer, send); err != nil {
			return ports.CodeTokenInsufficientBalance, nil
		}
	}

	if held == tokens {
		delete(m.receipts, redeemer)
	} else {
		m.receipts[redeemer] = held - tokens
	}
	m.supply -= tokens
	return ports.CodeOK, nil
}

// AccrueInterest implements ports.ExchangeRateMarket. Pending interest is
// spread over the receipt supply by raising the exchange rate and is minted
// into market cash.
func (m *ExchangeRateMarket) AccrueInterest(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == 0 || m.supply == 0 {
		return ports.CodeOK, nil
	}

	before, err := domain.MulDiv(m.supply, m.rate, ports.ExchangeRateScale)
	if err != nil {
		return ports.CodeMathError, nil
	}
	bump, err := domain.MulDiv(m.pending, ports.ExchangeRateScale, m.supply)
	if err != nil {
		return ports.CodeMathError, nil
	}
	rate, err := m.rate.Add(bump)
	if err != nil {
		return ports.CodeMathError, nil
	}
	after, err := domain.MulDiv(m.supply, rate, ports.ExchangeRateScale)
	if err != nil {
		return ports.CodeMathError, nil
	}

	if err := m.token.Mint(m.account, after-before); err != nil {
		return 0, fmt.Errorf("accrue interest: back interest: %w", err)
	}
	m.rate = rate
	m.pending = 0
	return ports.CodeOK, nil
}

// BalanceOf implements ports.ExchangeRateMarket (receipt tokens).
func (m *ExchangeRateMarket) BalanceOf(_ context.Context, owner domain.Account) (domain.Amount, error) {
	if m.faults != nil && m.faults.ShouldFailBalanceRead() {
		return 0, fmt.Errorf("receipt balance of %s: injected fault: %w", owner, ports.ErrStrategyOperationFailed)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receipts[owner], nil
}

// ExchangeRate implements ports.ExchangeRateMarket.
func (m *ExchangeRateMarket) ExchangeRate(_ context.Context) (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate, nil
}

// AddPendingInterest queues interest that the next AccrueInterest realizes.
func (m *ExchangeRateMarket) AddPendingInterest(amount domain.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, err := m.pending.Add(amount)
	if err != nil {
		return err
	}
	m.pending = pending
	return nil
}

// Borrow moves amount of market cash to borrower.
func (m *ExchangeRateMarket) Borrow(ctx context.Context, borrower domain.Account, amount domain.Amount) error {
	if err := m.token.Transfer(ctx, m.account, borrower, amount); err != nil {
		return fmt.Errorf("borrow %s: %w", amount, err)
	}
	return nil
}

// Repay returns amount of cash from borrower to the market.
func (m *ExchangeRateMarket) Repay(ctx context.Context, borrower domain.Account, amount domain.Amount) error {
	if err := m.token.Transfer(ctx, borrower, m.account, amount); err != nil {
		return fmt.Errorf("repay %s: %w", amount, err)
	}
	return nil
}

var _ ports.ExchangeRateMarket = (*ExchangeRateMarket)(nil)
