package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// IndexScale is the fixed-point scale of the rebasing market's liquidity index.
const IndexScale domain.Amount = 1_000_000_000_000_000_000

// RebasingMarket is an in-memory lending market whose receipt balances grow in
// place. Balances are stored scaled by the liquidity index; a supplier's
// balance in underlying units is scaled * index / IndexScale.
//
// Interest credited through Accrue is minted to the market's cash so the
// market stays solvent. Borrow moves cash out to model illiquidity.
type RebasingMarket struct {
	account domain.Account
	token   *Token
	faults  *debug.FaultProfile

	mu          sync.Mutex
	index       domain.Amount
	scaled      map[domain.Account]domain.Amount
	totalScaled domain.Amount
}

// MarketOption configures a simulated market.
type MarketOption func(*marketOptions)

type marketOptions struct {
	faults *debug.FaultProfile
}

// WithMarketFaults makes the market consult faults on every call.
func WithMarketFaults(faults *debug.FaultProfile) MarketOption {
	return func(o *marketOptions) {
		o.faults = faults
	}
}

// NewRebasingMarket creates a market holding token at account, index 1.0.
func NewRebasingMarket(account domain.Account, token *Token, opts ...MarketOption) (*RebasingMarket, error) {
	if account.IsZero() {
		return nil, fmt.Errorf("rebasing market account: %w", domain.ErrInvalidAccount)
	}
	if token == nil {
		return nil, fmt.Errorf("rebasing market %s: token is nil", account)
	}
	var o marketOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &RebasingMarket{
		account: account,
		token:   token,
		faults:  o.faults,
		index:   IndexScale,
		scaled:  make(map[domain.Account]domain.Amount),
	}, nil
}

// Account implements ports.RebasingMarket.
func (m *RebasingMarket) Account() domain.Account {
	return m.account
}

// Index returns the current liquidity index (scaled by IndexScale).
func (m *RebasingMarket) Index() domain.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Supply implements ports.RebasingMarket. `from` must have approved the market.
func (m *RebasingMarket) Supply(ctx context.Context, from domain.Account, amount domain.Amount) error {
	if amount == 0 {
		return fmt.Errorf("supply: %w", domain.ErrInvalidAmount)
	}
	if code := m.takeSupplyFault(); code != 0 {
		return fmt.Errorf("supply %s: injected failure code %d: %w", amount, code, ports.ErrStrategyOperationFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	scaled, err := domain.MulDiv(amount, IndexScale, m.index)
	if err != nil {
		return fmt.Errorf("supply %s: %w", amount, err)
	}
	if scaled == 0 {
		return fmt.Errorf("supply %s below one scaled unit: %w", amount, domain.ErrInvalidAmount)
	}
	total, err := m.totalScaled.Add(scaled)
	if err != nil {
		return fmt.Errorf("supply %s: %w", amount, err)
	}

	if err := m.token.TransferFrom(ctx, m.account, from, m.account, amount); err != nil {
		return fmt.Errorf("supply pull from %s: %w", from, err)
	}
	m.scaled[from] += scaled
	m.totalScaled = total
	return nil
}

// Withdraw implements ports.RebasingMarket.
func (m *RebasingMarket) Withdraw(ctx context.Context, owner domain.Account, amount domain.Amount, to domain.Account) error {
	if amount == 0 {
		return fmt.Errorf("withdraw: %w", domain.ErrInvalidAmount)
	}
	if code := m.takeRedeemFault(); code != 0 {
		return fmt.Errorf("withdraw %s: injected failure code %d: %w", amount, code, ports.ErrStrategyOperationFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ownerScaled := m.scaled[owner]
	balance, err := m.underlying(ownerScaled)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	if balance < amount {
		return fmt.Errorf("withdraw %s: %s holds %s: %w", amount, owner, balance, ports.ErrInsufficientStrategyFunds)
	}
	cash, err := m.token.BalanceOf(ctx, m.account)
	if err != nil {
		return fmt.Errorf("withdraw: read cash: %w", err)
	}
	if cash < amount {
		return fmt.Errorf("withdraw %s: market cash %s: %w", amount, cash, ports.ErrInsufficientStrategyFunds)
	}

	send := amount
	if limit, ok := m.takeWithdrawCap(); ok && limit < send {
		send = limit
	}

	burn := ownerScaled
	if send < balance {
		burn, err = m.scaledCeil(send)
		if err != nil {
			return fmt.Errorf("withdraw: %w", err)
		}
		burn = domain.Min(burn, ownerScaled)
	}

	if err := m.token.Transfer(ctx, m.account, to, send); err != nil {
		return fmt.Errorf("withdraw pay %s: %w", to, err)
	}
	if burn == ownerScaled {
		delete(m.scaled, owner)
	} else {
		m.scaled[owner] = ownerScaled - burn
	}
	m.totalScaled -= burn
	return nil
}

// BalanceOf implements ports.RebasingMarket.
func (m *RebasingMarket) BalanceOf(_ context.Context, owner domain.Account) (domain.Amount, error) {
	if m.faults != nil && m.faults.ShouldFailBalanceRead() {
		return 0, fmt.Errorf("balance of %s: injected fault: %w", owner, ports.ErrStrategyOperationFailed)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.underlying(m.scaled[owner])
}

// TotalSupplied is every supplier's balance in underlying units.
func (m *RebasingMarket) TotalSupplied() (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.underlying(m.totalScaled)
}

// Accrue grows the liquidity index by rateBps basis points and mints the
// resulting interest into market cash. It returns the interest credited.
func (m *RebasingMarket) Accrue(_ context.Context, rateBps domain.Amount) (domain.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before, err := m.underlying(m.totalScaled)
	if err != nil {
		return 0, err
	}
	index, err := domain.MulDiv(m.index, domain.BpsDenominator+rateBps, domain.BpsDenominator)
	if err != nil {
		return 0, fmt.Errorf("accrue %s bps: %w", rateBps, err)
	}
	prev := m.index
	m.index = index
	after, err := m.underlying(m.totalScaled)
	if err != nil {
		m.index = prev
		return 0, err
	}

	interest := after - before
	if err := m.token.Mint(m.account, interest); err != nil {
		m.index = prev
		return 0, fmt.Errorf("accrue: back interest: %w", err)
	}
	return interest, nil
}

// Borrow moves amount of market cash to borrower, leaving less liquidity for
// withdrawals.
func (m *RebasingMarket) Borrow(ctx context.Context, borrower domain.Account, amount domain.Amount) error {
	if err := m.token.Transfer(ctx, m.account, borrower, amount); err != nil {
		return fmt.Errorf("borrow %s: %w", amount, err)
	}
	return nil
}

// Repay returns amount of cash from borrower to the market.
func (m *RebasingMarket) Repay(ctx context.Context, borrower domain.Account, amount domain.Amount) error {
	if err := m.token.Transfer(ctx, borrower, m.account, amount); err != nil {
		return fmt.Errorf("repay %s: %w", amount, err)
	}
	return nil
}

func (m *RebasingMarket) underlying(scaled domain.Amount) (domain.Amount, error) {
	return domain.MulDiv(scaled, m.index, IndexScale)
}

// scaledCeil is the scaled amount that must be burned to release amount.
func (m *RebasingMarket) scaledCeil(amount domain.Amount) (domain.Amount, error) {
	s, err := domain.MulDiv(amount, IndexScale, m.index)
	if err != nil {
		return 0, err
	}
	back, err := m.underlying(s)
	if err != nil {
		return 0, err
	}
	if back < amount {
		s++
	}
	return s, nil
}

func (m *RebasingMarket) takeSupplyFault() uint64 {
	if m.faults == nil {
		return 0
	}
	return m.faults.TakeSupplyFailure()
}

func (m *RebasingMarket) takeRedeemFault() uint64 {
	if m.faults == nil {
		return 0
	}
	return m.faults.TakeRedeemFailure()
}

func (m *RebasingMarket) takeWithdrawCap() (domain.Amount, bool) {
	if m.faults == nil {
		return 0, false
	}
	limit, ok := m.faults.TakeWithdrawCap()
	return domain.Amount(limit), ok
}

var _ ports.RebasingMarket = (*RebasingMarket)(nil)
