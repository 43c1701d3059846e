package inmemory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/adapters/outbound/inmemory"
	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

func newRebasing(t *testing.T, opts ...inmemory.MarketOption) (*inmemory.Token, *inmemory.RebasingMarket) {
	t.Helper()
	tok := inmemory.NewToken("USDC")
	m, err := inmemory.NewRebasingMarket("pool", tok, opts...)
	require.NoError(t, err)
	return tok, m
}

func supply(t *testing.T, tok *inmemory.Token, m *inmemory.RebasingMarket, from domain.Account, amount domain.Amount) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, tok.Mint(from, amount))
	require.NoError(t, tok.Approve(ctx, from, m.Account(), amount))
	require.NoError(t, m.Supply(ctx, from, amount))
}

func TestRebasingMarket_SupplyIsOneToOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok, m := newRebasing(t)

	supply(t, tok, m, "strategy", 1000)

	bal, err := m.BalanceOf(ctx, "strategy")
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(1000), bal)
	cash, _ := tok.BalanceOf(ctx, "pool")
	assert.Equal(t, domain.Amount(1000), cash)
}

func TestRebasingMarket_AccrueGrowsBalancesInPlace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok, m := newRebasing(t)
	supply(t, tok, m, "a", 1000)
	supply(t, tok, m, "b", 500)

	interest, err := m.Accrue(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(150), interest)

	a, _ := m.BalanceOf(ctx, "a")
	b, _ := m.BalanceOf(ctx, "b")
	assert.Equal(t, domain.Amount(1100), a)
	assert.Equal(t, domain.Amount(550), b)

	cash, _ := tok.BalanceOf(ctx, "pool")
	assert.Equal(t, domain.Amount(1650), cash, "interest is backed by cash")
}

func TestRebasingMarket_WithdrawAllLeavesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok, m := newRebasing(t)
	supply(t, tok, m, "strategy", 1000)
	_, err := m.Accrue(ctx, 333)
	require.NoError(t, err)

	bal, err := m.BalanceOf(ctx, "strategy")
	require.NoError(t, err)
	require.NoError(t, m.Withdraw(ctx, "strategy", bal, "vault"))

	left, _ := m.BalanceOf(ctx, "strategy")
	assert.Zero(t, left)
	got, _ := tok.BalanceOf(ctx, "vault")
	assert.Equal(t, bal, got)
}

func TestRebasingMarket_WithdrawIlliquid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok, m := newRebasing(t)
	supply(t, tok, m, "strategy", 100)
	require.NoError(t, m.Borrow(ctx, "borrower", 90))

	err := m.Withdraw(ctx, "strategy", 20, "vault")
	assert.ErrorIs(t, err, ports.ErrInsufficientStrategyFunds)

	require.NoError(t, m.Repay(ctx, "borrower", 90))
	assert.NoError(t, m.Withdraw(ctx, "strategy", 20, "vault"))
}

func TestRebasingMarket_WithdrawAboveBalance(t *testing.T) {
	t.Parallel()
	tok, m := newRebasing(t)
	supply(t, tok, m, "strategy", 100)

	err := m.Withdraw(context.Background(), "strategy", 101, "vault")
	assert.ErrorIs(t, err, ports.ErrInsufficientStrategyFunds)
}

func TestRebasingMarket_InjectedFaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	faults := &debug.FaultProfile{}
	tok, m := newRebasing(t, inmemory.WithMarketFaults(faults))
	supply(t, tok, m, "strategy", 100)

	faults.SetFailNextBalanceRead(true)
	_, err := m.BalanceOf(ctx, "strategy")
	assert.ErrorIs(t, err, ports.ErrStrategyOperationFailed)

	require.NoError(t, faults.SetFailNextRedeem(14))
	assert.ErrorIs(t, m.Withdraw(ctx, "strategy", 10, "vault"), ports.ErrStrategyOperationFailed)

	faults.SetShortNextWithdraw(20)
	require.NoError(t, m.Withdraw(ctx, "strategy", 30, "vault"))
	got, _ := tok.BalanceOf(ctx, "vault")
	assert.Equal(t, domain.Amount(20), got, "capped withdraw reports success but sends less")
}
