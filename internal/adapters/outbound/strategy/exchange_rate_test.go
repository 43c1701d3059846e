package strategy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/adapters/outbound/inmemory"
	"github.com/sufield/yieldvault/internal/adapters/outbound/strategy"
	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

const testRate = ports.ExchangeRateScale / 5

type exchangeRateFixture struct {
	token    *inmemory.Token
	market   *inmemory.ExchangeRateMarket
	strategy *strategy.ExchangeRate
	faults   *debug.FaultProfile
}

func newExchangeRateFixture(t *testing.T, vaultFunds domain.Amount) exchangeRateFixture {
	t.Helper()
	faults := &debug.FaultProfile{}
	tok := inmemory.NewToken("USDC")
	market, err := inmemory.NewExchangeRateMarket("ctoken", tok, testRate, inmemory.WithMarketFaults(faults))
	require.NoError(t, err)
	s, err := strategy.NewExchangeRate("strategy-b", vaultAcct, tok, market)
	require.NoError(t, err)
	require.NoError(t, tok.Mint(vaultAcct, vaultFunds))
	return exchangeRateFixture{token: tok, market: market, strategy: s, faults: faults}
}

func TestExchangeRate_BalanceUsesRate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newExchangeRateFixture(t, 1000)
	require.NoError(t, hand(t, f.token, f.strategy, 1000))

	got, err := f.strategy.BalanceOf(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(1000), got)

	require.NoError(t, f.market.AddPendingInterest(100))
	before, _ := f.strategy.BalanceOf(ctx)
	assert.Equal(t, domain.Amount(1000), before, "pending interest is invisible until accrued")

	require.NoError(t, f.strategy.Harvest(ctx, vaultAcct))
	after, err := f.strategy.BalanceOf(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(1100), after)
}

func TestExchangeRate_WithdrawForwardsToVault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newExchangeRateFixture(t, 1000)
	require.NoError(t, hand(t, f.token, f.strategy, 1000))

	require.NoError(t, f.strategy.Withdraw(ctx, vaultAcct, 300))

	assert.Equal(t, domain.Amount(300), balance(t, f.token, vaultAcct))
	assert.Zero(t, balance(t, f.token, "strategy-b"))
	left, _ := f.strategy.BalanceOf(ctx)
	assert.Equal(t, domain.Amount(700), left)
}

func TestExchangeRate_WithdrawAllAfterInterest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newExchangeRateFixture(t, 500)
	require.NoError(t, hand(t, f.token, f.strategy, 500))
	require.NoError(t, f.market.AddPendingInterest(50))
	require.NoError(t, f.strategy.Harvest(ctx, vaultAcct))

	got, err := f.strategy.WithdrawAll(ctx, vaultAcct)

	require.NoError(t, err)
	assert.Equal(t, domain.Amount(550), got)
	assert.Equal(t, domain.Amount(550), balance(t, f.token, vaultAcct))
	left, _ := f.strategy.BalanceOf(ctx)
	assert.Zero(t, left)
}

func TestExchangeRate_MarketCodesPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("mint failure refunds and reports code", func(t *testing.T) {
		t.Parallel()
		f := newExchangeRateFixture(t, 100)
		require.NoError(t, f.faults.SetFailNextSupply(ports.CodeMathError))

		err := hand(t, f.token, f.strategy, 100)

		var me *ports.MarketError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ports.CodeMathError, me.Code)
		assert.ErrorIs(t, err, ports.ErrStrategyOperationFailed)
		assert.Equal(t, domain.Amount(100), balance(t, f.token, vaultAcct))
	})

	t.Run("insufficient cash maps to insufficient funds", func(t *testing.T) {
		t.Parallel()
		f := newExchangeRateFixture(t, 100)
		require.NoError(t, hand(t, f.token, f.strategy, 100))
		require.NoError(t, f.market.Borrow(ctx, "borrower", 90))

		err := f.strategy.Withdraw(ctx, vaultAcct, 20)

		assert.ErrorIs(t, err, ports.ErrInsufficientStrategyFunds)
	})

	t.Run("short redeem forwards what arrived", func(t *testing.T) {
		t.Parallel()
		f := newExchangeRateFixture(t, 100)
		require.NoError(t, hand(t, f.token, f.strategy, 100))
		f.faults.SetShortNextWithdraw(20)

		err := f.strategy.Withdraw(ctx, vaultAcct, 30)

		assert.ErrorIs(t, err, ports.ErrInsufficientStrategyFunds)
		assert.Equal(t, domain.Amount(20), balance(t, f.token, vaultAcct))
	})
}

// mockMarket lets a test make the exchange-rate read fail.
type mockMarket struct {
	mock.Mock
}

func (m *mockMarket) Account() domain.Account { return "ctoken" }

func (m *mockMarket) Mint(ctx context.Context, minter domain.Account, amount domain.Amount) (uint64, error) {
	args := m.Called(ctx, minter, amount)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockMarket) RedeemUnderlying(ctx context.Context, redeemer domain.Account, amount domain.Amount) (uint64, error) {
	args := m.Called(ctx, redeemer, amount)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockMarket) Redeem(ctx context.Context, redeemer domain.Account, receiptTokens domain.Amount) (uint64, error) {
	args := m.Called(ctx, redeemer, receiptTokens)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockMarket) AccrueInterest(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockMarket) BalanceOf(ctx context.Context, owner domain.Account) (domain.Amount, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(domain.Amount), args.Error(1)
}

func (m *mockMarket) ExchangeRate(ctx context.Context) (domain.Amount, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Amount), args.Error(1)
}

func TestExchangeRate_BalanceFailsClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	market := new(mockMarket)
	market.On("BalanceOf", ctx, domain.Account("strategy-b")).Return(domain.Amount(500), nil)
	market.On("ExchangeRate", ctx).Return(domain.Amount(0), errors.New("oracle unavailable"))

	s, err := strategy.NewExchangeRate("strategy-b", vaultAcct, inmemory.NewToken("USDC"), market)
	require.NoError(t, err)

	got, err := s.BalanceOf(ctx)

	assert.Zero(t, got)
	assert.ErrorIs(t, err, ports.ErrStrategyOperationFailed)
	market.AssertExpectations(t)
}

func TestExchangeRate_HarvestFailureCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	market := new(mockMarket)
	market.On("AccrueInterest", ctx).Return(ports.CodeMathError, nil)

	s, err := strategy.NewExchangeRate("strategy-b", vaultAcct, inmemory.NewToken("USDC"), market)
	require.NoError(t, err)

	err = s.Harvest(ctx, vaultAcct)

	assert.ErrorIs(t, err, ports.ErrStrategyOperationFailed)
	market.AssertExpectations(t)
}
