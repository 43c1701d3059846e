package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

func TestDeposit_FirstDepositIsOneToOne(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	shares := f.deposit(t, "alice", 1000)

	assert.Equal(t, domain.Amount(1000), shares)
	assert.Equal(t, domain.Amount(1000), f.vault.TotalShareSupply())
	assert.Equal(t, domain.Amount(1000), f.vault.BalanceOf("alice"))
	assert.Equal(t, domain.Amount(1000), f.vault.TotalDepositedPrincipal())
	assert.Equal(t, domain.Amount(1000), f.idle(t))
	assert.Equal(t, domain.Amount(999_000), f.balance(t, "alice"))
}

func TestDeposit_PricedAgainstPreDepositValue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.deposit(t, "alice", 1000)
	// Yield lands in the vault: 1000 shares now back 1100 units.
	require.NoError(t, f.tok.Mint(vaultAccount, 100))

	shares := f.deposit(t, "bob", 100)
	assert.Equal(t, domain.Amount(90), shares)

	total, err := f.vault.TotalManagedValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(1200), total)
	assert.Equal(t, domain.Amount(1090), f.vault.TotalShareSupply())

	paid, err := f.vault.Withdraw(ctx, "bob", 90)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(99), paid, "rounding keeps the fractional unit in the vault")
}

func TestDeposit_Rejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.vault.Deposit(ctx, "alice", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("empty depositor", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.vault.Deposit(ctx, "", 10)
		assert.ErrorIs(t, err, domain.ErrInvalidAccount)
	})

	t.Run("vault as depositor", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.deposit(t, "alice", 1000)

		_, err := f.vault.Deposit(ctx, vaultAccount, 1000)
		assert.ErrorIs(t, err, domain.ErrInvalidAccount)
		assert.Equal(t, domain.Amount(1000), f.vault.TotalShareSupply())
		maxOut, err := f.vault.MaxWithdraw(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.Amount(1000), maxOut)
	})

	t.Run("strategy as depositor", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := newFakeStrategy("strategy", f.tok)
		f.bind(t, s)
		f.deposit(t, "alice", 1000)

		_, err := f.vault.Deposit(ctx, s.Account(), 10)
		assert.ErrorIs(t, err, domain.ErrInvalidAccount)
		assert.Zero(t, f.vault.BalanceOf(s.Account()))
		assert.Equal(t, domain.Amount(1000), f.balance(t, s.Account()))
	})

	t.Run("after total loss", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		s := newFakeStrategy("strategy", f.tok)
		f.bind(t, s)
		f.deposit(t, "alice", 10)
		s.lose(t, 10)

		require.NoError(t, f.tok.Approve(ctx, "bob", vaultAccount, 100))
		_, err := f.vault.Deposit(ctx, "bob", 100)
		assert.ErrorIs(t, err, domain.ErrZeroManagedValue)
		assert.Equal(t, domain.Amount(1_000_000), f.balance(t, "bob"))
		assert.Zero(t, f.vault.BalanceOf("bob"))
	})

	t.Run("no allowance", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.vault.Deposit(ctx, "alice", 10)
		assert.ErrorIs(t, err, ports.ErrAssetTransferFailed)
		assert.Zero(t, f.vault.TotalShareSupply())
		assert.Empty(t, f.events.Events())
	})

	t.Run("too small to mint a share", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.deposit(t, "alice", 1000)
		require.NoError(t, f.tok.Mint(vaultAccount, 1000))

		require.NoError(t, f.tok.Approve(ctx, "bob", vaultAccount, 1))
		_, err := f.vault.Deposit(ctx, "bob", 1)
		assert.ErrorIs(t, err, domain.ErrZeroShares)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Equal(t, domain.Amount(1_000_000), f.balance(t, "bob"))
	})
}

func TestDeposit_ForwardsToStrategy(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := newFakeStrategy("strategy", f.tok)
	f.bind(t, s)

	f.deposit(t, "alice", 500)

	assert.Zero(t, f.idle(t))
	assert.Equal(t, domain.Amount(500), f.balance(t, "strategy"))
	assert.Zero(t, f.tok.Allowance(vaultAccount, "strategy"), "allowance is consumed by the forward")
}

func TestDeposit_StrategyFailureRefundsDepositor(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := newFakeStrategy("strategy", f.tok)
	f.bind(t, s)
	s.depositErr = ports.ErrStrategyOperationFailed

	require.NoError(t, f.tok.Approve(context.Background(), "alice", vaultAccount, 500))
	_, err := f.vault.Deposit(context.Background(), "alice", 500)

	require.ErrorIs(t, err, ports.ErrStrategyOperationFailed)
	assert.Equal(t, domain.Amount(1_000_000), f.balance(t, "alice"))
	assert.Zero(t, f.vault.TotalShareSupply())
	assert.Zero(t, f.vault.TotalDepositedPrincipal())
	assert.Zero(t, f.tok.Allowance(vaultAccount, "strategy"))
	assert.Equal(t, []domain.EventKind{domain.EventStrategyUpdated}, f.events.Kinds())
}

func TestDeposit_UnreadableStrategyBalanceFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := newFakeStrategy("strategy", f.tok)
	f.bind(t, s)
	s.balanceErr = errors.New("oracle offline")

	require.NoError(t, f.tok.Approve(context.Background(), "alice", vaultAccount, 500))
	_, err := f.vault.Deposit(context.Background(), "alice", 500)
	assert.ErrorContains(t, err, "oracle offline")
	assert.Equal(t, domain.Amount(1_000_000), f.balance(t, "alice"))
}
