package app_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/adapters/outbound/journal"
	"github.com/sufield/yieldvault/internal/app"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

func TestNewVault_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := app.NewVault("", ownerAccount, f.tok)
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
	_, err = app.NewVault(vaultAccount, "", f.tok)
	assert.ErrorIs(t, err, domain.ErrInvalidAccount)
	_, err = app.NewVault(vaultAccount, vaultAccount, f.tok)
	assert.ErrorContains(t, err, "owner account must differ")
	_, err = app.NewVault(vaultAccount, ownerAccount, nil)
	assert.ErrorContains(t, err, "base asset is required")
	_, err = app.NewVault(vaultAccount, ownerAccount, f.tok, app.WithFeeShortfallPolicy("skip"))
	assert.ErrorContains(t, err, "unknown fee shortfall policy")
}

func TestVault_Views(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.vault.PreviewWithdraw(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNoSharesOutstanding)
	preview, err := f.vault.PreviewDeposit(ctx, 250)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(250), preview)

	s := newFakeStrategy("strategy", f.tok)
	f.bind(t, s)
	f.deposit(t, "bob", 300)
	f.deposit(t, "alice", 700)
	require.NoError(t, f.tok.Mint(vaultAccount, 100))

	preview, err = f.vault.PreviewDeposit(ctx, 110)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(100), preview)

	maxOut, err := f.vault.MaxWithdraw(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(770), maxOut)
	maxOut, err = f.vault.MaxWithdraw(ctx, "carol")
	require.NoError(t, err)
	assert.Zero(t, maxOut)

	assert.Equal(t, []domain.Account{"alice", "bob"}, f.vault.Holders())
	assert.Equal(t, vaultAccount, f.vault.Account())
	assert.Equal(t, ownerAccount, f.vault.Owner())
	assert.Equal(t, "USDC", f.vault.Asset())

	snap, err := f.vault.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ports.VaultSnapshot{
		Account:                 vaultAccount,
		Owner:                   ownerAccount,
		Asset:                   "USDC",
		Strategy:                "strategy",
		StrategyBound:           true,
		IdleBalance:             100,
		StrategyBalance:         1000,
		TotalManagedValue:       1100,
		TotalShareSupply:        1000,
		TotalDepositedPrincipal: 1000,
		Holders:                 2,
	}, snap)
}

func TestVault_EventsAreStampedInOrder(t *testing.T) {
	t.Parallel()
	n := 0
	f := newFixture(t, app.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}))
	ctx := context.Background()

	s := newFakeStrategy("strategy", f.tok)
	f.bind(t, s)
	f.deposit(t, "alice", 100)
	s.yield = 50
	_, err := f.vault.Harvest(ctx)
	require.NoError(t, err)
	_, err = f.vault.Withdraw(ctx, "alice", 100)
	require.NoError(t, err)

	evts := f.events.Events()
	require.Len(t, evts, 4)
	assert.Equal(t, []domain.EventKind{
		domain.EventStrategyUpdated,
		domain.EventDeposited,
		domain.EventHarvested,
		domain.EventWithdrawn,
	}, f.events.Kinds())
	for i, e := range evts {
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, fmt.Sprintf("evt-%d", i+1), e.ID)
		assert.False(t, e.At.IsZero())
	}

	assert.Equal(t, domain.Event{
		ID: "evt-4", Seq: 4, Kind: domain.EventWithdrawn, At: evts[3].At,
		Account: "alice", Assets: 145, Shares: 100,
	}, evts[3])
}

func TestVault_CommittedOperationReachesJournalUnderCancelledContext(t *testing.T) {
	t.Parallel()

	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	f := newFixture(t, app.WithEventSink(j))
	require.NoError(t, f.tok.Approve(context.Background(), "alice", vaultAccount, 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	shares, err := f.vault.Deposit(ctx, "alice", 100)
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(100), shares)

	var journaled []domain.Event
	require.NoError(t, j.Replay(context.Background(), func(e domain.Event) error {
		journaled = append(journaled, e)
		return nil
	}))
	require.Len(t, journaled, 1)
	assert.Equal(t, domain.EventDeposited, journaled[0].Kind)
	assert.Equal(t, domain.Account("alice"), journaled[0].Account)
	assert.Equal(t, domain.Amount(100), journaled[0].Assets)
}

func TestApplication_NewAndClose(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := app.New(nil, f.vault, f.tok)
	assert.Error(t, err)

	var nilApp *app.Application
	assert.NoError(t, nilApp.Close())
}
