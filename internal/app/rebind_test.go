package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/app"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

func TestAuthorizeOwner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	cred, err := f.vault.AuthorizeOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, cred.Subject())
	assert.False(t, cred.IssuedAt().IsZero())

	for _, presented := range []string{"spiffe://example.org/someone-else", "spiffe://evil.org/vault-owner", "not a spiffe id", ""} {
		_, err := f.vault.AuthorizeOwner(ctx, presented)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, presented)
	}
}

func TestAuthorizeOwner_NoVerifier(t *testing.T) {
	t.Parallel()
	f := newFixture(t, app.WithOwnerVerifier(nil))
	_, err := f.vault.AuthorizeOwner(context.Background(), ownerID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRebind_RejectsForeignCredentials(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	other := newFixture(t)
	ctx := context.Background()
	s := newFakeStrategy("strategy", f.tok)

	assert.ErrorIs(t, f.vault.RebindStrategy(ctx, nil, s), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.vault.RebindStrategy(ctx, &app.OwnerCredential{}, s), domain.ErrUnauthorized)

	foreign, err := other.vault.AuthorizeOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.ErrorIs(t, f.vault.RebindStrategy(ctx, foreign, s), domain.ErrUnauthorized)

	_, bound := f.vault.ActiveStrategy()
	assert.False(t, bound)
	assert.Empty(t, f.events.Events())
}

func TestRebind_RejectsStrategyOfAnotherVault(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := newFakeStrategy("strategy", f.tok)
	s.vault = "other-vault"

	cred, err := f.vault.AuthorizeOwner(context.Background(), ownerID)
	require.NoError(t, err)
	err = f.vault.RebindStrategy(context.Background(), cred, s)
	assert.ErrorIs(t, err, ports.ErrUnauthorizedCaller)
}

func TestRebind_MovesAllCapital(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := newFakeStrategy("strategy-a", f.tok)
	b := newFakeStrategy("strategy-b", f.tok)

	f.deposit(t, "alice", 500)
	f.bind(t, a)
	assert.Zero(t, f.idle(t), "binding deploys the idle balance")
	assert.Equal(t, domain.Amount(500), f.balance(t, a.Account()))

	f.bind(t, b)
	assert.Zero(t, f.balance(t, a.Account()), "nothing stranded in the old strategy")
	assert.Equal(t, domain.Amount(500), f.balance(t, b.Account()))
	assert.Zero(t, f.idle(t))

	active, ok := f.vault.ActiveStrategy()
	require.True(t, ok)
	assert.Equal(t, domain.Account("strategy-b"), active.Account())

	total, err := f.vault.TotalManagedValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Amount(500), total)

	evts := f.events.Events()
	last := evts[len(evts)-1]
	assert.Equal(t, domain.EventStrategyUpdated, last.Kind)
	assert.Equal(t, domain.Account("strategy-b"), last.Strategy)
}

func TestRebind_UnbindReturnsCapitalToIdle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := newFakeStrategy("strategy-a", f.tok)
	f.bind(t, a)
	f.deposit(t, "alice", 500)

	f.bind(t, nil)

	_, ok := f.vault.ActiveStrategy()
	assert.False(t, ok)
	assert.Equal(t, domain.Amount(500), f.idle(t))

	evts := f.events.Events()
	assert.True(t, evts[len(evts)-1].Strategy.IsZero())
}

func TestRebind_StrandedBalanceKeepsOldBinding(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := newFakeStrategy("strategy-a", f.tok)
	b := newFakeStrategy("strategy-b", f.tok)
	f.bind(t, a)
	f.deposit(t, "alice", 500)
	a.strand = 1

	cred, err := f.vault.AuthorizeOwner(context.Background(), ownerID)
	require.NoError(t, err)
	err = f.vault.RebindStrategy(context.Background(), cred, b)

	require.ErrorIs(t, err, ports.ErrStrategyOperationFailed)
	active, ok := f.vault.ActiveStrategy()
	require.True(t, ok)
	assert.Equal(t, a.Account(), active.Account())
	assert.Equal(t, domain.Amount(500), f.balance(t, a.Account()), "recalled funds are redeployed")
	assert.Zero(t, f.balance(t, b.Account()))
	assert.Zero(t, f.idle(t))
}

func TestRebind_DeployFailureRestoresOldStrategy(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	a := newFakeStrategy("strategy-a", f.tok)
	b := newFakeStrategy("strategy-b", f.tok)
	f.bind(t, a)
	f.deposit(t, "alice", 500)
	b.depositErr = ports.ErrStrategyOperationFailed

	cred, err := f.vault.AuthorizeOwner(context.Background(), ownerID)
	require.NoError(t, err)
	err = f.vault.RebindStrategy(context.Background(), cred, b)

	require.ErrorIs(t, err, ports.ErrStrategyOperationFailed)
	active, ok := f.vault.ActiveStrategy()
	require.True(t, ok)
	assert.Equal(t, a.Account(), active.Account())
	assert.Equal(t, domain.Amount(500), f.balance(t, a.Account()))
	assert.Zero(t, f.idle(t))
}
