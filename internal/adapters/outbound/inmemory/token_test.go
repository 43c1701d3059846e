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

func TestToken_Transfer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok := inmemory.NewToken("USDC")
	require.NoError(t, tok.Mint("alice", 100))

	require.NoError(t, tok.Transfer(ctx, "alice", "bob", 40))

	alice, _ := tok.BalanceOf(ctx, "alice")
	bob, _ := tok.BalanceOf(ctx, "bob")
	assert.Equal(t, domain.Amount(60), alice)
	assert.Equal(t, domain.Amount(40), bob)
	assert.Equal(t, domain.Amount(100), tok.TotalSupply())
}

func TestToken_TransferInsufficientBalance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok := inmemory.NewToken("USDC")
	require.NoError(t, tok.Mint("alice", 10))

	err := tok.Transfer(ctx, "alice", "bob", 11)

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrAssetTransferFailed)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	alice, _ := tok.BalanceOf(ctx, "alice")
	assert.Equal(t, domain.Amount(10), alice, "failed transfer leaves balances untouched")
}

func TestToken_TransferFromConsumesAllowance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok := inmemory.NewToken("USDC")
	require.NoError(t, tok.Mint("alice", 100))
	require.NoError(t, tok.Approve(ctx, "alice", "vault", 70))

	require.NoError(t, tok.TransferFrom(ctx, "vault", "alice", "vault", 50))
	assert.Equal(t, domain.Amount(20), tok.Allowance("alice", "vault"))

	err := tok.TransferFrom(ctx, "vault", "alice", "vault", 21)
	assert.ErrorIs(t, err, ports.ErrAssetTransferFailed)

	require.NoError(t, tok.TransferFrom(ctx, "vault", "alice", "vault", 20))
	assert.Zero(t, tok.Allowance("alice", "vault"))
	vault, _ := tok.BalanceOf(ctx, "vault")
	assert.Equal(t, domain.Amount(70), vault)
}

func TestToken_ApproveOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok := inmemory.NewToken("USDC")

	require.NoError(t, tok.Approve(ctx, "vault", "strategy", 50))
	require.NoError(t, tok.Approve(ctx, "vault", "strategy", 30))
	assert.Equal(t, domain.Amount(30), tok.Allowance("vault", "strategy"))

	require.NoError(t, tok.Approve(ctx, "vault", "strategy", 0))
	assert.Zero(t, tok.Allowance("vault", "strategy"))
}

func TestToken_RejectsZeroAccounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tok := inmemory.NewToken("USDC")

	assert.ErrorIs(t, tok.Mint("", 1), domain.ErrInvalidAccount)
	assert.ErrorIs(t, tok.Approve(ctx, "", "x", 1), domain.ErrInvalidAccount)
	assert.ErrorIs(t, tok.Transfer(ctx, "a", "", 0), ports.ErrAssetTransferFailed)
}

func TestToken_InjectedTransferFault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	faults := &debug.FaultProfile{}
	tok := inmemory.NewToken("USDC", inmemory.WithTokenFaults(faults))
	require.NoError(t, tok.Mint("alice", 10))

	faults.SetFailNextTransfer(true)
	assert.ErrorIs(t, tok.Transfer(ctx, "alice", "bob", 1), ports.ErrAssetTransferFailed)
	assert.NoError(t, tok.Transfer(ctx, "alice", "bob", 1), "fault is one-shot")
}
