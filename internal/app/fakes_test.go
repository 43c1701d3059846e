package app_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/adapters/outbound/authz"
	"github.com/sufield/yieldvault/internal/adapters/outbound/events"
	"github.com/sufield/yieldvault/internal/adapters/outbound/inmemory"
	"github.com/sufield/yieldvault/internal/app"
	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

const (
	vaultAccount = domain.Account("vault")
	ownerAccount = domain.Account("owner")
	ownerID      = "spiffe://example.org/vault-owner"
	lossSink     = domain.Account("bad-debt")
)

// fakeStrategy keeps its funds as plain token balance at its own account and
// lets tests script shortfalls, failures and callbacks. Tests set the scripted
// fields before driving the vault; the strategy reads them under mu.
type fakeStrategy struct {
	account domain.Account
	vault   domain.Account
	tok     *inmemory.Token

	mu          sync.Mutex
	withdrawCap *domain.Amount
	withdrawErr error
	depositErr  error
	harvestErr  error
	balanceErr  error
	strand      domain.Amount
	yield       domain.Amount
	onCall      func(op string)
	calls       []string
}

func newFakeStrategy(account domain.Account, tok *inmemory.Token) *fakeStrategy {
	return &fakeStrategy{account: account, vault: vaultAccount, tok: tok}
}

func (s *fakeStrategy) Account() domain.Account { return s.account }
func (s *fakeStrategy) Vault() domain.Account   { return s.vault }

func (s *fakeStrategy) record(op string) {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	cb := s.onCall
	s.mu.Unlock()
	if cb != nil {
		cb(op)
	}
}

func (s *fakeStrategy) authorize(caller domain.Account) error {
	if caller != s.vault {
		return fmt.Errorf("%s: %w", caller, ports.ErrUnauthorizedCaller)
	}
	return nil
}

func (s *fakeStrategy) Deposit(ctx context.Context, caller domain.Account, amount domain.Amount) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	s.record("deposit")
	if err := s.scripted(func() error { return s.depositErr }); err != nil {
		return err
	}
	return s.tok.TransferFrom(ctx, s.account, s.vault, s.account, amount)
}

func (s *fakeStrategy) Withdraw(ctx context.Context, caller domain.Account, amount domain.Amount) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	s.record("withdraw")
	send := amount
	s.mu.Lock()
	if s.withdrawCap != nil && *s.withdrawCap < send {
		send = *s.withdrawCap
	}
	withdrawErr := s.withdrawErr
	s.mu.Unlock()
	if err := s.tok.Transfer(ctx, s.account, s.vault, send); err != nil {
		return err
	}
	return withdrawErr
}

func (s *fakeStrategy) WithdrawAll(ctx context.Context, caller domain.Account) (domain.Amount, error) {
	if err := s.authorize(caller); err != nil {
		return 0, err
	}
	s.record("withdraw all")
	s.mu.Lock()
	strand := s.strand
	s.mu.Unlock()
	bal, _ := s.tok.BalanceOf(ctx, s.account)
	send := bal.SaturatingSub(strand)
	if err := s.tok.Transfer(ctx, s.account, s.vault, send); err != nil {
		return 0, err
	}
	return send, nil
}

func (s *fakeStrategy) Harvest(_ context.Context, caller domain.Account) error {
	if err := s.authorize(caller); err != nil {
		return err
	}
	s.record("harvest")
	s.mu.Lock()
	harvestErr, yield := s.harvestErr, s.yield
	s.mu.Unlock()
	if harvestErr != nil {
		return harvestErr
	}
	if yield > 0 {
		return s.tok.Mint(s.account, yield)
	}
	return nil
}

func (s *fakeStrategy) BalanceOf(ctx context.Context) (domain.Amount, error) {
	if err := s.scripted(func() error { return s.balanceErr }); err != nil {
		return 0, err
	}
	return s.tok.BalanceOf(ctx, s.account)
}

func (s *fakeStrategy) scripted(read func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return read()
}

// lose writes off amount of the strategy's holdings.
func (s *fakeStrategy) lose(t *testing.T, amount domain.Amount) {
	t.Helper()
	require.NoError(t, s.tok.Transfer(context.Background(), s.account, lossSink, amount))
}

func capAt(a domain.Amount) *domain.Amount { return &a }

var _ ports.Strategy = (*fakeStrategy)(nil)

// fixture is a vault over an in-memory token with alice and bob funded.
type fixture struct {
	vault  *app.Vault
	tok    *inmemory.Token
	faults *debug.FaultProfile
	events *events.Recorder
}

func newFixture(t *testing.T, opts ...app.VaultOption) *fixture {
	t.Helper()

	faults := &debug.FaultProfile{}
	tok := inmemory.NewToken("USDC", inmemory.WithTokenFaults(faults))
	require.NoError(t, tok.Mint("alice", 1_000_000))
	require.NoError(t, tok.Mint("bob", 1_000_000))

	verifier, err := authz.NewSPIFFEVerifier(ownerID)
	require.NoError(t, err)

	rec := events.NewRecorder(0)
	base := []app.VaultOption{
		app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		app.WithOwnerVerifier(verifier),
		app.WithEventSink(rec),
		app.WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }),
	}
	v, err := app.NewVault(vaultAccount, ownerAccount, tok, append(base, opts...)...)
	require.NoError(t, err)

	return &fixture{vault: v, tok: tok, faults: faults, events: rec}
}

func (f *fixture) deposit(t *testing.T, who domain.Account, amount domain.Amount) domain.Amount {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.tok.Approve(ctx, who, vaultAccount, amount))
	shares, err := f.vault.Deposit(ctx, who, amount)
	require.NoError(t, err)
	return shares
}

func (f *fixture) bind(t *testing.T, s ports.Strategy) {
	t.Helper()
	ctx := context.Background()
	cred, err := f.vault.AuthorizeOwner(ctx, ownerID)
	require.NoError(t, err)
	require.NoError(t, f.vault.RebindStrategy(ctx, cred, s))
}

func (f *fixture) balance(t *testing.T, who domain.Account) domain.Amount {
	t.Helper()
	b, err := f.tok.BalanceOf(context.Background(), who)
	require.NoError(t, err)
	return b
}

func (f *fixture) idle(t *testing.T) domain.Amount {
	return f.balance(t, vaultAccount)
}
