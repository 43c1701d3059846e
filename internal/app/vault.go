package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sufield/yieldvault/internal/assert"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

const (
	opDeposit  = "deposit"
	opWithdraw = "withdraw"
	opHarvest  = "harvest"
	opRebind   = "rebind strategy"
)

// Vault is the pooled-deposit yield vault core.
// Pure core logic: No HTTP, no persistence, no market specifics here
// Dependencies are injected via ports (hexagonal architecture)
//
// Deposit, Withdraw, Harvest and RebindStrategy run under a non-reentrant guard
// and are all-or-nothing: a failure partway unwinds every effect already applied.
// Views never take the guard and always read fresh balances.
type Vault struct {
	account  domain.Account
	owner    domain.Account
	asset    ports.Asset
	verifier ports.OwnerVerifier

	feePolicy domain.FeeShortfallPolicy
	events    ports.EventSink
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	guard guard

	// mu protects the fields below. It is never held across an external call.
	mu          sync.RWMutex
	ledger      *domain.ShareLedger
	principal   domain.Amount
	binding     binding
	lastHarvest time.Time
	seq         uint64
}

// VaultOption configures a Vault
type VaultOption func(*Vault)

// WithLogger sets a structured logger for the vault
// If logger is nil, uses io.Discard for silent operation
func WithLogger(logger *slog.Logger) VaultOption {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		} else {
			v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	}
}

// WithEventSink sets where the audit trail is published.
func WithEventSink(sink ports.EventSink) VaultOption {
	return func(v *Vault) {
		v.events = sink
	}
}

// WithOwnerVerifier sets the verifier consulted by AuthorizeOwner.
// Without one, no credential can ever be issued.
func WithOwnerVerifier(verifier ports.OwnerVerifier) VaultOption {
	return func(v *Vault) {
		v.verifier = verifier
	}
}

// WithFeeShortfallPolicy selects how fees larger than the idle balance are paid.
func WithFeeShortfallPolicy(policy domain.FeeShortfallPolicy) VaultOption {
	return func(v *Vault) {
		v.feePolicy = policy
	}
}

// WithClock overrides the time source used for lastHarvestTime and events.
func WithClock(now func() time.Time) VaultOption {
	return func(v *Vault) {
		if now != nil {
			v.now = now
		}
	}
}

// WithIDGenerator overrides event ID generation (default: random UUIDs).
func WithIDGenerator(newID func() string) VaultOption {
	return func(v *Vault) {
		if newID != nil {
			v.newID = newID
		}
	}
}

// NewVault creates an unbound vault with an empty share ledger.
// Default logger: stderr with Info level. Default fee policy: FeeRecallShortfall.
func NewVault(account, owner domain.Account, asset ports.Asset, opts ...VaultOption) (*Vault, error) {
	if account.IsZero() {
		return nil, fmt.Errorf("vault account: %w", domain.ErrInvalidAccount)
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("owner account: %w", domain.ErrInvalidAccount)
	}
	if owner == account {
		return nil, errors.New("owner account must differ from the vault account")
	}
	if asset == nil {
		return nil, errors.New("base asset is required")
	}

	v := &Vault{
		account:   account,
		owner:     owner,
		asset:     asset,
		feePolicy: domain.FeeRecallShortfall,
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})),
		now:     time.Now,
		newID:   uuid.NewString,
		ledger:  domain.NewShareLedger(),
		binding: unbound(),
	}

	for _, opt := range opts {
		opt(v)
	}

	if _, err := domain.ParseFeeShortfallPolicy(string(v.feePolicy)); err != nil {
		return nil, err
	}

	return v, nil
}

// Account returns the vault's custody account.
func (v *Vault) Account() domain.Account {
	return v.account
}

// Owner returns the fee recipient.
func (v *Vault) Owner() domain.Account {
	return v.owner
}

// Asset returns the base asset symbol.
func (v *Vault) Asset() string {
	return v.asset.Symbol()
}

// TotalShareSupply returns the number of shares outstanding.
func (v *Vault) TotalShareSupply() domain.Amount {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ledger.TotalSupply()
}

// BalanceOf returns holder's share balance.
func (v *Vault) BalanceOf(holder domain.Account) domain.Amount {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ledger.BalanceOf(holder)
}

// TotalDepositedPrincipal is the running net principal (informational only;
// never used for pricing).
func (v *Vault) TotalDepositedPrincipal() domain.Amount {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.principal
}

// LastHarvestTime returns the time of the last profitable harvest
// (zero time if there has been none).
func (v *Vault) LastHarvestTime() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastHarvest
}

// ActiveStrategy returns the bound strategy, if any.
func (v *Vault) ActiveStrategy() (ports.Strategy, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.binding.get()
}

// PreviewDeposit estimates the shares a deposit of assets would mint now.
// Best effort: a later Deposit may differ if balances change in between.
func (v *Vault) PreviewDeposit(ctx context.Context, assets domain.Amount) (domain.Amount, error) {
	totalValue, err := v.TotalManagedValue(ctx)
	if err != nil {
		return 0, err
	}
	return domain.SharesForDeposit(assets, v.TotalShareSupply(), totalValue)
}

// PreviewWithdraw estimates the assets redeeming shares would pay out now.
func (v *Vault) PreviewWithdraw(ctx context.Context, shares domain.Amount) (domain.Amount, error) {
	totalValue, err := v.TotalManagedValue(ctx)
	if err != nil {
		return 0, err
	}
	return domain.AssetsForShares(shares, v.TotalShareSupply(), totalValue)
}

// MaxWithdraw is the asset value of holder's entire share balance.
func (v *Vault) MaxWithdraw(ctx context.Context, holder domain.Account) (domain.Amount, error) {
	shares := v.BalanceOf(holder)
	if shares == 0 {
		return 0, nil
	}
	return v.PreviewWithdraw(ctx, shares)
}

// Holders returns accounts with a non-zero share balance.
func (v *Vault) Holders() []domain.Account {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ledger.Accounts()
}

// Snapshot collects the public read surface. Balances are read fresh.
func (v *Vault) Snapshot(ctx context.Context) (ports.VaultSnapshot, error) {
	idle, stratBal, err := v.readBalances(ctx)
	if err != nil {
		return ports.VaultSnapshot{}, err
	}
	total, err := idle.Add(stratBal)
	if err != nil {
		return ports.VaultSnapshot{}, fmt.Errorf("total managed value: %w", err)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	snap := ports.VaultSnapshot{
		Account:                 v.account,
		Owner:                   v.owner,
		Asset:                   v.asset.Symbol(),
		IdleBalance:             idle,
		StrategyBalance:         stratBal,
		TotalManagedValue:       total,
		TotalShareSupply:        v.ledger.TotalSupply(),
		TotalDepositedPrincipal: v.principal,
		Holders:                 v.ledger.Holders(),
		LastHarvestTime:         v.lastHarvest,
		OperationInFlight:       v.guard.busy(),
	}
	if s, ok := v.binding.get(); ok {
		snap.Strategy = s.Account()
		snap.StrategyBound = true
	}
	return snap, nil
}

// currentStrategy reads the binding under the read lock.
func (v *Vault) currentStrategy() (ports.Strategy, bool) {
	return v.ActiveStrategy()
}

// fail unwinds the operation's effects and builds the returned error.
// The cause stays matchable with errors.Is; compensation failures are joined on.
func (v *Vault) fail(ctx context.Context, op string, undo *undoLog, cause error) error {
	err := fmt.Errorf("%s: %w", op, cause)
	steps := undo.len()
	if undoErr := undo.unwind(ctx); undoErr != nil {
		v.logger.Error("rollback incomplete", "op", op, "cause", cause, "error", undoErr)
		return errors.Join(err, fmt.Errorf("rollback: %w", undoErr))
	}
	if steps > 0 {
		v.logger.Warn("operation rolled back", "op", op, "steps", steps, "cause", cause)
	}
	return err
}

// assertLedger checks ledger invariants in debug builds.
func (v *Vault) assertLedger() {
	v.mu.RLock()
	defer v.mu.RUnlock()
	sum, supply := v.ledger.SumBalances(), v.ledger.TotalSupply()
	assert.Invariantf(sum == supply, "sum of holder shares %s must equal total share supply %s", sum, supply)
	assert.Invariant((v.ledger.TotalSupply() == 0) == (v.ledger.Holders() == 0),
		"zero supply iff no holders")
}

var _ ports.VaultOperator = (*Vault)(nil)
