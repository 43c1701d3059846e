package ports

import (
	"context"
	"time"

	"github.com/sufield/yieldvault/internal/domain"
)

// VaultReader is the vault's public read surface, consumed by inbound adapters.
// Every method reads fresh balances; none takes the operation guard.
type VaultReader interface {
	Account() domain.Account
	Owner() domain.Account
	Asset() string

	TotalManagedValue(ctx context.Context) (domain.Amount, error)
	IdleBalance(ctx context.Context) (domain.Amount, error)
	TotalShareSupply() domain.Amount
	TotalDepositedPrincipal() domain.Amount
	LastHarvestTime() time.Time
	ActiveStrategy() (Strategy, bool)

	BalanceOf(holder domain.Account) domain.Amount
	MaxWithdraw(ctx context.Context, holder domain.Account) (domain.Amount, error)

	PreviewDeposit(ctx context.Context, assets domain.Amount) (domain.Amount, error)
	PreviewWithdraw(ctx context.Context, shares domain.Amount) (domain.Amount, error)

	// Snapshot collects the whole read surface in one call, so its fields
	// agree with each other.
	Snapshot(ctx context.Context) (VaultSnapshot, error)
}

// VaultSnapshot is a point-in-time view of the public read surface.
type VaultSnapshot struct {
	Account                 domain.Account
	Owner                   domain.Account
	Asset                   string
	Strategy                domain.Account
	StrategyBound           bool
	IdleBalance             domain.Amount
	StrategyBalance         domain.Amount
	TotalManagedValue       domain.Amount
	TotalShareSupply        domain.Amount
	TotalDepositedPrincipal domain.Amount
	Holders                 int
	LastHarvestTime         time.Time
	OperationInFlight       bool
}

// VaultOperator adds the state-changing operations available to local
// drivers (the CLI simulation, tests). Owner-gated operations are not part
// of it: they require a credential from the concrete vault.
type VaultOperator interface {
	VaultReader

	Deposit(ctx context.Context, depositor domain.Account, assetsIn domain.Amount) (domain.Amount, error)
	Withdraw(ctx context.Context, holder domain.Account, sharesIn domain.Amount) (domain.Amount, error)
	Harvest(ctx context.Context) (domain.HarvestReport, error)
}
