package ports

import (
	"context"

	"github.com/sufield/yieldvault/internal/domain"
)

// ConfigLoader loads the bootstrap configuration for a vault deployment
type ConfigLoader interface {
	Load(ctx context.Context) (*Config, error)
}

// StrategyKind selects the strategy adapter bound at bootstrap.
type StrategyKind string

const (
	StrategyNone         StrategyKind = "none"
	StrategyRebasing     StrategyKind = "rebasing"
	StrategyExchangeRate StrategyKind = "exchange_rate"
)

// Config is the validated deployment description consumed by app.Bootstrap.
type Config struct {
	// VaultAccount is the vault's custody identity on the base asset.
	VaultAccount domain.Account

	// OwnerAccount receives performance fees.
	OwnerAccount domain.Account

	// OwnerID is the SPIFFE ID allowed to rebind the strategy.
	OwnerID string

	FeeShortfallPolicy domain.FeeShortfallPolicy

	Asset    AssetConfig
	Strategy StrategyConfig
}

// AssetConfig describes the base asset.
type AssetConfig struct {
	Symbol   string
	Decimals uint8

	// Faucet seeds opening balances (simulated deployments only).
	Faucet map[domain.Account]domain.Amount
}

// StrategyConfig describes the strategy bound at bootstrap.
type StrategyConfig struct {
	Kind          StrategyKind
	Account       domain.Account
	MarketAccount domain.Account

	// InitialExchangeRate seeds an exchange-rate market (scaled by ExchangeRateScale).
	InitialExchangeRate domain.Amount
}

// AdapterFactory creates the outbound adapters a vault deployment needs.
type AdapterFactory interface {
	CreateAsset(ctx context.Context, cfg AssetConfig) (Asset, error)

	// CreateStrategy returns (nil, nil) for StrategyNone.
	CreateStrategy(ctx context.Context, cfg StrategyConfig, vault domain.Account, asset Asset) (Strategy, error)

	CreateOwnerVerifier(ctx context.Context, ownerID string) (OwnerVerifier, error)
}
