package inmemory

import (
	"context"
	"fmt"
	"maps"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// InMemoryConfig is an outbound adapter that provides hardcoded configuration
// This adapter is responsible only for loading config - not wiring dependencies
type InMemoryConfig struct {
	config *ports.Config
}

// NewInMemoryConfig creates a new in-memory configuration adapter.
// Optional functional options can override default values for tests.
func NewInMemoryConfig(opts ...func(*ports.Config)) *InMemoryConfig {
	cfg := &ports.Config{
		VaultAccount:       "vault",
		OwnerAccount:       "owner",
		OwnerID:            "spiffe://example.org/vault-owner",
		FeeShortfallPolicy: domain.FeeRecallShortfall,
		Asset: ports.AssetConfig{
			Symbol:   "USDC",
			Decimals: 6,
			Faucet: map[domain.Account]domain.Amount{
				"alice": 1_000_000,
				"bob":   1_000_000,
			},
		},
		Strategy: ports.StrategyConfig{
			Kind:          ports.StrategyRebasing,
			Account:       "strategy-rebasing",
			MarketAccount: "market-rebasing",
		},
	}
	for _, o := range opts {
		o(cfg)
	}
	return &InMemoryConfig{config: cfg}
}

// Load returns a copy of the in-memory configuration.
// Returns a copy to prevent callers from mutating shared state across tests.
func (c *InMemoryConfig) Load(ctx context.Context) (*ports.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.config.VaultAccount.IsZero() || c.config.OwnerAccount.IsZero() {
		return nil, fmt.Errorf("inmemory: invalid config: vault and owner accounts are required")
	}

	cfg := *c.config
	cfg.Asset.Faucet = maps.Clone(c.config.Asset.Faucet)
	return &cfg, nil
}

var _ ports.ConfigLoader = (*InMemoryConfig)(nil)
