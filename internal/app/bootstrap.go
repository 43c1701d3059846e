package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// Bootstrap wires application components:
// - Loads config
// - Validates inputs
// - Applies a default timeout if the caller didn't set one
// - Creates the base asset, owner verifier and vault
// - Binds the configured strategy as the owner
// - Returns the wired Application
func Bootstrap(ctx context.Context, configLoader ports.ConfigLoader, factory ports.AdapterFactory, opts ...VaultOption) (*Application, error) {
	if configLoader == nil {
		return nil, fmt.Errorf("config loader is nil")
	}
	if factory == nil {
		return nil, fmt.Errorf("adapter factory is nil")
	}

	// Ensure we don't hang indefinitely if caller forgot a deadline
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
	}

	// Step 1: Load configuration
	cfg, err := configLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	policy, err := domain.ParseFeeShortfallPolicy(string(cfg.FeeShortfallPolicy))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// Step 2: Base asset
	asset, err := factory.CreateAsset(ctx, cfg.Asset)
	if err != nil {
		return nil, fmt.Errorf("create asset %s: %w", cfg.Asset.Symbol, err)
	}

	// Step 3: Owner verifier
	verifier, err := factory.CreateOwnerVerifier(ctx, cfg.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("create owner verifier: %w", err)
	}

	// Step 4: Vault, unbound
	vaultOpts := append([]VaultOption{
		WithOwnerVerifier(verifier),
		WithFeeShortfallPolicy(policy),
	}, opts...)
	vault, err := NewVault(cfg.VaultAccount, cfg.OwnerAccount, asset, vaultOpts...)
	if err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}

	// Step 5: Initial strategy, bound by the configured owner
	strategy, err := factory.CreateStrategy(ctx, cfg.Strategy, cfg.VaultAccount, asset)
	if err != nil {
		return nil, fmt.Errorf("create %s strategy: %w", cfg.Strategy.Kind, err)
	}
	if strategy != nil {
		cred, err := vault.AuthorizeOwner(ctx, cfg.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap strategy binding: %w", err)
		}
		if err := vault.RebindStrategy(ctx, cred, strategy); err != nil {
			return nil, fmt.Errorf("bind %s strategy: %w", cfg.Strategy.Kind, err)
		}
	}

	return New(cfg, vault, asset)
}
