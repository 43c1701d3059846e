package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sufield/yieldvault/internal/ports"
)

// Application is the composition root that wires all dependencies
// This is an infrastructure/bootstrap logic
type Application struct {
	Config *ports.Config
	Vault  *Vault
	Asset  ports.Asset
}

// New validates and assembles an Application from already-built components.
func New(cfg *ports.Config, vault *Vault, asset ports.Asset) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if vault == nil {
		return nil, errors.New("vault is nil")
	}
	if asset == nil {
		return nil, errors.New("asset is nil")
	}
	return &Application{Config: cfg, Vault: vault, Asset: asset}, nil
}

// Close releases the event sink if it holds resources (journals, files).
func (a *Application) Close() error {
	if a == nil || a.Vault == nil {
		return nil
	}
	if c, ok := a.Vault.events.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close event sink: %w", err)
		}
	}
	return nil
}

// Ready reports whether the vault can serve reads: the base asset and any
// bound strategy must be able to report balances.
func (a *Application) Ready(ctx context.Context) error {
	_, err := a.Vault.TotalManagedValue(ctx)
	return err
}
