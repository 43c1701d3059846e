package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sufield/yieldvault/internal/config"
)

func validateCommand(_ context.Context, args []string, out io.Writer) error {
	cmd := &Command{Name: "validate", Description: "Validate a vaultd configuration file", Usage: "vaultd validate <config-file>"}
	fs := cmd.NewFlagSet(out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("config file path required")
	}

	cfg, err := config.Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := cfg.ToPorts(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Fprintf(out, "%s: valid\n", fs.Arg(0))
	fmt.Fprintf(out, "  vault:    %s (%s, %d decimals)\n", cfg.Vault.Account, cfg.Vault.Asset.Symbol, cfg.Vault.Asset.Decimals)
	fmt.Fprintf(out, "  owner:    %s\n", cfg.Vault.OwnerSPIFFEID)
	fmt.Fprintf(out, "  strategy: %s\n", cfg.Strategy.Kind)
	fmt.Fprintf(out, "  listen:   %s\n", cfg.HTTP.ListenAddr)
	return nil
}
