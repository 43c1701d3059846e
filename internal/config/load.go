package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sufield/yieldvault/internal/ports"
)

// Load reads a vaultd configuration file, applies VAULT_* environment
// overrides and defaults, and validates the result.
func Load(path string) (*FileConfig, error) {
	// Clean the path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) // #nosec G304 - Config file path is trusted (from admin/user)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, os.Getenv)
}

func parse(data []byte, getenv func(string) string) (*FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := applyEnvOverrides(&cfg, getenv); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FileLoader is a ports.ConfigLoader reading a configuration file.
type FileLoader struct {
	Path string
}

// NewFileLoader returns a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load implements ports.ConfigLoader.
func (l *FileLoader) Load(ctx context.Context) (*ports.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := Load(l.Path)
	if err != nil {
		return nil, err
	}
	return cfg.ToPorts()
}

var _ ports.ConfigLoader = (*FileLoader)(nil)

// Loader returns a ports.ConfigLoader serving this already-loaded file.
func (c *FileConfig) Loader() ports.ConfigLoader {
	return staticLoader{cfg: c}
}

type staticLoader struct {
	cfg *FileConfig
}

func (l staticLoader) Load(ctx context.Context) (*ports.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.cfg.ToPorts()
}

// Default returns a validated single-process deployment: a USDC vault with two
// funded depositors and a rebasing strategy.
func Default() *FileConfig {
	cfg := &FileConfig{
		Version: 1,
		Vault: VaultSection{
			Account:       "vault",
			OwnerSPIFFEID: "spiffe://example.org/vault-owner",
			Asset: AssetSection{
				Decimals: 6,
				Faucet:   map[string]uint64{"alice": 1_000_000_000, "bob": 1_000_000_000},
			},
		},
		Strategy: StrategySection{
			Kind:          "rebasing",
			Account:       "strategy-rebasing",
			MarketAccount: "market-rebasing",
		},
	}
	applyDefaults(cfg)
	return cfg
}
