// Package config loads the vaultd deployment file.
//
// A deployment file is YAML with five sections (vault, strategy, journal,
// http, log). Values are read from the file, then VAULT_* environment
// variables override them, then defaults fill what is still empty, and
// finally Validate checks the result. ToPorts converts a validated file into
// the ports.Config consumed by app.Bootstrap.
package config

import "time"

// VaultSection describes the vault itself and its base asset.
type VaultSection struct {
	// Account is the vault's custody identity on the base asset.
	Account string `yaml:"account" validate:"required,printascii,max=128"`

	// OwnerAccount receives performance fees.
	OwnerAccount string `yaml:"owner_account" validate:"required,printascii,max=128,nefield=Account"`

	// OwnerSPIFFEID is the identity allowed to rebind the strategy.
	// Example: "spiffe://example.org/vault-owner"
	OwnerSPIFFEID string `yaml:"owner_spiffe_id" validate:"required,spiffeid"`

	// FeeShortfallPolicy is "recall" (default) or "idle_only".
	FeeShortfallPolicy string `yaml:"fee_shortfall_policy" validate:"omitempty,oneof=recall idle_only"`

	Asset AssetSection `yaml:"asset"`
}

// AssetSection describes the base asset.
type AssetSection struct {
	Symbol   string `yaml:"symbol" validate:"required,alphanum,max=12"`
	Decimals uint8  `yaml:"decimals" validate:"lte=18"`

	// Faucet seeds opening balances in base units (simulated deployments only).
	Faucet map[string]uint64 `yaml:"faucet" validate:"dive,keys,required,printascii,endkeys"`
}

// StrategySection selects the strategy bound at startup.
type StrategySection struct {
	// Kind is "none", "rebasing" or "exchange_rate".
	Kind          string `yaml:"kind" validate:"oneof=none rebasing exchange_rate"`
	Account       string `yaml:"account" validate:"required_unless=Kind none,printascii,max=128"`
	MarketAccount string `yaml:"market_account" validate:"required_unless=Kind none,printascii,max=128"`

	// InitialExchangeRate is underlying per receipt token as a decimal string,
	// e.g. "0.02". Only used by exchange_rate; defaults to "1".
	InitialExchangeRate string `yaml:"initial_exchange_rate"`
}

// JournalSection configures the durable event journal.
type JournalSection struct {
	// Path is the badger directory. Empty selects an in-memory journal.
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// HTTPSection configures the read API listener.
type HTTPSection struct {
	ListenAddr        string        `yaml:"listen_addr" validate:"required,hostname_port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// LogSection configures the process logger.
type LogSection struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// FileConfig represents a vaultd configuration file.
//
// The config format is versioned to support future evolution without breaking changes.
type FileConfig struct {
	// Version is the config file format version (optional, currently always 1)
	Version int `yaml:"version,omitempty" validate:"lte=1"`

	Vault    VaultSection    `yaml:"vault"`
	Strategy StrategySection `yaml:"strategy"`
	Journal  JournalSection  `yaml:"journal"`
	HTTP     HTTPSection     `yaml:"http"`
	Log      LogSection      `yaml:"log"`
}
