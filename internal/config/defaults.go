package config

import "time"

// Default values applied by Load for settings the file leaves empty.
const (
	DefaultOwnerAccount       = "owner"
	DefaultFeeShortfallPolicy = "recall"
	DefaultAssetSymbol        = "USDC"
	DefaultStrategyKind       = "none"
	DefaultExchangeRate       = "1"

	DefaultListenAddr        = "127.0.0.1:8080"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// applyDefaults sets default values for unspecified configuration
func applyDefaults(cfg *FileConfig) {
	if cfg.Vault.OwnerAccount == "" {
		cfg.Vault.OwnerAccount = DefaultOwnerAccount
	}
	if cfg.Vault.FeeShortfallPolicy == "" {
		cfg.Vault.FeeShortfallPolicy = DefaultFeeShortfallPolicy
	}
	if cfg.Vault.Asset.Symbol == "" {
		cfg.Vault.Asset.Symbol = DefaultAssetSymbol
	}

	if cfg.Strategy.Kind == "" {
		cfg.Strategy.Kind = DefaultStrategyKind
	}
	if cfg.Strategy.Kind == "exchange_rate" && cfg.Strategy.InitialExchangeRate == "" {
		cfg.Strategy.InitialExchangeRate = DefaultExchangeRate
	}

	if cfg.Journal.Path == "" {
		cfg.Journal.InMemory = true
	}

	if cfg.HTTP.ListenAddr == "" {
		cfg.HTTP.ListenAddr = DefaultListenAddr
	}
	if cfg.HTTP.ReadHeaderTimeout == 0 {
		cfg.HTTP.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
