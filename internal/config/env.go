package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides overrides config values with VAULT_* variables read
// through getenv. Invalid values fail fast.
func applyEnvOverrides(cfg *FileConfig, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"VAULT_ACCOUNT", &cfg.Vault.Account},
		{"VAULT_OWNER_ACCOUNT", &cfg.Vault.OwnerAccount},
		{"VAULT_OWNER_SPIFFE_ID", &cfg.Vault.OwnerSPIFFEID},
		{"VAULT_FEE_SHORTFALL_POLICY", &cfg.Vault.FeeShortfallPolicy},
		{"VAULT_ASSET_SYMBOL", &cfg.Vault.Asset.Symbol},
		{"VAULT_STRATEGY_KIND", &cfg.Strategy.Kind},
		{"VAULT_STRATEGY_ACCOUNT", &cfg.Strategy.Account},
		{"VAULT_STRATEGY_MARKET_ACCOUNT", &cfg.Strategy.MarketAccount},
		{"VAULT_STRATEGY_EXCHANGE_RATE", &cfg.Strategy.InitialExchangeRate},
		{"VAULT_JOURNAL_PATH", &cfg.Journal.Path},
		{"VAULT_HTTP_ADDR", &cfg.HTTP.ListenAddr},
		{"VAULT_LOG_LEVEL", &cfg.Log.Level},
		{"VAULT_LOG_FORMAT", &cfg.Log.Format},
	}
	for _, s := range strs {
		if v := strings.TrimSpace(getenv(s.key)); v != "" {
			*s.dst = v
		}
	}

	if v := getenv("VAULT_ASSET_DECIMALS"); v != "" {
		d, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid VAULT_ASSET_DECIMALS %q: %w", v, err)
		}
		cfg.Vault.Asset.Decimals = uint8(d)
	}
	if v := getenv("VAULT_JOURNAL_IN_MEMORY"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid VAULT_JOURNAL_IN_MEMORY %q: %w", v, err)
		}
		cfg.Journal.InMemory = b
	}
	if v := getenv("VAULT_JOURNAL_SYNC_WRITES"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid VAULT_JOURNAL_SYNC_WRITES %q: %w", v, err)
		}
		cfg.Journal.SyncWrites = b
	}
	if v := getenv("VAULT_HTTP_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid VAULT_HTTP_SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}

	return nil
}

// parseBool parses boolean environment variables
// Accepts: "true", "1", "yes", "on" for true; "false", "0", "no", "off" for false
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}
