package config

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// ToPorts converts a validated file into the bootstrap configuration.
func (c *FileConfig) ToPorts() (*ports.Config, error) {
	policy, err := domain.ParseFeeShortfallPolicy(c.Vault.FeeShortfallPolicy)
	if err != nil {
		return nil, err
	}

	faucet := make(map[domain.Account]domain.Amount, len(c.Vault.Asset.Faucet))
	for acct, amount := range c.Vault.Asset.Faucet {
		faucet[domain.Account(acct)] = domain.Amount(amount)
	}

	cfg := &ports.Config{
		VaultAccount:       domain.Account(c.Vault.Account),
		OwnerAccount:       domain.Account(c.Vault.OwnerAccount),
		OwnerID:            c.Vault.OwnerSPIFFEID,
		FeeShortfallPolicy: policy,
		Asset: ports.AssetConfig{
			Symbol:   c.Vault.Asset.Symbol,
			Decimals: c.Vault.Asset.Decimals,
			Faucet:   faucet,
		},
		Strategy: ports.StrategyConfig{
			Kind:          ports.StrategyKind(c.Strategy.Kind),
			Account:       domain.Account(c.Strategy.Account),
			MarketAccount: domain.Account(c.Strategy.MarketAccount),
		},
	}

	if cfg.Strategy.Kind == ports.StrategyExchangeRate {
		rate, err := parseExchangeRate(c.Strategy.InitialExchangeRate)
		if err != nil {
			return nil, fmt.Errorf("strategy.initial_exchange_rate: %w", err)
		}
		cfg.Strategy.InitialExchangeRate = rate
	}
	return cfg, nil
}

// parseExchangeRate converts a decimal rate ("0.02") into a fixed-point value
// scaled by ports.ExchangeRateScale. Digits beyond the scale are rejected
// rather than rounded.
func parseExchangeRate(s string) (domain.Amount, error) {
	if s == "" {
		s = DefaultExchangeRate
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, errors.New("rate must be positive")
	}
	scaled := d.Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(ports.ExchangeRateScale)), 0))
	if !scaled.IsInteger() {
		return 0, errors.New("rate has more than 18 fractional digits")
	}
	n := scaled.BigInt()
	if !n.IsUint64() {
		return 0, errors.New("rate out of range")
	}
	return domain.Amount(n.Uint64()), nil
}
