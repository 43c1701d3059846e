package compose

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sufield/yieldvault/internal/adapters/outbound/authz"
	"github.com/sufield/yieldvault/internal/adapters/outbound/inmemory"
	"github.com/sufield/yieldvault/internal/adapters/outbound/strategy"
	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// SimulatedAdapterFactory builds in-memory adapters for every vault dependency.
// Implements the AdapterFactory port.
type SimulatedAdapterFactory struct {
	faults *debug.FaultProfile

	mu           sync.Mutex
	token        *inmemory.Token
	rebasing     *inmemory.RebasingMarket
	exchangeRate *inmemory.ExchangeRateMarket
}

// FactoryOption configures a SimulatedAdapterFactory.
type FactoryOption func(*SimulatedAdapterFactory)

// WithFaults wires a fault profile into the token and markets.
func WithFaults(faults *debug.FaultProfile) FactoryOption {
	return func(f *SimulatedAdapterFactory) {
		f.faults = faults
	}
}

// NewSimulatedAdapterFactory creates the factory.
func NewSimulatedAdapterFactory(opts ...FactoryOption) *SimulatedAdapterFactory {
	f := &SimulatedAdapterFactory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateAsset creates the base asset and mints each faucet balance.
func (f *SimulatedAdapterFactory) CreateAsset(ctx context.Context, cfg ports.AssetConfig) (ports.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Symbol == "" {
		return nil, errors.New("compose: asset symbol is required")
	}

	var opts []inmemory.TokenOption
	if f.faults != nil {
		opts = append(opts, inmemory.WithTokenFaults(f.faults))
	}
	tok := inmemory.NewToken(cfg.Symbol, opts...)
	for acct, amount := range cfg.Faucet {
		if err := tok.Mint(acct, amount); err != nil {
			return nil, fmt.Errorf("compose: faucet %s: %w", acct, err)
		}
	}

	f.mu.Lock()
	f.token = tok
	f.mu.Unlock()
	return tok, nil
}

// CreateStrategy creates the market and strategy adapter for cfg.Kind.
// Returns (nil, nil) for StrategyNone or an empty kind.
func (f *SimulatedAdapterFactory) CreateStrategy(ctx context.Context, cfg ports.StrategyConfig, vault domain.Account, asset ports.Asset) (ports.Strategy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Kind == "" || cfg.Kind == ports.StrategyNone {
		return nil, nil
	}

	tok, ok := asset.(*inmemory.Token)
	if !ok {
		return nil, fmt.Errorf("compose: simulated markets need an in-memory token, got %T", asset)
	}

	var opts []inmemory.MarketOption
	if f.faults != nil {
		opts = append(opts, inmemory.WithMarketFaults(f.faults))
	}

	switch cfg.Kind {
	case ports.StrategyRebasing:
		market, err := inmemory.NewRebasingMarket(cfg.MarketAccount, tok, opts...)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		s, err := strategy.NewRebasing(cfg.Account, vault, tok, market)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		f.mu.Lock()
		f.rebasing = market
		f.mu.Unlock()
		return s, nil

	case ports.StrategyExchangeRate:
		rate := cfg.InitialExchangeRate
		if rate == 0 {
			rate = ports.ExchangeRateScale
		}
		market, err := inmemory.NewExchangeRateMarket(cfg.MarketAccount, tok, rate, opts...)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		s, err := strategy.NewExchangeRate(cfg.Account, vault, tok, market)
		if err != nil {
			return nil, fmt.Errorf("compose: %w", err)
		}
		f.mu.Lock()
		f.exchangeRate = market
		f.mu.Unlock()
		return s, nil

	default:
		return nil, fmt.Errorf("compose: unknown strategy kind %q", cfg.Kind)
	}
}

// CreateOwnerVerifier creates a SPIFFE ID verifier for ownerID.
func (f *SimulatedAdapterFactory) CreateOwnerVerifier(_ context.Context, ownerID string) (ports.OwnerVerifier, error) {
	return authz.NewSPIFFEVerifier(ownerID)
}

// Token returns the last asset created, or nil.
func (f *SimulatedAdapterFactory) Token() *inmemory.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// RebasingMarket returns the last rebasing market created, or nil.
func (f *SimulatedAdapterFactory) RebasingMarket() *inmemory.RebasingMarket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebasing
}

// ExchangeRateMarket returns the last exchange-rate market created, or nil.
func (f *SimulatedAdapterFactory) ExchangeRateMarket() *inmemory.ExchangeRateMarket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeRate
}

var _ ports.AdapterFactory = (*SimulatedAdapterFactory)(nil)
