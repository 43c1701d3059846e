// Package inmemory contains in-process implementations of the vault's external
// collaborators: the base asset token and the two kinds of lending market the
// strategy adapters drive.
//
// Purpose
// -------
// These adapters let a vault run completely in-process. They back the vaultd
// simulation mode, examples, and tests. Each one can be given a
// debug.FaultProfile to inject one-shot failures.
//
// Files and responsibilities
// --------------------------
//   - token.go
//     Token: implements ports.Asset with balances, allowances and a faucet
//     (Mint). Failures wrap ports.ErrAssetTransferFailed.
//
//   - rebasing_market.go
//     RebasingMarket: implements ports.RebasingMarket. Receipt balances are
//     stored scaled by a liquidity index, so Accrue grows every balance in
//     place. Borrow removes cash to model an illiquid market.
//
//   - exchange_rate_market.go
//     ExchangeRateMarket: implements ports.ExchangeRateMarket. Receipt tokens
//     are fixed units redeemable at an exchange rate; failures are reported as
//     market codes, not errors.
//
//   - config.go
//     InMemoryConfig: a ports.ConfigLoader returning a fixed configuration.
package inmemory
