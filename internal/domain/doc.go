// Package domain contains the share-accounting model for the yield vault.
//
// This package is the CORE of the hexagonal architecture - it defines the
// arithmetic and bookkeeping with ZERO dependencies on external frameworks,
// SDKs, or infrastructure.
//
// Hexagonal Architecture Boundaries:
//   - Domain NEVER imports from: internal/adapters, internal/ports, internal/app, external SDKs
//   - Domain ONLY imports from: standard library, other domain types
//   - Domain exposes: value objects, the share ledger, fee math, domain errors
//   - Domain does NOT: move assets, call strategies, log, or read clocks
//
// Files and types
// -----------------------
//   - amount.go
//   - Amount: unsigned integer quantity. MulDiv computes floor(x*y/d) with a
//     128-bit intermediate product; it is the only division used for pricing.
//
//   - share_ledger.go
//   - SharesForDeposit / AssetsForShares: asset <-> share conversion against a
//     (totalSupply, totalValue) snapshot. Both floor, i.e. round toward the vault.
//   - ShareLedger: holder -> shares book and total supply (mint/burn).
//
//   - fee.go
//   - AssessFee: profit-gated performance fee (FeeRateBps of profit).
//   - FeeShortfallPolicy: how a fee larger than the idle balance is paid.
//
//   - event.go
//   - Event: audit trail entry (Deposited, Withdrawn, Harvested, StrategyUpdated).
//
//   - errors.go
//   - Sentinel errors for accounting failures.
package domain
