// Package ports defines the inbound and outbound ports (interfaces and types) used to
// decouple the vault core from the asset, the yield sources, and observers.
//
// Purpose
// -------
// Ports are the boundary between the domain/application and the
// infrastructure (adapters). Interfaces represent the contracts that
// adapters must satisfy. Keep these interfaces stable and focused.
//
// Files and responsibilities
// --------------------------
//   - outbound.go
//   - Asset: the base asset token ledger (transfer, transferFrom, approve, balanceOf).
//   - Strategy: the yield source capability a vault routes deposits into.
//   - RebasingMarket / ExchangeRateMarket: the external lending markets the two
//     strategy adapters drive.
//   - EventSink, OwnerVerifier: audit trail and owner authorization.
//   - Each interface includes an "Error Contract" in comments describing
//     sentinel errors returned by implementations.
//   - errors.go
//   - Infrastructure sentinel errors and MarketError (coded market failures).
//   - inbound.go
//   - VaultReader / VaultOperator: the vault surface inbound adapters drive.
//   - types.go
//   - Config consumed by app.Bootstrap, ConfigLoader and AdapterFactory.
//
// notes
// ------------
//   - The vault depends only on Strategy; it never sees which market sits
//     behind an adapter.
//   - Keep domain and application logic free of adapter concerns. Use the ports
//     to pass pure domain types (defined under `internal/domain`).
package ports
