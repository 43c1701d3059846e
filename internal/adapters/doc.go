// Package adapters contains infrastructure implementations of port interfaces.
//
// This package is the ADAPTER LAYER in hexagonal architecture - it implements
// the port interfaces defined in internal/ports using concrete technologies
// (badger, Prometheus, chi, go-spiffe). Adapters translate between the vault
// core and external systems.
//
// Hexagonal Architecture Boundaries:
//   - Adapters implement: internal/ports interfaces
//   - Adapters import from: internal/domain, internal/ports, external SDKs, standard library
//   - Adapters are instantiated: by cmd/vaultd (composition root) and app.Bootstrap
//   - Domain/App layers: NEVER import concrete adapters directly
//
// Adapter Organization
//
//   - inbound/httpapi     - read-only HTTP API over ports.VaultReader (chi)
//   - outbound/inmemory   - simulated base asset and lending markets
//   - outbound/strategy   - rebasing and exchange-rate strategy adapters (ports.Strategy)
//   - outbound/authz      - owner verification by SPIFFE ID (go-spiffe)
//   - outbound/events     - log, recorder and fan-out event sinks
//   - outbound/journal    - durable event journal (badger)
//   - outbound/metrics    - Prometheus event sink and vault state collector
//   - outbound/compose    - AdapterFactory wiring the simulated adapters together
package adapters
