// Package httpapi serves the vault's public read surface as JSON over HTTP.
//
// The API is read-only. State-changing operations are driven locally
// (cmd/vaultd simulate) and are never exposed on the listener.
//
// Routes:
//   - GET /healthz
//   - GET /v1/vault                       totals, binding, price per share
//   - GET /v1/holders/{account}           share balance and max withdraw
//   - GET /v1/preview/deposit?assets=N    shares a deposit of N would mint
//   - GET /v1/preview/withdraw?shares=N   assets redeeming N would pay out
//   - GET /metrics                        when a metrics handler is configured
//
// Amounts are rendered twice: "units" is the exact integer in base units and
// "value" is the same amount scaled by the asset's decimals.
package httpapi
