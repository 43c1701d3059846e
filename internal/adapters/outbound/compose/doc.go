// Package compose provides the AdapterFactory implementation that composes the
// concrete outbound adapters for a simulated vault deployment.
//
// The factory creates the base asset (an in-memory token seeded from the
// faucet), the lending market and strategy adapter selected by configuration,
// and the SPIFFE owner verifier. It keeps handles to the concrete markets so
// the CLI simulation and tests can accrue interest or drain liquidity.
package compose
