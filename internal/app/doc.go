// Package app contains the vault core and the application's composition root.
//
// Responsibilities
//   - Vault: the pooled-deposit state machine. It keeps the share ledger,
//     prices shares against total managed value, moves the base asset through
//     ports.Asset and capital through the bound ports.Strategy, and charges the
//     performance fee on harvest.
//   - Bootstrap: loads configuration, builds adapters via ports.AdapterFactory,
//     binds the initial strategy and returns a wired Application.
//
// Files
// - vault.go
//   - Vault, VaultOption, NewVault and the read-only views.
//
// - deposit.go / withdraw.go / harvest.go / rebind.go
//   - The four state-changing operations. Each runs under the reentrancy guard
//     and is all-or-nothing.
//
// - oracle.go
//   - TotalManagedValue and IdleBalance, recomputed on every call.
//
// - custody.go / undo.go
//   - Asset and ledger moves that record their own compensation.
//
// - guard.go
//   - Non-blocking reentrancy guard.
//
// - authorization.go
//   - OwnerCredential, issued by AuthorizeOwner through ports.OwnerVerifier.
//
// - application.go / bootstrap.go
//   - Application and Bootstrap(ctx, configLoader, factory, opts...).
//
// Architectural notes
//   - Outward asset transfers (withdraw payout, fee payment) are the last
//     fallible step of their operation.
//   - Events are emitted only after an operation has committed; a failing
//     sink is logged and never rolls the operation back.
//   - mu is never held across a call into an adapter.
package app
