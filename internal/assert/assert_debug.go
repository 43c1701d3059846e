//go:build debug

package assert

import "fmt"

// Invariant checks an invariant condition and panics if violated in debug builds.
// Use it for internal sanity checks after a state transition, not for
// validating external input.
//
// Example:
//
//	assert.Invariant(ledger.SumBalances() == ledger.TotalSupply(),
//		"sum of holder shares must equal total share supply")
func Invariant(ok bool, msg string) {
	if !ok {
		panic(fmt.Sprintf("INVARIANT VIOLATION: %s", msg))
	}
}

// Invariantf is Invariant with a formatted message. The message is only
// formatted when the check fails.
func Invariantf(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("INVARIANT VIOLATION: "+format, args...))
	}
}
