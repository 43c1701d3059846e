//go:build !debug

package assert

// Invariant is a no-op in production builds.
func Invariant(ok bool, msg string) {}

// Invariantf is a no-op in production builds.
func Invariantf(ok bool, format string, args ...any) {}
