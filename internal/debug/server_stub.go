//go:build !debug

package debug

import "log/slog"

// Start reports that the debug server is unavailable when one was requested.
// Production builds never serve fault injection or vault introspection.
func Start(_ Introspector) {
	if Active.LocalDebugServer {
		slog.Warn("debug server requested but binary was built without -tags debug",
			"addr", Active.DebugServerAddr)
	}
}
