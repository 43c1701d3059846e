package debug

import (
	"os"
	"strconv"
)

// Config holds debug mode configuration
type Config struct {
	// Enabled is the global debug on/off switch
	Enabled bool

	// LocalDebugServer enables the localhost fault-injection server
	LocalDebugServer bool

	// DebugServerAddr is the address for the debug HTTP server
	DebugServerAddr string
}

// Active is the global debug configuration
var Active Config

// DefaultServerAddr is where the debug server listens unless VAULT_DEBUG_ADDR is set.
const DefaultServerAddr = "127.0.0.1:6061"

// Init initializes debug configuration from the VAULT_DEBUG* environment variables.
func Init() {
	Active = configFrom(os.Getenv)
}

// configFrom builds a Config from getenv. Asking for the debug server turns
// debug mode on.
func configFrom(getenv func(string) string) Config {
	cfg := Config{
		Enabled:          parseBool(getenv("VAULT_DEBUG"), false),
		LocalDebugServer: parseBool(getenv("VAULT_DEBUG_SERVER"), false),
		DebugServerAddr:  DefaultServerAddr,
	}
	if addr := getenv("VAULT_DEBUG_ADDR"); addr != "" {
		cfg.DebugServerAddr = addr
	}
	if cfg.LocalDebugServer {
		cfg.Enabled = true
	}
	return cfg
}

func parseBool(s string, defaultVal bool) bool {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// IsEnabled returns whether debug mode is enabled
func IsEnabled() bool {
	return Active.Enabled
}
