// Command vaultd runs a pooled-deposit yield vault against simulated markets
// and serves its read surface over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := NewCommandRegistry(VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	registerCommands(registry)

	if err := registry.Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func registerCommands(r *CommandRegistry) {
	r.Register(&Command{
		Name:        "serve",
		Description: "Run the vault and serve the read API",
		Usage:       "vaultd serve [--config vaultd.yaml]",
		Examples: []string{
			"vaultd serve",
			"vaultd serve --config /etc/vaultd/vaultd.yaml",
			"VAULT_DEBUG_SERVER=1 vaultd serve",
		},
		Run: serveCommand,
	})

	r.Register(&Command{
		Name:        "simulate",
		Description: "Drive a scripted deposit/harvest/rebind/withdraw scenario",
		Usage:       "vaultd simulate [flags]",
		Examples: []string{
			"vaultd simulate",
			"vaultd simulate --rate-bps 250 --policy idle_only",
			"vaultd simulate --journal ./sim-journal",
		},
		Run: simulateCommand,
	})

	r.Register(&Command{
		Name:        "validate",
		Description: "Validate a vaultd configuration file",
		Usage:       "vaultd validate <config-file>",
		Examples:    []string{"vaultd validate vaultd.yaml"},
		Run:         validateCommand,
	})

	r.Register(&Command{
		Name:        "journal",
		Description: "Print events stored in a journal directory",
		Usage:       "vaultd journal <path> [--last N]",
		Examples: []string{
			"vaultd journal /var/lib/vaultd/journal",
			"vaultd journal ./sim-journal --last 5",
		},
		Run: journalCommand,
	})

	r.Register(&Command{
		Name:        "version",
		Description: "Show version information",
		Usage:       "vaultd version",
		Run:         r.versionCommand,
	})
}
