package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sufield/yieldvault/internal/adapters/inbound/httpapi"
	"github.com/sufield/yieldvault/internal/app"
	"github.com/sufield/yieldvault/internal/config"
	"github.com/sufield/yieldvault/internal/debug"
)

func serveCommand(ctx context.Context, args []string, out io.Writer) error {
	cmd := &Command{Name: "serve", Description: "Run the vault and serve the read API", Usage: "vaultd serve [flags]"}
	fs := cmd.NewFlagSet(out)
	configPath := fs.String("config", "", "Path to vaultd.yaml (default: built-in simulated deployment)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	debug.Init()
	debug.InitLogger()

	rt, err := newRuntime(ctx, cfg.Loader(), cfg.Journal, logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("close runtime", "error", err)
		}
	}()

	debug.Start(app.NewIntrospector(rt.app.Vault, rt.recorder))

	srv, err := httpapi.NewServer(httpapi.ServerConfig{
		Address:           cfg.HTTP.ListenAddr,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		Logger:            logger,
	}, rt.handler())
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "vault %s (%s) serving on http://%s\n",
		rt.app.Vault.Account(), rt.app.Vault.Asset(), srv.Addr())

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
