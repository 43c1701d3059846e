package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sufield/yieldvault/internal/adapters/inbound/httpapi"
	"github.com/sufield/yieldvault/internal/adapters/outbound/compose"
	"github.com/sufield/yieldvault/internal/adapters/outbound/events"
	"github.com/sufield/yieldvault/internal/adapters/outbound/journal"
	"github.com/sufield/yieldvault/internal/adapters/outbound/metrics"
	"github.com/sufield/yieldvault/internal/app"
	"github.com/sufield/yieldvault/internal/config"
	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/ports"
)

// runtime is a bootstrapped vault with its event sinks and metrics registry.
type runtime struct {
	app      *app.Application
	factory  *compose.SimulatedAdapterFactory
	recorder *events.Recorder
	journal  *journal.Journal
	registry *prometheus.Registry
	logger   *slog.Logger
}

// newRuntime opens the journal, builds the sink fan-out and bootstraps the vault.
func newRuntime(ctx context.Context, loader ports.ConfigLoader, jcfg config.JournalSection, logger *slog.Logger) (*runtime, error) {
	var (
		j   *journal.Journal
		err error
	)
	if jcfg.InMemory || jcfg.Path == "" {
		j, err = journal.OpenInMemory()
	} else {
		j, err = journal.Open(journal.Config{Path: jcfg.Path, SyncWrites: jcfg.SyncWrites, Logger: logger})
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := events.NewRecorder(256)
	sinks := events.Fanout{
		events.NewLogSink(logger),
		metrics.NewSink(reg),
		recorder,
		j,
	}

	factory := compose.NewSimulatedAdapterFactory(compose.WithFaults(debug.Faults))
	application, err := app.Bootstrap(ctx, loader, factory,
		app.WithLogger(logger),
		app.WithEventSink(sinks),
	)
	if err != nil {
		return nil, errors.Join(err, j.Close())
	}
	reg.MustRegister(metrics.NewStateCollector(application.Vault, logger))

	return &runtime{
		app:      application,
		factory:  factory,
		recorder: recorder,
		journal:  j,
		registry: reg,
		logger:   logger,
	}, nil
}

// handler builds the read API with /metrics mounted.
func (r *runtime) handler() http.Handler {
	return httpapi.NewRouter(r.app.Vault,
		httpapi.WithDecimals(r.app.Config.Asset.Decimals),
		httpapi.WithLogger(r.logger),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})),
	)
}

// Close flushes and closes every sink, the journal included.
func (r *runtime) Close() error {
	return r.app.Close()
}
