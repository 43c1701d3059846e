// Package metrics exports the vault's audit trail and read surface as
// Prometheus metrics.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

const namespace = "vault"

// Sink is a ports.EventSink that counts vault events.
type Sink struct {
	events *prometheus.CounterVec
	assets *prometheus.CounterVec
	shares *prometheus.CounterVec
	profit prometheus.Counter
	fees   prometheus.Counter
	last   *prometheus.GaugeVec
}

// NewSink registers the event counters on reg.
func NewSink(reg prometheus.Registerer) *Sink {
	f := promauto.With(reg)
	return &Sink{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Committed vault operations by event kind",
		}, []string{"kind"}),
		assets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_moved_total",
			Help:      "Base asset units moved by holders, by direction",
		}, []string{"direction"}),
		shares: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_total",
			Help:      "Shares minted and burned",
		}, []string{"op"}),
		profit: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "harvest_profit_total",
			Help:      "Profit measured across harvests, in base asset units",
		}),
		fees: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_paid_total",
			Help:      "Performance fees paid to the owner, in base asset units",
		}),
		last: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_event_timestamp_seconds",
			Help:      "Unix time of the most recent event, by kind",
		}, []string{"kind"}),
	}
}

// Publish implements ports.EventSink.
func (s *Sink) Publish(_ context.Context, evt domain.Event) error {
	kind := string(evt.Kind)
	s.events.WithLabelValues(kind).Inc()
	if !evt.At.IsZero() {
		s.last.WithLabelValues(kind).Set(float64(evt.At.UnixNano()) / float64(time.Second))
	}

	switch evt.Kind {
	case domain.EventDeposited:
		s.assets.WithLabelValues("in").Add(float64(evt.Assets))
		s.shares.WithLabelValues("mint").Add(float64(evt.Shares))
	case domain.EventWithdrawn:
		s.assets.WithLabelValues("out").Add(float64(evt.Assets))
		s.shares.WithLabelValues("burn").Add(float64(evt.Shares))
	case domain.EventHarvested:
		s.profit.Add(float64(evt.Profit))
		s.fees.Add(float64(evt.Fee))
	}
	return nil
}

// StateCollector samples the vault's read surface at scrape time.
type StateCollector struct {
	vault   ports.VaultReader
	logger  *slog.Logger
	timeout time.Duration

	managed   *prometheus.Desc
	idle      *prometheus.Desc
	supply    *prometheus.Desc
	principal *prometheus.Desc
	bound     *prometheus.Desc
	scrapeErr *prometheus.Desc
}

// NewStateCollector returns a collector reading vault on every scrape.
func NewStateCollector(vault ports.VaultReader, logger *slog.Logger) *StateCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateCollector{
		vault:     vault,
		logger:    logger,
		timeout:   5 * time.Second,
		managed:   prometheus.NewDesc(namespace+"_total_managed_value", "Idle balance plus strategy balance", nil, nil),
		idle:      prometheus.NewDesc(namespace+"_idle_balance", "Base asset held directly by the vault", nil, nil),
		supply:    prometheus.NewDesc(namespace+"_share_supply", "Shares outstanding", nil, nil),
		principal: prometheus.NewDesc(namespace+"_deposited_principal", "Net principal deposited", nil, nil),
		bound:     prometheus.NewDesc(namespace+"_strategy_bound", "1 when a strategy is bound", []string{"strategy"}, nil),
		scrapeErr: prometheus.NewDesc(namespace+"_state_scrape_error", "1 when balances could not be read", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.managed
	ch <- c.idle
	ch <- c.supply
	ch <- c.principal
	ch <- c.bound
	ch <- c.scrapeErr
}

// Collect implements prometheus.Collector.
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ch <- prometheus.MustNewConstMetric(c.supply, prometheus.GaugeValue, float64(c.vault.TotalShareSupply()))
	ch <- prometheus.MustNewConstMetric(c.principal, prometheus.GaugeValue, float64(c.vault.TotalDepositedPrincipal()))

	strategy := ""
	bound := 0.0
	if s, ok := c.vault.ActiveStrategy(); ok {
		strategy, bound = s.Account().String(), 1
	}
	ch <- prometheus.MustNewConstMetric(c.bound, prometheus.GaugeValue, bound, strategy)

	failed := 0.0
	managed, err := c.vault.TotalManagedValue(ctx)
	if err == nil {
		ch <- prometheus.MustNewConstMetric(c.managed, prometheus.GaugeValue, float64(managed))
	} else {
		failed = 1
		c.logger.Warn("metrics: read total managed value", "error", err)
	}
	idle, err := c.vault.IdleBalance(ctx)
	if err == nil {
		ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(idle))
	} else {
		failed = 1
		c.logger.Warn("metrics: read idle balance", "error", err)
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeErr, prometheus.GaugeValue, failed)
}

var (
	_ ports.EventSink      = (*Sink)(nil)
	_ prometheus.Collector = (*StateCollector)(nil)
)
