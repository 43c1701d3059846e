package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sufield/yieldvault/internal/adapters/outbound/inmemory"
	"github.com/sufield/yieldvault/internal/config"
	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

type simulateOptions struct {
	rateBps     domain.Amount
	policy      string
	journalPath string
	verbose     bool
}

func simulateCommand(ctx context.Context, args []string, out io.Writer) error {
	cmd := &Command{Name: "simulate", Description: "Drive a scripted vault scenario", Usage: "vaultd simulate [flags]"}
	fs := cmd.NewFlagSet(out)
	rate := fs.Uint64("rate-bps", 500, "Interest credited by each market accrual, in basis points")
	policy := fs.String("policy", "recall", "Fee shortfall policy: recall or idle_only")
	journalPath := fs.String("journal", "", "Persist events to this journal directory (default: in memory)")
	verbose := fs.Bool("verbose", false, "Log every vault operation to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return runSimulation(ctx, out, simulateOptions{
		rateBps:     domain.Amount(*rate),
		policy:      *policy,
		journalPath: *journalPath,
		verbose:     *verbose,
	})
}

// simulation is the scenario state: the runtime plus the owner identity.
type simulation struct {
	*runtime
	cfg   *ports.Config
	out   io.Writer
	table *TableWriter
}

func runSimulation(ctx context.Context, out io.Writer, opts simulateOptions) error {
	policy, err := domain.ParseFeeShortfallPolicy(opts.policy)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	loader := inmemory.NewInMemoryConfig(func(c *ports.Config) {
		c.FeeShortfallPolicy = policy
	})
	cfg, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	jcfg := config.JournalSection{Path: opts.journalPath, InMemory: opts.journalPath == ""}
	rt, err := newRuntime(ctx, loader, jcfg, logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	sim := &simulation{
		runtime: rt,
		cfg:     cfg,
		out:     out,
		table:   NewTableWriter([]string{"step", "idle", "strategy", "managed", "supply", "alice", "bob"}),
	}
	runErr := sim.run(ctx, opts.rateBps)
	closeErr := rt.Close()
	return errors.Join(runErr, closeErr)
}

func (s *simulation) run(ctx context.Context, rateBps domain.Amount) error {
	vault := s.app.Vault
	tok := s.factory.Token()
	s.record(ctx, "bootstrap")

	for _, step := range []struct {
		who    domain.Account
		amount domain.Amount
	}{{"alice", 500_000}, {"bob", 300_000}} {
		if err := tok.Approve(ctx, step.who, vault.Account(), step.amount); err != nil {
			return err
		}
		if _, err := vault.Deposit(ctx, step.who, step.amount); err != nil {
			return fmt.Errorf("%s deposit: %w", step.who, err)
		}
		s.record(ctx, fmt.Sprintf("%s deposits %s", step.who, step.amount))
	}

	if _, err := s.factory.RebasingMarket().Accrue(ctx, rateBps); err != nil {
		return fmt.Errorf("accrue: %w", err)
	}
	s.record(ctx, fmt.Sprintf("market accrues %s bps", rateBps))

	report, err := vault.Harvest(ctx)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}
	s.record(ctx, fmt.Sprintf("harvest profit %s fee %s", report.Profit, report.FeePaid))

	half := vault.BalanceOf("alice") / 2
	if _, err := vault.Withdraw(ctx, "alice", half); err != nil {
		return fmt.Errorf("alice withdraw: %w", err)
	}
	s.record(ctx, fmt.Sprintf("alice redeems %s shares", half))

	next, err := s.factory.CreateStrategy(ctx, ports.StrategyConfig{
		Kind:          ports.StrategyExchangeRate,
		Account:       "strategy-exchange-rate",
		MarketAccount: "market-exchange-rate",
	}, vault.Account(), tok)
	if err != nil {
		return err
	}
	cred, err := vault.AuthorizeOwner(ctx, s.cfg.OwnerID)
	if err != nil {
		return err
	}
	if err := vault.RebindStrategy(ctx, cred, next); err != nil {
		return fmt.Errorf("rebind: %w", err)
	}
	s.record(ctx, "rebind to exchange-rate")

	managed, err := vault.TotalManagedValue(ctx)
	if err != nil {
		return err
	}
	interest, err := domain.MulDiv(managed, rateBps, domain.BpsDenominator)
	if err != nil {
		return err
	}
	if err := s.factory.ExchangeRateMarket().AddPendingInterest(interest); err != nil {
		return err
	}
	report, err = vault.Harvest(ctx)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}
	s.record(ctx, fmt.Sprintf("harvest profit %s fee %s", report.Profit, report.FeePaid))

	for _, who := range []domain.Account{"bob", "alice"} {
		shares := vault.BalanceOf(who)
		paid, err := vault.Withdraw(ctx, who, shares)
		if err != nil {
			return fmt.Errorf("%s withdraw: %w", who, err)
		}
		s.record(ctx, fmt.Sprintf("%s exits with %s", who, paid))
	}

	s.table.Print(s.out)
	return s.printSummary(ctx)
}

// record appends one row of balances after a step.
func (s *simulation) record(ctx context.Context, step string) {
	snap, err := s.app.Vault.Snapshot(ctx)
	if err != nil {
		s.table.AddRow(step, "error: "+err.Error())
		return
	}
	s.table.AddRow(step,
		snap.IdleBalance.String(),
		snap.StrategyBalance.String(),
		snap.TotalManagedValue.String(),
		snap.TotalShareSupply.String(),
		s.app.Vault.BalanceOf("alice").String(),
		s.app.Vault.BalanceOf("bob").String(),
	)
}

func (s *simulation) printSummary(ctx context.Context) error {
	tok := s.factory.Token()
	fmt.Fprintln(s.out)
	for _, who := range []domain.Account{"alice", "bob", s.cfg.OwnerAccount} {
		bal, err := tok.BalanceOf(ctx, who)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%-8s holds %s %s\n", who, bal, tok.Symbol())
	}

	fmt.Fprintln(s.out, "\nevents:")
	evts, err := s.journal.Recent(ctx, 100)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	for _, e := range evts {
		fmt.Fprintf(s.out, "  #%d %s\n", e.Seq, e.Kind)
	}
	return nil
}
