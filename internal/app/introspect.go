package app

import (
	"context"
	"fmt"

	"github.com/sufield/yieldvault/internal/debug"
	"github.com/sufield/yieldvault/internal/domain"
)

// EventSource lists recently published events, oldest first.
type EventSource interface {
	Events() []domain.Event
}

// Introspector exposes a vault to the debug server.
type Introspector struct {
	vault  *Vault
	recent EventSource
	limit  int
}

// NewIntrospector returns a debug.Introspector over vault. recent may be nil.
func NewIntrospector(vault *Vault, recent EventSource) *Introspector {
	return &Introspector{vault: vault, recent: recent, limit: 20}
}

// SnapshotData implements debug.Introspector.
func (i *Introspector) SnapshotData(ctx context.Context) debug.Snapshot {
	out := debug.Snapshot{Mode: "standard"}
	if debug.IsEnabled() {
		out.Mode = "debug"
	}
	if i == nil || i.vault == nil {
		out.Error = "vault not initialized"
		return out
	}

	out.Vault = i.vault.Account().String()
	out.Asset = i.vault.Asset()
	out.TotalShareSupply = uint64(i.vault.TotalShareSupply())

	snap, err := i.vault.Snapshot(ctx)
	if err != nil {
		out.Error = err.Error()
	} else {
		out.Strategy = snap.Strategy.String()
		out.IdleBalance = uint64(snap.IdleBalance)
		out.StrategyBalance = uint64(snap.StrategyBalance)
		out.TotalManagedValue = uint64(snap.TotalManagedValue)
		out.TotalShareSupply = uint64(snap.TotalShareSupply)
		out.OperationInFlight = snap.OperationInFlight
	}

	if i.recent != nil {
		events := i.recent.Events()
		if len(events) > i.limit {
			events = events[len(events)-i.limit:]
		}
		out.RecentEvents = make([]debug.EventView, 0, len(events))
		for _, e := range events {
			out.RecentEvents = append(out.RecentEvents, debug.EventView{
				Seq:    e.Seq,
				Kind:   string(e.Kind),
				Detail: describe(e),
			})
		}
	}
	return out
}

func describe(e domain.Event) string {
	switch e.Kind {
	case domain.EventDeposited:
		return fmt.Sprintf("%s deposited %s for %s shares", e.Account, e.Assets, e.Shares)
	case domain.EventWithdrawn:
		return fmt.Sprintf("%s redeemed %s shares for %s", e.Account, e.Shares, e.Assets)
	case domain.EventHarvested:
		return fmt.Sprintf("profit %s, fee %s", e.Profit, e.Fee)
	case domain.EventStrategyUpdated:
		if e.Strategy.IsZero() {
			return "strategy unbound"
		}
		return "strategy bound to " + e.Strategy.String()
	default:
		return string(e.Kind)
	}
}

var _ debug.Introspector = (*Introspector)(nil)
