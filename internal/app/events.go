package app

import (
	"context"

	"github.com/sufield/yieldvault/internal/domain"
)

// emit stamps and publishes an event for an operation that has already committed.
// Publication failures are logged; they cannot undo the operation. The caller's
// cancellation is dropped: a committed operation is always published.
func (v *Vault) emit(ctx context.Context, evt domain.Event) {
	v.mu.Lock()
	v.seq++
	evt.Seq = v.seq
	v.mu.Unlock()

	evt.ID = v.newID()
	evt.At = v.now()

	if v.events == nil {
		return
	}
	if err := v.events.Publish(context.WithoutCancel(ctx), evt); err != nil {
		v.logger.Error("event publish failed",
			"kind", evt.Kind,
			"seq", evt.Seq,
			"id", evt.ID,
			"error", err)
	}
}
