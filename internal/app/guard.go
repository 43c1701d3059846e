package app

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sufield/yieldvault/internal/domain"
)

// guard is the vault's non-reentrant execution lock.
//
// enter never blocks: while any guarded operation is in flight every other
// attempt fails with domain.ErrReentrancyViolation, including callbacks that
// reach the vault from inside a strategy call. The returned release func is
// idempotent and must run on every exit path (defer it).
type guard struct {
	held     atomic.Bool
	inFlight atomic.Value // string: name of the operation holding the guard
}

func (g *guard) enter(op string) (release func(), err error) {
	if !g.held.CompareAndSwap(false, true) {
		holder, _ := g.inFlight.Load().(string)
		return nil, fmt.Errorf("%s while %s in flight: %w", op, holder, domain.ErrReentrancyViolation)
	}
	g.inFlight.Store(op)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.inFlight.Store("")
			g.held.Store(false)
		})
	}, nil
}

// busy reports whether a guarded operation is in flight.
func (g *guard) busy() bool {
	return g.held.Load()
}
