package app

import "github.com/sufield/yieldvault/internal/ports"

// binding is the vault's optional strategy reference. The zero value is unbound;
// a bound binding never holds a nil strategy.
type binding struct {
	strategy ports.Strategy
	bound    bool
}

func unbound() binding {
	return binding{}
}

// bindTo returns a binding to s, or an unbound binding when s is nil.
func bindTo(s ports.Strategy) binding {
	if s == nil {
		return unbound()
	}
	return binding{strategy: s, bound: true}
}

func (b binding) get() (ports.Strategy, bool) {
	return b.strategy, b.bound
}
