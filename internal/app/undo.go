package app

import (
	"context"
	"errors"
	"fmt"
)

// undoLog records compensating steps for the effects an operation has already
// applied. On failure the steps run newest first; a step that fails does not
// stop the remaining ones.
type undoLog struct {
	steps []undoStep
}

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

func (u *undoLog) push(name string, fn func(ctx context.Context) error) {
	u.steps = append(u.steps, undoStep{name: name, fn: fn})
}

func (u *undoLog) len() int {
	return len(u.steps)
}

// unwind runs every recorded step in reverse order and returns the joined
// failures of the steps that could not be compensated.
//
// Compensation runs on a context detached from the caller's cancellation:
// a cancelled request must still be rolled back.
func (u *undoLog) unwind(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(u.steps) - 1; i >= 0; i-- {
		step := u.steps[i]
		if err := step.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	u.steps = nil
	return errors.Join(errs...)
}
