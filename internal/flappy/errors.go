package flappy

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition reports an evaluation that cannot start: an empty
	// population, a missing controller or an invalid configuration.
	ErrPrecondition = errors.New("flappy: precondition violated")

	// ErrInvariant reports internal state that should be unreachable,
	// such as an empty obstacle track while agents are still alive.
	ErrInvariant = errors.New("flappy: invariant violated")
)

// ControllerError records a controller that failed during a tick.
// The owning agent dies with the death penalty; the generation continues.
type ControllerError struct {
	Agent int // Index into the population
	Tick  int
	Err   error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("flappy: controller for agent %d failed at tick %d: %v", e.Agent, e.Tick, e.Err)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}
