package flappy

import (
	"fmt"
)

// Observation is the controller input:
// {vertical position, distance to the gap top, distance to the gap bottom}.
type Observation [3]float64

// Controller maps an observation to an action. An action above the
// configured threshold makes the agent jump.
//
// Decide may be called concurrently for different agents of the same tick
// and must not mutate state visible to the simulation.
type Controller interface {
	Decide(obs Observation) (float64, error)
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(obs Observation) (float64, error)

// Decide calls f(obs).
func (f ControllerFunc) Decide(obs Observation) (float64, error) {
	return f(obs)
}

// Member is one entry of the population handed in by the caller.
// Fitness is reset at generation start and holds the final value on return.
type Member struct {
	Controller Controller
	Fitness    float64
}

// Agent is the per-member record kept for the whole generation.
// Dead agents stay in place with Alive=false.
type Agent struct {
	Bird
	Alive     bool
	Ticks     int // Ticks survived (survival rewards received)
	Gates     int // Gate rewards received
	Penalties int // Death penalties received
	Failure   error

	member *Member
}

func (a *Agent) reward(v float64) {
	a.member.Fitness += v
}

// Fitness returns the member's current fitness.
func (a *Agent) Fitness() float64 {
	return a.member.Fitness
}

// decide calls the controller, turning a panic into an error.
func decide(c Controller, obs Observation) (action float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("controller panic: %v", r)
		}
	}()
	return c.Decide(obs)
}
