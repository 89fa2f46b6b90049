package policy

import (
	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// Follower jumps whenever the bird is farther from the gap top than from
// the gap bottom, which keeps it hovering around the gap centre.
type Follower struct{}

// Decide implements flappy.Controller.
func (Follower) Decide(obs flappy.Observation) (float64, error) {
	if obs[1] > obs[2] {
		return 1, nil
	}
	return 0, nil
}

// Constant always returns the same action.
type Constant float64

// Decide implements flappy.Controller.
func (c Constant) Decide(flappy.Observation) (float64, error) {
	return float64(c), nil
}
