package evolve

import (
	"context"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// Replay produces one-member generations for a fixed controller, typically a
// saved champion. With loop set it restarts on a fresh track after each run.
type Replay struct {
	cfg        config.EvalConfig
	controller flappy.Controller
	seed       int64
	loop       bool

	runs int
	last flappy.Result
	done bool
}

// NewReplay creates a replay of c starting from seed.
func NewReplay(cfg config.EvalConfig, c flappy.Controller, seed int64, loop bool) *Replay {
	return &Replay{cfg: cfg, controller: c, seed: seed, loop: loop}
}

// Next returns a new generation for the controller.
func (r *Replay) Next() (*flappy.Generation, error) {
	if r.done {
		return nil, ErrFinished
	}
	members := []*flappy.Member{{Controller: r.controller}}
	return flappy.NewGeneration(r.cfg, r.runs+1, members, flappy.WithSeed(r.seed+int64(r.runs)))
}

// Complete stores the result and ends the replay unless looping.
func (r *Replay) Complete(_ context.Context, res flappy.Result) error {
	r.last = res
	r.runs++
	if !r.loop {
		r.done = true
	}
	return nil
}

// Last returns the most recent result.
func (r *Replay) Last() flappy.Result {
	return r.last
}
