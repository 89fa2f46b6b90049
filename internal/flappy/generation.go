// Package flappy is the simulation and scoring engine: many agents fly
// through one shared, seeded track of gap pipes, each driven by its own
// controller, and every agent accumulates a scalar fitness.
package flappy

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/neuroflap/internal/config"
)

// State is the lifecycle of a generation.
type State int

const (
	StateInvoked   State = iota // Created, no tick run yet
	StateRunning                // At least one tick run, agents alive
	StateExtinct                // Every agent is dead
	StateScoreCap               // Score exceeded the configured cap
	StateTickLimit              // MaxTicks reached
	StateCancelled              // Context cancelled between ticks
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateInvoked:
		return "invoked"
	case StateRunning:
		return "running"
	case StateExtinct:
		return "extinct"
	case StateScoreCap:
		return "score_cap"
	case StateTickLimit:
		return "tick_limit"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no more ticks will run.
func (s State) Terminal() bool {
	return s >= StateExtinct
}

// Option customizes a Generation.
type Option func(*Generation)

// WithSink attaches a snapshot sink. A nil sink disables snapshots.
func WithSink(s Sink) Option {
	return func(g *Generation) {
		g.sink = s
	}
}

// WithSeed overrides the track seed from the configuration.
func WithSeed(seed int64) Option {
	return func(g *Generation) {
		g.seed = seed
	}
}

// WithWorkers overrides the number of concurrent controller calls per tick.
func WithWorkers(n int) Option {
	return func(g *Generation) {
		g.workers = n
	}
}

// AgentResult is the final record of one member.
type AgentResult struct {
	Fitness   float64
	Ticks     int
	Gates     int
	Penalties int
	Alive     bool
	Failure   error
}

// Result summarizes a generation.
type Result struct {
	Generation int
	State      State
	Ticks      int
	Score      int
	Agents     []AgentResult
	Failures   []*ControllerError
}

// Best returns the index and fitness of the fittest member, or -1 when empty.
// Ties keep the earliest member.
func (r Result) Best() (int, float64) {
	best, fitness := -1, math.Inf(-1)
	for i, a := range r.Agents {
		if a.Fitness > fitness {
			best, fitness = i, a.Fitness
		}
	}
	return best, fitness
}

// Generation evaluates one population on one track.
// It is not safe for concurrent use; Step runs one full tick at a time.
type Generation struct {
	cfg     config.EvalConfig
	number  int
	agents  []Agent
	track   *Track
	shapes  *Shapes
	sink    Sink
	seed    int64
	workers int

	state    State
	tick     int
	score    int
	alive    int
	failures []*ControllerError

	// Per-tick scratch, indexed like agents
	obs     []Observation
	actions []float64
	errs    []error
}

// NewGeneration prepares a generation. Every member's fitness is reset to 0.
// It fails with ErrPrecondition on an empty population, a nil controller or
// an invalid configuration.
func NewGeneration(cfg config.EvalConfig, number int, members []*Member, opts ...Option) (*Generation, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: empty population", ErrPrecondition)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	for i, m := range members {
		if m == nil || m.Controller == nil {
			return nil, fmt.Errorf("%w: member %d has no controller", ErrPrecondition, i)
		}
	}

	g := &Generation{
		cfg:     cfg,
		number:  number,
		agents:  make([]Agent, len(members)),
		shapes:  ShapesFor(cfg.Sprites),
		seed:    cfg.Run.Seed,
		workers: cfg.Run.Workers,
		state:   StateInvoked,
		alive:   len(members),
		obs:     make([]Observation, len(members)),
		actions: make([]float64, len(members)),
		errs:    make([]error, len(members)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for i, m := range members {
		m.Fitness = 0
		g.agents[i] = Agent{
			Bird:   NewBird(cfg.Playfield.AgentX, cfg.Playfield.AgentY, cfg.Physics),
			Alive:  true,
			member: m,
		}
	}
	g.track = NewTrack(g.seed, cfg.Obstacles, cfg.Sprites)

	return g, nil
}

// Evaluate runs a whole generation and returns its result.
// On return every member holds its final fitness.
func Evaluate(ctx context.Context, cfg config.EvalConfig, number int, members []*Member, opts ...Option) (Result, error) {
	g, err := NewGeneration(cfg, number, members, opts...)
	if err != nil {
		return Result{}, err
	}
	return g.Run(ctx)
}

// Run steps until a terminal state. ctx is checked between ticks only;
// on cancellation the partial result is returned with ctx's error.
func (g *Generation) Run(ctx context.Context) (Result, error) {
	for !g.state.Terminal() {
		if err := ctx.Err(); err != nil {
			g.state = StateCancelled
			return g.Result(), fmt.Errorf("generation %d cancelled at tick %d: %w", g.number, g.tick, err)
		}
		if err := g.Step(); err != nil {
			return g.Result(), err
		}
	}
	return g.Result(), nil
}

// Step runs one tick. It is a no-op once the generation is terminal.
func (g *Generation) Step() error {
	if g.state.Terminal() {
		return nil
	}
	if g.track.Len() == 0 {
		return fmt.Errorf("%w: obstacle track empty with %d agents alive at tick %d", ErrInvariant, g.alive, g.tick)
	}
	g.state = StateRunning
	g.tick++

	target := g.track.Pipes()[g.relevantPipe()]
	g.think(target)

	spawn, expired := g.collide()

	g.track.Advance()
	if spawn {
		g.score++
		g.track.Append()
		for i := range g.agents {
			if a := &g.agents[i]; a.Alive {
				a.reward(g.cfg.Rewards.Gate)
				a.Gates++
			}
		}
	}
	g.track.Remove(expired)

	g.checkBounds()

	switch {
	case g.score > g.cfg.Run.ScoreCap:
		g.state = StateScoreCap
	case g.alive == 0:
		g.state = StateExtinct
	case g.cfg.Run.MaxTicks > 0 && g.tick >= g.cfg.Run.MaxTicks:
		g.state = StateTickLimit
	}

	if g.sink != nil {
		g.sink.Observe(g.Snapshot())
	}
	return nil
}

// relevantPipe picks the pipe agents observe: the first one, or the second
// once the first live agent is past the first pipe's right edge.
func (g *Generation) relevantPipe() int {
	pipes := g.track.Pipes()
	if len(pipes) < 2 {
		return 0
	}
	for i := range g.agents {
		if a := &g.agents[i]; a.Alive {
			if a.X > pipes[0].X+g.track.Width() {
				return 1
			}
			return 0
		}
	}
	return 0
}

// think advances every live agent, grants the survival reward and applies
// its controller's decision. Controller calls only read shared state, so
// they may run concurrently; everything they feed into is applied afterwards
// in agent order.
func (g *Generation) think(target Pipe) {
	for i := range g.agents {
		a := &g.agents[i]
		if !a.Alive {
			continue
		}
		a.Advance()
		a.reward(g.cfg.Rewards.Survive)
		a.Ticks++
		g.obs[i] = Observation{
			a.Y,
			math.Abs(a.Y - float64(target.GapTop)),
			math.Abs(a.Y - float64(target.GapBottom)),
		}
	}

	g.decideAll()

	for i := range g.agents {
		a := &g.agents[i]
		if !a.Alive {
			continue
		}
		if err := g.errs[i]; err != nil {
			ce := &ControllerError{Agent: i, Tick: g.tick, Err: err}
			g.failures = append(g.failures, ce)
			a.Failure = ce
			g.kill(a)
			continue
		}
		if g.actions[i] > g.cfg.Rewards.ActionThreshold {
			a.Jump()
		}
	}
}

// decideAll fills actions and errs for every live agent.
func (g *Generation) decideAll() {
	if g.workers <= 1 {
		for i := range g.agents {
			if a := &g.agents[i]; a.Alive {
				g.actions[i], g.errs[i] = decide(a.member.Controller, g.obs[i])
			}
		}
		return
	}

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i := range g.agents {
		a := &g.agents[i]
		if !a.Alive {
			continue
		}
		eg.Go(func() error {
			g.actions[i], g.errs[i] = decide(a.member.Controller, g.obs[i])
			return nil
		})
	}
	//nolint:errcheck // Workers never return errors; failures are per agent
	eg.Wait()
}

// collide checks every (pipe, agent) pair in pipe order then agent order.
// Each overlapping piece costs one death penalty. It reports whether any
// pipe was passed for the first time and which pipes have left the field.
func (g *Generation) collide() (spawn bool, expired []int) {
	pipes := g.track.Pipes()
	for pi := range pipes {
		p := &pipes[pi]
		for i := range g.agents {
			a := &g.agents[i]
			if !a.Alive {
				continue
			}
			// One penalty per overlapping piece, so touching both pieces costs two.
			if hits := g.shapes.Collide(&a.Bird, p); hits > 0 {
				for range hits {
					a.reward(-g.cfg.Rewards.Death)
					a.Penalties++
				}
				a.Alive = false
				g.alive--
			}
			if !p.Passed && p.X <= a.X {
				p.Passed = true
				spawn = true
			}
		}
		if g.track.Expired(*p) {
			expired = append(expired, pi)
		}
	}
	return spawn, expired
}

// checkBounds kills agents that hit the ground or left through the ceiling.
func (g *Generation) checkBounds() {
	pf := g.cfg.Playfield
	for i := range g.agents {
		a := &g.agents[i]
		if !a.Alive {
			continue
		}
		if a.Y+pf.GroundClearance >= pf.Ground || a.Y < pf.Ceiling {
			g.kill(a)
		}
	}
}

func (g *Generation) kill(a *Agent) {
	a.reward(-g.cfg.Rewards.Death)
	a.Penalties++
	a.Alive = false
	g.alive--
}

// State returns the current lifecycle state.
func (g *Generation) State() State {
	return g.state
}

// Number returns the generation number given by the caller.
func (g *Generation) Number() int {
	return g.number
}

// Tick returns the number of ticks run so far.
func (g *Generation) Tick() int {
	return g.tick
}

// Score returns the number of gates passed so far.
func (g *Generation) Score() int {
	return g.score
}

// Alive returns the number of live agents.
func (g *Generation) Alive() int {
	return g.alive
}

// Agents returns the agent records. Callers must treat them as read-only.
func (g *Generation) Agents() []Agent {
	return g.agents
}

// Snapshot copies the current state for renderers and loggers.
func (g *Generation) Snapshot() Snapshot {
	s := Snapshot{
		Generation: g.number,
		Tick:       g.tick,
		Score:      g.score,
		Alive:      g.alive,
		State:      g.state,
		Agents:     make([]AgentView, len(g.agents)),
		Pipes:      make([]PipeView, g.track.Len()),
	}
	for i := range g.agents {
		a := &g.agents[i]
		s.Agents[i] = AgentView{X: a.X, Y: a.Y, Tilt: a.Tilt, Fitness: a.Fitness(), Alive: a.Alive}
	}
	for i, p := range g.track.Pipes() {
		s.Pipes[i] = PipeView{X: p.X, GapTop: p.GapTop, GapBottom: p.GapBottom, Passed: p.Passed}
	}
	return s
}

// Result summarizes the generation so far.
func (g *Generation) Result() Result {
	r := Result{
		Generation: g.number,
		State:      g.state,
		Ticks:      g.tick,
		Score:      g.score,
		Agents:     make([]AgentResult, len(g.agents)),
		Failures:   append([]*ControllerError(nil), g.failures...),
	}
	for i := range g.agents {
		a := &g.agents[i]
		r.Agents[i] = AgentResult{
			Fitness:   a.Fitness(),
			Ticks:     a.Ticks,
			Gates:     a.Gates,
			Penalties: a.Penalties,
			Alive:     a.Alive,
			Failure:   a.Failure,
		}
	}
	return r
}
