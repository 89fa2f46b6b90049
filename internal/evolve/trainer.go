// Package evolve runs the outer evolutionary loop: it hands populations of
// policy networks to the flappy engine, reads their fitness back and breeds
// the next generation by elitism and Gaussian mutation.
package evolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/flappy"
	"github.com/vovakirdan/neuroflap/internal/policy"
)

// ErrFinished is returned by Next once no further generation will be produced.
var ErrFinished = errors.New("evolve: finished")

// Options configures a Trainer.
type Options struct {
	Population    int
	Hidden        int
	Elite         int     // Members copied unchanged and used as parents
	Generations   int     // 0 runs until cancelled or the threshold is met
	MutationRate  float64 // Per-parameter mutation probability
	MutationSigma float64
	Threshold     float64 // Stop once a champion reaches this fitness; 0 disables
	Seed          int64   // Seeds population init and breeding
}

// DefaultOptions returns the default trainer options.
func DefaultOptions() Options {
	return Options{
		Population:    50,
		Hidden:        policy.DefaultHidden,
		Elite:         5,
		Generations:   50,
		MutationRate:  0.2,
		MutationSigma: 0.5,
		Seed:          1,
	}
}

// Validate reports invalid options.
func (o Options) Validate() error {
	if o.Population <= 0 {
		return fmt.Errorf("population must be > 0, got %d", o.Population)
	}
	if o.Hidden <= 0 {
		return fmt.Errorf("hidden width must be > 0, got %d", o.Hidden)
	}
	if o.Elite <= 0 || o.Elite > o.Population {
		return fmt.Errorf("elite count must be in [1, %d], got %d", o.Population, o.Elite)
	}
	if o.Generations < 0 {
		return fmt.Errorf("generations must be >= 0, got %d", o.Generations)
	}
	if o.MutationRate < 0 || o.MutationRate > 1 || math.IsNaN(o.MutationRate) {
		return fmt.Errorf("mutation rate must be in [0, 1], got %v", o.MutationRate)
	}
	if o.MutationSigma < 0 || math.IsNaN(o.MutationSigma) {
		return fmt.Errorf("mutation sigma must be >= 0, got %v", o.MutationSigma)
	}
	return nil
}

// Recorder receives every completed generation and its fittest network.
type Recorder interface {
	Record(ctx context.Context, s Stats, best *policy.Network) error
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, s Stats, best *policy.Network) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, s Stats, best *policy.Network) error {
	return f(ctx, s, best)
}

// Option customizes a Trainer.
type Option func(*Trainer)

// WithLogger sets the logger used for per-generation reports.
func WithLogger(l *log.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

// WithRecorder adds a recorder. Recorders run in the order added.
func WithRecorder(r Recorder) Option {
	return func(t *Trainer) {
		t.recorders = append(t.recorders, r)
	}
}

// WithSink attaches a snapshot sink to every generation.
func WithSink(s flappy.Sink) Option {
	return func(t *Trainer) {
		t.sink = s
	}
}

// Summary is the outcome of a training run.
type Summary struct {
	History            []Stats
	Champion           *policy.Network
	ChampionFitness    float64
	ChampionGeneration int
}

// Trainer evolves a population of networks one generation at a time.
// Next and Complete alternate; Run drives both until done.
type Trainer struct {
	cfg    config.EvalConfig
	opts   Options
	rng    *rand.Rand
	logger *log.Logger
	sink   flappy.Sink

	recorders []Recorder

	pop     []*policy.Network
	members []*flappy.Member
	gen     int
	pending bool
	done    bool

	history     []Stats
	champion    *policy.Network
	championFit float64
	championGen int
}

// NewTrainer creates a trainer with a random initial population.
func NewTrainer(cfg config.EvalConfig, opts Options, options ...Option) (*Trainer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", flappy.ErrPrecondition, err)
	}

	t := &Trainer{
		cfg:         cfg,
		opts:        opts,
		rng:         rand.New(rand.NewSource(opts.Seed)),
		logger:      log.New(io.Discard),
		gen:         1,
		championFit: math.Inf(-1),
	}
	for _, o := range options {
		o(t)
	}

	t.pop = make([]*policy.Network, opts.Population)
	for i := range t.pop {
		t.pop[i] = policy.NewNetwork(t.rng, opts.Hidden)
	}
	return t, nil
}

// Generation returns the number of the next generation to run.
func (t *Trainer) Generation() int {
	return t.gen
}

// Population returns the current networks. Callers must not modify them.
func (t *Trainer) Population() []*policy.Network {
	return t.pop
}

// Next prepares the current population for evaluation. Each generation runs
// on its own track, seeded from the configured seed plus the generation number.
func (t *Trainer) Next() (*flappy.Generation, error) {
	if t.done {
		return nil, ErrFinished
	}
	if t.pending {
		return nil, fmt.Errorf("evolve: generation %d is still running", t.gen)
	}

	t.members = make([]*flappy.Member, len(t.pop))
	for i, nn := range t.pop {
		t.members[i] = &flappy.Member{Controller: nn}
	}
	g, err := flappy.NewGeneration(t.cfg, t.gen, t.members,
		flappy.WithSeed(t.cfg.Run.Seed+int64(t.gen)),
		flappy.WithSink(t.sink),
	)
	if err != nil {
		return nil, err
	}
	t.pending = true
	return g, nil
}

// Complete records a finished generation and breeds the next population.
func (t *Trainer) Complete(ctx context.Context, res flappy.Result) error {
	if !t.pending {
		return errors.New("evolve: no generation in progress")
	}
	if res.Generation != t.gen || len(res.Agents) != len(t.pop) {
		return fmt.Errorf("evolve: result for generation %d (%d agents) does not match generation %d (%d members)",
			res.Generation, len(res.Agents), t.gen, len(t.pop))
	}
	t.pending = false

	s := Summarize(res)
	t.history = append(t.history, s)
	best := t.pop[s.BestIndex]
	if s.Best > t.championFit {
		t.champion, t.championFit, t.championGen = best.Clone(), s.Best, s.Generation
	}

	t.logger.Info("generation complete",
		"gen", s.Generation,
		"state", s.State,
		"ticks", s.Ticks,
		"score", s.Score,
		"best", fmt.Sprintf("%.2f", s.Best),
		"mean", fmt.Sprintf("%.2f", s.Mean),
		"stddev", fmt.Sprintf("%.2f", s.StdDev),
	)
	for _, f := range res.Failures {
		t.logger.Warn("controller failed", "gen", s.Generation, "agent", f.Agent, "tick", f.Tick, "err", f.Err)
	}

	for _, r := range t.recorders {
		if err := r.Record(ctx, s, best); err != nil {
			return fmt.Errorf("evolve: record generation %d: %w", s.Generation, err)
		}
	}

	if t.opts.Threshold > 0 && s.Best >= t.opts.Threshold {
		t.logger.Info("fitness threshold reached", "gen", s.Generation, "fitness", s.Best)
		t.done = true
	}
	if t.opts.Generations > 0 && t.gen >= t.opts.Generations {
		t.done = true
	}

	t.pop = t.breed(res)
	t.gen++
	return nil
}

// breed keeps the elite unchanged and fills the rest with mutated copies of
// parents drawn uniformly from the elite. Ties keep population order.
func (t *Trainer) breed(res flappy.Result) []*policy.Network {
	ranked := make([]int, len(t.pop))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return res.Agents[ranked[i]].Fitness > res.Agents[ranked[j]].Fitness
	})

	next := make([]*policy.Network, 0, len(t.pop))
	for _, idx := range ranked[:t.opts.Elite] {
		next = append(next, t.pop[idx].Clone())
	}
	for len(next) < len(t.pop) {
		parent := t.pop[ranked[t.rng.Intn(t.opts.Elite)]]
		child := parent.Clone()
		child.Mutate(t.rng, t.opts.MutationRate, t.opts.MutationSigma)
		next = append(next, child)
	}
	return next
}

// Run evaluates generations until the trainer finishes or ctx is cancelled.
func (t *Trainer) Run(ctx context.Context) (Summary, error) {
	for {
		g, err := t.Next()
		if errors.Is(err, ErrFinished) {
			return t.Summary(), nil
		}
		if err != nil {
			return t.Summary(), err
		}
		res, err := g.Run(ctx)
		if err != nil {
			return t.Summary(), err
		}
		if err := t.Complete(ctx, res); err != nil {
			return t.Summary(), err
		}
	}
}

// Done reports whether the trainer has finished.
func (t *Trainer) Done() bool {
	return t.done
}

// History returns the statistics of every completed generation.
func (t *Trainer) History() []Stats {
	return t.history
}

// Champion returns the fittest network seen so far, or nil before the first
// generation completes.
func (t *Trainer) Champion() (*policy.Network, float64, int) {
	return t.champion, t.championFit, t.championGen
}

// Summary returns the current training outcome.
func (t *Trainer) Summary() Summary {
	return Summary{
		History:            append([]Stats(nil), t.history...),
		Champion:           t.champion,
		ChampionFitness:    t.championFit,
		ChampionGeneration: t.championGen,
	}
}
