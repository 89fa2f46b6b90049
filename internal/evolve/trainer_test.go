package evolve

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/flappy"
	"github.com/vovakirdan/neuroflap/internal/policy"
)

func testConfig() config.EvalConfig {
	cfg := config.DefaultEvalConfig()
	cfg.Run.MaxTicks = 300
	return cfg
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Population = 12
	opts.Elite = 3
	opts.Generations = 3
	return opts
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no population", func(o *Options) { o.Population = 0 }},
		{"no hidden", func(o *Options) { o.Hidden = 0 }},
		{"no elite", func(o *Options) { o.Elite = 0 }},
		{"elite above population", func(o *Options) { o.Elite = o.Population + 1 }},
		{"negative generations", func(o *Options) { o.Generations = -1 }},
		{"rate above one", func(o *Options) { o.MutationRate = 1.5 }},
		{"nan sigma", func(o *Options) { o.MutationSigma = math.NaN() }},
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options should be valid, got %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := DefaultOptions()
			tc.mutate(&o)
			if err := o.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	res := flappy.Result{
		Generation: 4,
		State:      flappy.StateExtinct,
		Agents:     []flappy.AgentResult{{Fitness: 1}, {Fitness: 3}, {Fitness: 2}},
	}
	s := Summarize(res)
	if s.Generation != 4 || s.State != "extinct" || s.Population != 3 {
		t.Errorf("Summarize() header = %+v", s)
	}
	if s.Best != 3 || s.BestIndex != 1 || s.Min != 1 || s.Mean != 2 || s.StdDev != 1 {
		t.Errorf("Summarize() = %+v, expected best 3 at 1, min 1, mean 2, stddev 1", s)
	}

	single := Summarize(flappy.Result{Agents: []flappy.AgentResult{{Fitness: 5}}})
	if single.Mean != 5 || single.StdDev != 0 {
		t.Errorf("single member stats = %+v, expected mean 5 and stddev 0", single)
	}
	if empty := Summarize(flappy.Result{}); empty.BestIndex != -1 {
		t.Errorf("empty BestIndex = %d, expected -1", empty.BestIndex)
	}
}

func TestTrainerRun(t *testing.T) {
	var recorded []int
	rec := RecorderFunc(func(_ context.Context, s Stats, best *policy.Network) error {
		if best == nil {
			t.Errorf("generation %d recorded without a network", s.Generation)
		}
		recorded = append(recorded, s.Generation)
		return nil
	})

	tr, err := NewTrainer(testConfig(), testOptions(), WithRecorder(rec))
	if err != nil {
		t.Fatalf("NewTrainer() failed: %v", err)
	}
	sum, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(sum.History) != 3 {
		t.Fatalf("History = %d generations, expected 3", len(sum.History))
	}
	best := math.Inf(-1)
	for i, s := range sum.History {
		if s.Generation != i+1 {
			t.Errorf("History[%d].Generation = %d, expected %d", i, s.Generation, i+1)
		}
		if s.Population != 12 {
			t.Errorf("History[%d].Population = %d, expected 12", i, s.Population)
		}
		best = math.Max(best, s.Best)
	}
	if sum.Champion == nil || sum.ChampionFitness != best {
		t.Errorf("champion fitness = %v, expected %v", sum.ChampionFitness, best)
	}
	if len(recorded) != 3 {
		t.Errorf("recorder saw generations %v", recorded)
	}

	if !tr.Done() {
		t.Error("Done() should be true after the last generation")
	}
	if _, err := tr.Next(); !errors.Is(err, ErrFinished) {
		t.Errorf("Next() after finishing = %v, expected ErrFinished", err)
	}
}

func TestTrainerDeterministic(t *testing.T) {
	run := func() []Stats {
		tr, err := NewTrainer(testConfig(), testOptions())
		if err != nil {
			t.Fatal(err)
		}
		sum, err := tr.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return sum.History
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("generation %d differs: %+v vs %+v", i+1, a[i], b[i])
		}
	}
}

func TestTrainerKeepsElite(t *testing.T) {
	tr, err := NewTrainer(testConfig(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	g, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	before := tr.Population()
	bestIdx, _ := res.Best()
	bestNet := before[bestIdx]

	if err := tr.Complete(context.Background(), res); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	after := tr.Population()
	if len(after) != len(before) {
		t.Fatalf("population size changed from %d to %d", len(before), len(after))
	}

	obs := flappy.Observation{320, 70, 130}
	if after[0].Forward(obs) != bestNet.Forward(obs) {
		t.Error("the fittest network should survive unchanged in slot 0")
	}
	if tr.Generation() != 2 {
		t.Errorf("Generation() = %d, expected 2", tr.Generation())
	}
}

func TestTrainerThreshold(t *testing.T) {
	opts := testOptions()
	opts.Generations = 10
	// Any agent that survives its first ticks clears this
	opts.Threshold = 0.05

	tr, err := NewTrainer(testConfig(), opts)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := tr.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.History) != 1 {
		t.Errorf("threshold run lasted %d generations, expected 1", len(sum.History))
	}
}

func TestTrainerProtocolErrors(t *testing.T) {
	tr, err := NewTrainer(testConfig(), testOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Complete(context.Background(), flappy.Result{Generation: 1}); err == nil {
		t.Error("Complete() without Next() should fail")
	}

	if _, err := tr.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Next(); err == nil {
		t.Error("Next() twice should fail")
	}
	if err := tr.Complete(context.Background(), flappy.Result{Generation: 7}); err == nil {
		t.Error("Complete() with a foreign result should fail")
	}
}

func TestTrainerRecorderError(t *testing.T) {
	errDisk := errors.New("disk full")
	rec := RecorderFunc(func(context.Context, Stats, *policy.Network) error { return errDisk })

	tr, err := NewTrainer(testConfig(), testOptions(), WithRecorder(rec))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Run(context.Background()); !errors.Is(err, errDisk) {
		t.Errorf("Run() error = %v, expected the recorder error", err)
	}
}

func TestTrainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Rewards.Gate = math.Inf(1)
	if _, err := NewTrainer(cfg, testOptions()); !errors.Is(err, flappy.ErrPrecondition) {
		t.Errorf("NewTrainer() error = %v, expected ErrPrecondition", err)
	}
}

func TestReplay(t *testing.T) {
	r := NewReplay(testConfig(), policy.Follower{}, 3, false)
	g, err := r.Next()
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Complete(context.Background(), res); err != nil {
		t.Fatal(err)
	}
	if len(r.Last().Agents) != 1 || r.Last().Score < 1 {
		t.Errorf("Last() = %+v, expected one member past a gate", r.Last())
	}
	if _, err := r.Next(); !errors.Is(err, ErrFinished) {
		t.Errorf("Next() after a single replay = %v, expected ErrFinished", err)
	}

	loop := NewReplay(testConfig(), policy.Constant(0), 3, true)
	for i := 1; i <= 2; i++ {
		g, err := loop.Next()
		if err != nil {
			t.Fatal(err)
		}
		if g.Number() != i {
			t.Errorf("replay run %d has number %d", i, g.Number())
		}
		res, _ := g.Run(context.Background())
		_ = loop.Complete(context.Background(), res)
	}
}
