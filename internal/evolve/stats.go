package evolve

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vovakirdan/neuroflap/internal/flappy"
)

// Stats summarizes one evaluated generation.
type Stats struct {
	Generation int     `csv:"generation"`
	State      string  `csv:"state"`
	Ticks      int     `csv:"ticks"`
	Score      int     `csv:"score"`
	Population int     `csv:"population"`
	Best       float64 `csv:"best"`
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"stddev"`
	Min        float64 `csv:"min"`
	Failures   int     `csv:"failures"`

	BestIndex int `csv:"-"` // Index of the fittest member, -1 when empty
}

// Summarize computes fitness statistics for a generation result.
func Summarize(res flappy.Result) Stats {
	s := Stats{
		Generation: res.Generation,
		State:      res.State.String(),
		Ticks:      res.Ticks,
		Score:      res.Score,
		Population: len(res.Agents),
		Failures:   len(res.Failures),
		BestIndex:  -1,
	}
	if len(res.Agents) == 0 {
		return s
	}

	fitness := make([]float64, len(res.Agents))
	for i, a := range res.Agents {
		fitness[i] = a.Fitness
	}
	s.BestIndex, s.Best = res.Best()
	s.Min = floats.Min(fitness)
	if len(fitness) == 1 {
		s.Mean = fitness[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(fitness, nil)
	}
	return s
}
