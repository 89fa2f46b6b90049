package evolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/neuroflap/internal/policy"
	"github.com/vovakirdan/neuroflap/internal/storage"
)

// ErrNoChampion is returned by LoadChampion when nothing has been saved yet.
var ErrNoChampion = errors.New("evolve: no champion stored")

// StoreRecorder saves every generation of a run and each network that beats
// the run's previous best.
type StoreRecorder struct {
	store *storage.Store
	runID string
	best  float64
	saved bool
}

// NewStoreRecorder creates a recorder writing under runID.
func NewStoreRecorder(store *storage.Store, runID string) *StoreRecorder {
	return &StoreRecorder{store: store, runID: runID}
}

// Record implements Recorder.
func (r *StoreRecorder) Record(_ context.Context, s Stats, best *policy.Network) error {
	_, err := r.store.SaveGeneration(storage.GenerationRecord{
		RunID:      r.runID,
		Generation: s.Generation,
		State:      s.State,
		Ticks:      s.Ticks,
		Score:      s.Score,
		Population: s.Population,
		Best:       s.Best,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
		Min:        s.Min,
		Failures:   s.Failures,
	})
	if err != nil {
		return err
	}

	if best == nil || (r.saved && s.Best <= r.best) {
		return nil
	}
	weights, err := json.Marshal(best)
	if err != nil {
		return fmt.Errorf("evolve: encode champion: %w", err)
	}
	if _, err := r.store.SaveChampion(storage.Champion{
		RunID:      r.runID,
		Generation: s.Generation,
		Fitness:    s.Best,
		Weights:    weights,
	}); err != nil {
		return err
	}
	r.best, r.saved = s.Best, true
	return nil
}

// LoadChampion decodes the best stored network of a run, or of every run
// when runID is empty.
func LoadChampion(store *storage.Store, runID string) (*policy.Network, *storage.Champion, error) {
	c, err := store.BestChampion(runID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, ErrNoChampion
	}
	var nn policy.Network
	if err := json.Unmarshal(c.Weights, &nn); err != nil {
		return nil, nil, fmt.Errorf("evolve: decode champion %d: %w", c.ID, err)
	}
	return &nn, c, nil
}
