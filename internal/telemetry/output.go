// Package telemetry writes training output: per-generation CSV records,
// the configuration and champion used, and structured log lines.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/evolve"
	"github.com/vovakirdan/neuroflap/internal/policy"
)

// OutputManager handles experiment output with CSV logging.
type OutputManager struct {
	dir            string
	generationFile *os.File

	generationHeaderWritten bool
	bestFitness             float64
	bestWritten             bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled); a nil manager ignores every write.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}

	return &OutputManager{dir: dir, generationFile: f}, nil
}

// WriteConfig saves the evaluation configuration as YAML.
func (om *OutputManager) WriteConfig(cfg config.EvalConfig) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a generation record to generations.csv.
func (om *OutputManager) WriteGeneration(s evolve.Stats) error {
	if om == nil {
		return nil
	}

	records := []evolve.Stats{s}

	if !om.generationHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.generationFile); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		om.generationHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.generationFile); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
	}

	return nil
}

// WriteChampion saves a network as champion.json.
func (om *OutputManager) WriteChampion(nn *policy.Network) error {
	if om == nil || nn == nil {
		return nil
	}

	data, err := json.MarshalIndent(nn, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling champion: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "champion.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing champion.json: %w", err)
	}
	return nil
}

// Record implements evolve.Recorder. The champion file is rewritten only
// when a generation beats every earlier one.
func (om *OutputManager) Record(_ context.Context, s evolve.Stats, best *policy.Network) error {
	if om == nil {
		return nil
	}
	if err := om.WriteGeneration(s); err != nil {
		return err
	}
	if !om.bestWritten || s.Best > om.bestFitness {
		if err := om.WriteChampion(best); err != nil {
			return err
		}
		om.bestFitness, om.bestWritten = s.Best, true
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil || om.generationFile == nil {
		return nil
	}
	return om.generationFile.Close()
}
