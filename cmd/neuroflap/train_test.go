package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/neuroflap/internal/storage"
)

// setTrainFlags points every train flag at a small run inside dir.
func setTrainFlags(t *testing.T, dir string) {
	t.Helper()
	cfgPath := filepath.Join(dir, "eval.yaml")
	if err := os.WriteFile(cfgPath, []byte("run:\n  max_ticks: 200\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	flagConfig = cfgPath
	flagSeed = 0
	flagDBPath = filepath.Join(dir, "neuroflap.db")
	flagLogLevel = "error"
	flagGenerations = 2
	flagPopulation = 4
	flagHidden = 3
	flagElite = 1
	flagRate = 0.2
	flagSigma = 0.5
	flagThreshold = 0
	flagTrainSeed = 1
	flagWatch = false
	flagSpeed = 1
	flagOutput = filepath.Join(dir, "out")
	flagWorkers = 0
	flagRunID = "test-run"
	flagNoDB = false
}

func TestTrainRecordsRun(t *testing.T) {
	dir := t.TempDir()
	setTrainFlags(t, dir)

	if err := train(); err != nil {
		t.Fatalf("train() failed: %v", err)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	records, err := store.Generations("test-run")
	if err != nil {
		t.Fatalf("Generations() failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("recorded %d generations, expected 2", len(records))
	}
	for _, name := range []string{"generations.csv", "config.yaml", "champion.json"} {
		if _, err := os.Stat(filepath.Join(flagOutput, name)); err != nil {
			t.Errorf("output %s missing: %v", name, err)
		}
	}
}

func TestTrainReturnsErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func()
		wantErr string
	}{
		{"elite above population", func() { flagElite = 10 }, "elite"},
		{"bad log level", func() { flagLogLevel = "loud" }, "log level"},
		{"missing config", func() { flagConfig = "/nonexistent/eval.yaml" }, "config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			setTrainFlags(t, dir)
			tc.mutate()

			err := train()
			if err == nil {
				t.Fatal("train() should fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should mention %q", err, tc.wantErr)
			}

			// Nothing was recorded and the database is usable again
			store, err := storage.Open(flagDBPath)
			if err != nil {
				t.Fatalf("Open() after failed train failed: %v", err)
			}
			defer store.Close()
			runs, err := store.Runs()
			if err != nil || len(runs) != 0 {
				t.Errorf("Runs() = %v, %v; expected none", runs, err)
			}
		})
	}
}
