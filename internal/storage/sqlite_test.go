package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreGenerations(t *testing.T) {
	store := openTestStore(t)

	for gen := 3; gen >= 1; gen-- {
		rec := GenerationRecord{
			RunID:      "run-a",
			Generation: gen,
			State:      "extinct",
			Ticks:      100 * gen,
			Score:      gen,
			Population: 50,
			Best:       float64(gen) * 10,
			Mean:       2.5,
			StdDev:     1.25,
			Min:        -0.9,
			Failures:   1,
		}
		if _, err := store.SaveGeneration(rec); err != nil {
			t.Fatalf("SaveGeneration() failed: %v", err)
		}
	}
	if _, err := store.SaveGeneration(GenerationRecord{RunID: "run-b", Generation: 1, State: "score_cap"}); err != nil {
		t.Fatalf("SaveGeneration() failed: %v", err)
	}

	records, err := store.Generations("run-a")
	if err != nil {
		t.Fatalf("Generations() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 generations, got %d", len(records))
	}
	for i, r := range records {
		if r.Generation != i+1 {
			t.Errorf("records[%d].Generation = %d, expected %d", i, r.Generation, i+1)
		}
	}
	last := records[2]
	if last.Ticks != 300 || last.Best != 30 || last.Mean != 2.5 || last.StdDev != 1.25 || last.Min != -0.9 || last.Failures != 1 {
		t.Errorf("round trip mismatch: %+v", last)
	}
	if last.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestStoreDuplicateGeneration(t *testing.T) {
	store := openTestStore(t)
	rec := GenerationRecord{RunID: "run", Generation: 1, State: "extinct"}
	if _, err := store.SaveGeneration(rec); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveGeneration(rec); err == nil {
		t.Error("SaveGeneration() of a duplicate generation should fail")
	}
}

func TestStoreChampions(t *testing.T) {
	store := openTestStore(t)

	none, err := store.BestChampion("")
	if err != nil {
		t.Fatalf("BestChampion() failed: %v", err)
	}
	if none != nil {
		t.Errorf("Expected no champion, got %+v", none)
	}

	champs := []Champion{
		{RunID: "run-a", Generation: 1, Fitness: 12.5, Weights: []byte(`{"hidden":1}`)},
		{RunID: "run-a", Generation: 2, Fitness: 40, Weights: []byte(`{"hidden":2}`)},
		{RunID: "run-b", Generation: 1, Fitness: 90, Weights: []byte(`{"hidden":3}`)},
		{RunID: "run-b", Generation: 2, Fitness: 90, Weights: []byte(`{"hidden":4}`)},
	}
	for _, c := range champs {
		if _, err := store.SaveChampion(c); err != nil {
			t.Fatalf("SaveChampion() failed: %v", err)
		}
	}

	tests := []struct {
		runID   string
		fitness float64
		weights string
	}{
		{"run-a", 40, `{"hidden":2}`},
		{"run-b", 90, `{"hidden":3}`},
		{"", 90, `{"hidden":3}`},
	}
	for _, tc := range tests {
		c, err := store.BestChampion(tc.runID)
		if err != nil {
			t.Fatalf("BestChampion(%q) failed: %v", tc.runID, err)
		}
		if c == nil || c.Fitness != tc.fitness || string(c.Weights) != tc.weights {
			t.Errorf("BestChampion(%q) = %+v, expected fitness %v weights %s", tc.runID, c, tc.fitness, tc.weights)
		}
	}
}

func TestStoreRuns(t *testing.T) {
	store := openTestStore(t)

	for _, rec := range []GenerationRecord{
		{RunID: "old", Generation: 1, State: "extinct", Best: 3, Score: 0},
		{RunID: "old", Generation: 2, State: "extinct", Best: 8, Score: 1},
		{RunID: "new", Generation: 1, State: "score_cap", Best: 600, Score: 101},
	} {
		if _, err := store.SaveGeneration(rec); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "new" || runs[1].RunID != "old" {
		t.Errorf("Runs() order = %s, %s, expected new, old", runs[0].RunID, runs[1].RunID)
	}
	if runs[1].Generations != 2 || runs[1].BestFitness != 8 || runs[1].BestScore != 1 {
		t.Errorf("old run stats = %+v", runs[1])
	}
}

func TestStoreClearRun(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveGeneration(GenerationRecord{RunID: "run", Generation: 1, State: "extinct"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveChampion(Champion{RunID: "run", Generation: 1, Fitness: 1, Weights: []byte("{}")}); err != nil {
		t.Fatal(err)
	}
	if err := store.ClearRun("run"); err != nil {
		t.Fatalf("ClearRun() failed: %v", err)
	}

	records, _ := store.Generations("run")
	champ, _ := store.BestChampion("run")
	if len(records) != 0 || champ != nil {
		t.Errorf("ClearRun() left %d generations and champion %v", len(records), champ)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
