// Package storage provides SQLite-based persistence for training history
// and champion networks.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// GenerationRecord is the summary of one evaluated generation of a run.
type GenerationRecord struct {
	ID         int64
	RunID      string
	Generation int
	State      string
	Ticks      int
	Score      int
	Population int
	Best       float64
	Mean       float64
	StdDev     float64
	Min        float64
	Failures   int
	CreatedAt  time.Time
}

// Champion is a saved network together with the fitness it reached.
// Weights holds the JSON-encoded network.
type Champion struct {
	ID         int64
	RunID      string
	Generation int
	Fitness    float64
	Weights    []byte
	CreatedAt  time.Time
}

// RunStats contains aggregated statistics for a training run.
type RunStats struct {
	RunID       string
	Generations int
	BestFitness float64
	BestScore   int
	LastUpdated time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			state TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			population INTEGER NOT NULL DEFAULT 0,
			best REAL NOT NULL DEFAULT 0,
			mean REAL NOT NULL DEFAULT 0,
			stddev REAL NOT NULL DEFAULT 0,
			min_fitness REAL NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, generation)
		);
		CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id, generation);

		CREATE TABLE IF NOT EXISTS champions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			fitness REAL NOT NULL,
			weights TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_champions_top ON champions(run_id, fitness DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime handles both time.Time and the SQLite text form of DATETIME.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveGeneration records a generation summary.
// Returns the ID of the inserted record.
func (s *Store) SaveGeneration(r GenerationRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO generations
		 (run_id, generation, state, ticks, score, population, best, mean, stddev, min_fitness, failures)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Generation, r.State, r.Ticks, r.Score, r.Population,
		r.Best, r.Mean, r.StdDev, r.Min, r.Failures,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save generation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// Generations retrieves every generation of a run in order.
func (s *Store) Generations(runID string) ([]GenerationRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, generation, state, ticks, score, population,
		        best, mean, stddev, min_fitness, failures, created_at
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		var createdAt any
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Generation, &r.State, &r.Ticks, &r.Score, &r.Population,
			&r.Best, &r.Mean, &r.StdDev, &r.Min, &r.Failures, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// SaveChampion records a network.
// Returns the ID of the inserted record.
func (s *Store) SaveChampion(c Champion) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO champions (run_id, generation, fitness, weights) VALUES (?, ?, ?, ?)",
		c.RunID, c.Generation, c.Fitness, string(c.Weights),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save champion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// BestChampion returns the fittest champion of a run, or of all runs when
// runID is empty. Returns nil if none is stored. Ties keep the earliest.
func (s *Store) BestChampion(runID string) (*Champion, error) {
	var c Champion
	var weights string
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, run_id, generation, fitness, weights, created_at
		 FROM champions
		 WHERE ? = '' OR run_id = ?
		 ORDER BY fitness DESC, id ASC
		 LIMIT 1`,
		runID, runID,
	).Scan(&c.ID, &c.RunID, &c.Generation, &c.Fitness, &weights, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query champion: %w", err)
	}

	c.Weights = []byte(weights)
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

// Runs retrieves statistics for every recorded run, most recent first.
func (s *Store) Runs() ([]RunStats, error) {
	rows, err := s.db.Query(
		`SELECT run_id, COUNT(*), MAX(best), MAX(score), MAX(created_at)
		 FROM generations
		 GROUP BY run_id
		 ORDER BY MAX(id) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get runs: %w", err)
	}
	defer rows.Close()

	var runs []RunStats
	for rows.Next() {
		var r RunStats
		var lastUpdated any
		if err := rows.Scan(&r.RunID, &r.Generations, &r.BestFitness, &r.BestScore, &lastUpdated); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		r.LastUpdated = parseTime(lastUpdated)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// ClearRun deletes every generation and champion of a run.
func (s *Store) ClearRun(runID string) error {
	if _, err := s.db.Exec("DELETE FROM generations WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("storage: cannot clear generations: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM champions WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("storage: cannot clear champions: %w", err)
	}
	return nil
}
