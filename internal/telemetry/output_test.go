package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/neuroflap/internal/config"
	"github.com/vovakirdan/neuroflap/internal/evolve"
	"github.com/vovakirdan/neuroflap/internal/flappy"
	"github.com/vovakirdan/neuroflap/internal/policy"
)

func TestDisabledOutput(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; expected nil, nil", om, err)
	}
	// A nil manager ignores writes
	if err := om.Record(context.Background(), evolve.Stats{}, nil); err != nil {
		t.Errorf("Record() on nil manager = %v", err)
	}
	if err := om.WriteConfig(config.DefaultEvalConfig()); err != nil {
		t.Errorf("WriteConfig() on nil manager = %v", err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should have no dir and close cleanly")
	}
}

func TestRecordGenerations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager() failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	weak, strong := policy.NewNetwork(rng, 2), policy.NewNetwork(rng, 3)

	stats := []evolve.Stats{
		{Generation: 1, State: "extinct", Ticks: 80, Population: 10, Best: 7.5, Mean: 2, StdDev: 1.5, Min: -0.9},
		{Generation: 2, State: "extinct", Ticks: 200, Score: 2, Population: 10, Best: 20, Mean: 6, StdDev: 4, Min: 1.2},
		{Generation: 3, State: "tick_limit", Ticks: 300, Score: 3, Population: 10, Best: 15, Mean: 9, StdDev: 3, Min: 2},
	}
	nets := []*policy.Network{weak, strong, weak}
	for i, s := range stats {
		if err := om.Record(context.Background(), s, nets[i]); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "generation,"); n != 1 {
		t.Errorf("header written %d times", n)
	}

	var decoded []evolve.Stats
	if err := gocsv.UnmarshalBytes(data, &decoded); err != nil {
		t.Fatalf("UnmarshalBytes() failed: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("decoded %d rows, expected 3", len(decoded))
	}
	for i := range stats {
		want := stats[i]
		want.BestIndex = 0
		if decoded[i] != want {
			t.Errorf("row %d = %+v, expected %+v", i, decoded[i], want)
		}
	}

	// The champion file holds the best network, not the latest one
	raw, err := os.ReadFile(filepath.Join(dir, "champion.json"))
	if err != nil {
		t.Fatal(err)
	}
	var champ policy.Network
	if err := json.Unmarshal(raw, &champ); err != nil {
		t.Fatalf("champion.json does not decode: %v", err)
	}
	if champ.Hidden() != strong.Hidden() {
		t.Errorf("champion hidden = %d, expected the generation 2 network", champ.Hidden())
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer om.Close()

	cfg := config.DefaultEvalConfig()
	cfg.Run.Seed = 99
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig() failed: %v", err)
	}
	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("config round trip mismatch: %+v", loaded)
	}
	if om.Dir() != dir {
		t.Errorf("Dir() = %q, expected %q", om.Dir(), dir)
	}
}

func TestLogSink(t *testing.T) {
	// A nil logger is a no-op
	LogSink{Every: 1}.Observe(flappy.Snapshot{Tick: 1})

	var buf bytes.Buffer
	sink := LogSink{
		Logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}),
		Every:  10,
	}
	for tick := 1; tick <= 25; tick++ {
		sink.Observe(flappy.Snapshot{Generation: 2, Tick: tick, State: flappy.StateRunning})
	}
	sink.Observe(flappy.Snapshot{Generation: 2, Tick: 26, State: flappy.StateExtinct})

	out := buf.String()
	if n := strings.Count(out, "tick="); n != 3 {
		t.Errorf("expected 3 log lines, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "generation ended") || !strings.Contains(out, "state=extinct") {
		t.Errorf("missing end of generation line:\n%s", out)
	}
}
