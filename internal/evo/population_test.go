package evo

import (
	"context"
	"testing"

	"github.com/ShaduMan201/symbiosis/internal/strategy"
)

func basePopulationConfig() Config {
	return Config{
		Composition: []SeedCount{
			{Kind: strategy.TitForTat, Count: 2},
			{Kind: strategy.AlwaysDefect, Count: 2},
		},
		Pairing:     PairingAllPairs,
		Rounds:      10,
		Elimination: 1,
		Seed:        1,
	}
}

func TestNewPopulationDefaults(t *testing.T) {
	population, err := NewPopulation(Config{Rounds: 10, Seed: 1})
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if population.Size() != 50 {
		t.Fatalf("expected default population of 50, got %d", population.Size())
	}
	if population.Elimination() != 5 {
		t.Fatalf("expected default elimination of 5, got %d", population.Elimination())
	}
	counts := population.Counts()
	if len(counts) != 10 {
		t.Fatalf("expected ten archetypes, got %d", len(counts))
	}
	for name, count := range counts {
		if count != 5 {
			t.Fatalf("expected five of %s, got %d", name, count)
		}
	}
}

func TestNewPopulationValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"odd size", func(c *Config) {
			c.Composition = []SeedCount{{Kind: strategy.TitForTat, Count: 3}}
		}},
		{"too small", func(c *Config) {
			c.Composition = []SeedCount{{Kind: strategy.TitForTat, Count: 1}}
		}},
		{"negative count", func(c *Config) {
			c.Composition = []SeedCount{{Kind: strategy.TitForTat, Count: -2}, {Kind: strategy.Grudger, Count: 4}}
		}},
		{"invalid kind", func(c *Config) {
			c.Composition = []SeedCount{{Kind: strategy.Kind(99), Count: 4}}
		}},
		{"zero rounds", func(c *Config) { c.Rounds = 0 }},
		{"noise range", func(c *Config) { c.Noise = 1.5 }},
		{"mutation range", func(c *Config) { c.MutationRate = -0.1 }},
		{"bad pairing", func(c *Config) { c.Pairing = "round-robin" }},
		{"elimination too large", func(c *Config) { c.Elimination = 3 }},
		{"elimination negative", func(c *Config) { c.Elimination = -1 }},
	}
	for _, tc := range cases {
		cfg := basePopulationConfig()
		tc.mutate(&cfg)
		if _, err := NewPopulation(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestAdvanceGenerationKeepsSizeConstant(t *testing.T) {
	cfg := basePopulationConfig()
	cfg.Pairing = PairingFixedRandom
	cfg.MutationRate = 0.5
	population, err := NewPopulation(cfg)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}

	for gen := 0; gen < 10; gen++ {
		snapshot, err := population.AdvanceGeneration(context.Background())
		if err != nil {
			t.Fatalf("generation %d: %v", gen, err)
		}
		total := 0
		for _, count := range snapshot.Counts {
			total += count
		}
		if total != 4 {
			t.Fatalf("generation %d: slot count drifted to %d", gen, total)
		}
		if snapshot.Generation != gen+1 {
			t.Fatalf("unexpected generation number: %d", snapshot.Generation)
		}
	}
	if population.Generation() != 10 {
		t.Fatalf("unexpected completed generations: %d", population.Generation())
	}
}

func TestAdvanceGenerationReplacesWorstWithBest(t *testing.T) {
	// All-pairs with no noise is fully deterministic here: both defectors
	// score below both Tit-for-Tats, so the single elimination must convert
	// one defector into a Tit-for-Tat.
	population, err := NewPopulation(basePopulationConfig())
	if err != nil {
		t.Fatalf("new population: %v", err)
	}

	snapshot, err := population.AdvanceGeneration(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if snapshot.Counts["Tit-for-Tat"] != 3 || snapshot.Counts["Always Defect"] != 1 {
		t.Fatalf("unexpected counts after selection: %+v", snapshot.Counts)
	}
	if snapshot.Points["Tit-for-Tat"] <= snapshot.Points["Always Defect"] {
		t.Fatalf("expected Tit-for-Tat to outscore defectors: %+v", snapshot.Points)
	}
}

func TestAdvanceGenerationExtinction(t *testing.T) {
	cfg := basePopulationConfig()
	cfg.Elimination = 2
	population, err := NewPopulation(cfg)
	if err != nil {
		t.Fatalf("new population: %v", err)
	}

	snapshot, err := population.AdvanceGeneration(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if snapshot.Counts["Tit-for-Tat"] != 4 {
		t.Fatalf("expected full takeover, got %+v", snapshot.Counts)
	}
	if count, ok := snapshot.Counts["Always Defect"]; ok && count != 0 {
		t.Fatalf("expected defector extinction, got %+v", snapshot.Counts)
	}
}

func TestAdvanceGenerationDeterministicForSeed(t *testing.T) {
	runOnce := func() map[string]int {
		cfg := Config{
			Pairing:      PairingFixedRandom,
			Rounds:       10,
			Noise:        0.05,
			MutationRate: 0.1,
			Seed:         42,
		}
		population, err := NewPopulation(cfg)
		if err != nil {
			t.Fatalf("new population: %v", err)
		}
		for gen := 0; gen < 5; gen++ {
			if _, err := population.AdvanceGeneration(context.Background()); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
		return population.Counts()
	}

	first := runOnce()
	second := runOnce()
	if len(first) != len(second) {
		t.Fatalf("composition mismatch: %+v vs %+v", first, second)
	}
	for name, count := range first {
		if second[name] != count {
			t.Fatalf("count mismatch for %s: %d vs %d", name, count, second[name])
		}
	}
}

func TestAdvanceGenerationWorkerCountInvariant(t *testing.T) {
	runWith := func(workers int) map[string]int {
		cfg := basePopulationConfig()
		cfg.Workers = workers
		population, err := NewPopulation(cfg)
		if err != nil {
			t.Fatalf("new population: %v", err)
		}
		for gen := 0; gen < 3; gen++ {
			if _, err := population.AdvanceGeneration(context.Background()); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
		return population.Counts()
	}

	sequential := runWith(1)
	parallel := runWith(4)
	for name, count := range sequential {
		if parallel[name] != count {
			t.Fatalf("worker count changed outcome for %s: %d vs %d", name, count, parallel[name])
		}
	}
}

func TestAdvanceGenerationWorkerCountInvariantUnderNoise(t *testing.T) {
	runWith := func(workers int) map[string]int {
		cfg := basePopulationConfig()
		cfg.Noise = 0.2
		cfg.Workers = workers
		population, err := NewPopulation(cfg)
		if err != nil {
			t.Fatalf("new population: %v", err)
		}
		for gen := 0; gen < 3; gen++ {
			if _, err := population.AdvanceGeneration(context.Background()); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
		return population.Counts()
	}

	sequential := runWith(1)
	parallel := runWith(4)
	if len(sequential) != len(parallel) {
		t.Fatalf("composition mismatch: %+v vs %+v", sequential, parallel)
	}
	for name, count := range sequential {
		if parallel[name] != count {
			t.Fatalf("worker count changed noisy outcome for %s: %d vs %d", name, count, parallel[name])
		}
	}
}

func TestAdvanceGenerationHonorsContext(t *testing.T) {
	population, err := NewPopulation(basePopulationConfig())
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := population.AdvanceGeneration(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParsePairingPolicy(t *testing.T) {
	if policy, err := ParsePairingPolicy(""); err != nil || policy != PairingFixedRandom {
		t.Fatalf("empty policy: got %q err=%v", policy, err)
	}
	if policy, err := ParsePairingPolicy("all-pairs"); err != nil || policy != PairingAllPairs {
		t.Fatalf("all-pairs: got %q err=%v", policy, err)
	}
	if _, err := ParsePairingPolicy("ladder"); err == nil {
		t.Fatal("expected unsupported policy error")
	}
}
