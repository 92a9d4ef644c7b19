package evo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/ShaduMan201/symbiosis/internal/game"
	"github.com/ShaduMan201/symbiosis/internal/model"
	"github.com/ShaduMan201/symbiosis/internal/strategy"
)

// PairingPolicy selects how matches are arranged inside one generation.
type PairingPolicy string

const (
	// PairingAllPairs plays every unordered pair of slots once per
	// generation: P(P-1)/2 matches.
	PairingAllPairs PairingPolicy = "all-pairs"
	// PairingFixedRandom shuffles the slots once and pairs adjacent
	// entries: P/2 matches. Used for high-volume batch trials.
	PairingFixedRandom PairingPolicy = "fixed-random"
)

func ParsePairingPolicy(s string) (PairingPolicy, error) {
	switch PairingPolicy(s) {
	case PairingAllPairs:
		return PairingAllPairs, nil
	case PairingFixedRandom, "":
		return PairingFixedRandom, nil
	default:
		return "", fmt.Errorf("unsupported pairing policy: %s", s)
	}
}

// SeedCount is one entry of the starting composition. Order matters: slots
// are laid out in composition order, which keeps runs reproducible.
type SeedCount struct {
	Kind  strategy.Kind
	Count int
}

// DefaultComposition seeds five agents of each of the ten archetypes.
func DefaultComposition() []SeedCount {
	kinds := strategy.Archetypes()
	composition := make([]SeedCount, 0, len(kinds))
	for _, kind := range kinds {
		composition = append(composition, SeedCount{Kind: kind, Count: 5})
	}
	return composition
}

// Config fixes one population lifecycle.
type Config struct {
	Composition []SeedCount
	Pairing     PairingPolicy
	Rounds      int
	Noise       float64
	// MutationRate is the probability that replication assigns a uniformly
	// random strategy from the full roster instead of the donor's.
	MutationRate float64
	// Elimination is K, the number of dying/donor slot pairs per
	// generation. 0 selects max(1, P/10). Must satisfy 1 <= K <= P/2.
	Elimination int
	Payoff      game.PayoffTable
	Seed        int64
	Workers     int
}

type slot struct {
	agent *strategy.Agent
	score int
}

// Population is a fixed-size pool of strategy slots evolving one generation
// at a time: play, score, eliminate, replicate. Slot count never changes;
// replication rebinds a slot in place.
type Population struct {
	cfg         Config
	rng         *rand.Rand
	slots       []*slot
	elimination int
	generation  int
}

func NewPopulation(cfg Config) (*Population, error) {
	if len(cfg.Composition) == 0 {
		cfg.Composition = DefaultComposition()
	}
	size := 0
	for i, entry := range cfg.Composition {
		if !entry.Kind.Valid() {
			return nil, fmt.Errorf("invalid strategy kind at composition index %d", i)
		}
		if entry.Count < 0 {
			return nil, fmt.Errorf("composition count must be >= 0 at index %d: %d", i, entry.Count)
		}
		size += entry.Count
	}
	if size < 2 {
		return nil, fmt.Errorf("population size must be >= 2: %d", size)
	}
	if size%2 != 0 {
		return nil, fmt.Errorf("population size must be even: %d", size)
	}
	if cfg.Pairing == "" {
		cfg.Pairing = PairingFixedRandom
	}
	if _, err := ParsePairingPolicy(string(cfg.Pairing)); err != nil {
		return nil, err
	}
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be > 0: %d", cfg.Rounds)
	}
	if cfg.Noise < 0 || cfg.Noise > 1 {
		return nil, fmt.Errorf("noise must be in [0,1]: %v", cfg.Noise)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0,1]: %v", cfg.MutationRate)
	}
	if cfg.Payoff == (game.PayoffTable{}) {
		cfg.Payoff = game.DefaultPayoffTable()
	}
	if err := cfg.Payoff.Validate(); err != nil {
		return nil, err
	}
	if cfg.Elimination == 0 {
		cfg.Elimination = size / 10
		if cfg.Elimination < 1 {
			cfg.Elimination = 1
		}
	}
	if cfg.Elimination < 1 || cfg.Elimination > size/2 {
		return nil, fmt.Errorf("elimination count must be in [1, %d]: %d", size/2, cfg.Elimination)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	slots := make([]*slot, 0, size)
	for _, entry := range cfg.Composition {
		for i := 0; i < entry.Count; i++ {
			slots = append(slots, &slot{agent: strategy.NewAgent(entry.Kind)})
		}
	}

	return &Population{
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		slots:       slots,
		elimination: cfg.Elimination,
	}, nil
}

func (p *Population) Size() int {
	return len(p.slots)
}

// Generation returns the number of completed generations.
func (p *Population) Generation() int {
	return p.generation
}

// Elimination returns the effective per-generation replacement count.
func (p *Population) Elimination() int {
	return p.elimination
}

// Counts returns the live per-strategy counts.
func (p *Population) Counts() map[string]int {
	counts := make(map[string]int)
	for _, s := range p.slots {
		counts[s.agent.Name()]++
	}
	return counts
}

// AdvanceGeneration plays one full generation under the configured pairing
// policy, then eliminates the lowest-scoring slots and replicates from the
// highest-scoring ones, rank for rank. The returned snapshot reports the
// points earned during the played generation and the live counts after
// replication.
func (p *Population) AdvanceGeneration(ctx context.Context) (model.GenerationSnapshot, error) {
	if len(p.slots) == 0 {
		return model.GenerationSnapshot{}, fmt.Errorf("population is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return model.GenerationSnapshot{}, err
	}

	for _, s := range p.slots {
		s.score = 0
		s.agent.Reset()
	}

	var err error
	switch p.cfg.Pairing {
	case PairingAllPairs:
		err = p.playAllPairs(ctx)
	case PairingFixedRandom:
		err = p.playFixedRandom(ctx)
	default:
		err = fmt.Errorf("unsupported pairing policy: %s", p.cfg.Pairing)
	}
	if err != nil {
		return model.GenerationSnapshot{}, err
	}

	points := make(map[string]int)
	for _, s := range p.slots {
		points[s.agent.Name()] += s.score
	}

	// Rank slots by generation score ascending; ties keep slot order so
	// the selection outcome is reproducible.
	order := make([]int, len(p.slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return p.slots[order[i]].score < p.slots[order[j]].score
	})

	kinds := strategy.AllKinds()
	for i := 0; i < p.elimination; i++ {
		victim := p.slots[order[i]]
		donor := p.slots[order[len(order)-1-i]]

		kind := donor.agent.Kind()
		if p.rng.Float64() < p.cfg.MutationRate {
			kind = kinds[p.rng.Intn(len(kinds))]
		}
		victim.agent = strategy.NewAgent(kind)
	}

	for _, s := range p.slots {
		s.score = 0
		s.agent.Reset()
	}
	p.generation++

	return model.GenerationSnapshot{
		Generation: p.generation,
		Counts:     p.Counts(),
		Points:     points,
	}, nil
}

// playAllPairs reuses the round-robin tournament engine over the slot
// agents, including its parallel worker mode.
func (p *Population) playAllPairs(ctx context.Context) error {
	agents := make([]*strategy.Agent, len(p.slots))
	for i, s := range p.slots {
		agents[i] = s.agent
	}
	tournament, err := game.NewTournament(agents, game.TournamentConfig{
		Match: game.MatchConfig{
			Rounds: p.cfg.Rounds,
			Noise:  p.cfg.Noise,
			Payoff: p.cfg.Payoff,
		},
		Workers: p.cfg.Workers,
	})
	if err != nil {
		return err
	}
	if _, err := tournament.Run(ctx, p.rng); err != nil {
		return err
	}
	for i, total := range tournament.Totals() {
		p.slots[i].score = total
	}
	return nil
}

// playFixedRandom shuffles the slots once and plays one match per adjacent
// pair. Population size is even by construction.
func (p *Population) playFixedRandom(ctx context.Context) error {
	perm := p.rng.Perm(len(p.slots))
	cfg := game.MatchConfig{
		Rounds: p.cfg.Rounds,
		Noise:  p.cfg.Noise,
		Payoff: p.cfg.Payoff,
	}
	for i := 0; i < len(perm); i += 2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := p.slots[perm[i]]
		b := p.slots[perm[i+1]]
		record, err := game.PlayMatch(p.rng, a.agent, b.agent, cfg)
		if err != nil {
			return err
		}
		a.score += record.ScoreA
		b.score += record.ScoreB
	}
	return nil
}
