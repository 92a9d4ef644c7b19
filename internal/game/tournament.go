package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/ShaduMan201/symbiosis/internal/model"
	"github.com/ShaduMan201/symbiosis/internal/strategy"
)

// TournamentConfig configures a round-robin tournament: every unordered pair
// of agents plays exactly one match, no self-play.
type TournamentConfig struct {
	Match MatchConfig
	// Workers > 1 runs matches in parallel on agent clones. Each match gets
	// its own rng stream drawn in pair order, so a given seed produces the
	// same totals at any worker count.
	Workers int
}

// TableEntry is one ranked leaderboard row.
type TableEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Tournament struct {
	agents  []*strategy.Agent
	cfg     TournamentConfig
	totals  []int
	matches []model.MatchRecord
}

func NewTournament(agents []*strategy.Agent, cfg TournamentConfig) (*Tournament, error) {
	if len(agents) < 2 {
		return nil, fmt.Errorf("tournament requires at least 2 agents: got %d", len(agents))
	}
	for i, agent := range agents {
		if agent == nil {
			return nil, fmt.Errorf("agent is nil at index %d", i)
		}
	}
	if err := cfg.Match.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Tournament{
		agents: agents,
		cfg:    cfg,
		totals: make([]int, len(agents)),
	}, nil
}

// Run plays all N(N-1)/2 matches and accumulates per-agent totals.
func (t *Tournament) Run(ctx context.Context, rng *rand.Rand) ([]model.MatchRecord, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	type pair struct{ a, b int }
	pairs := make([]pair, 0, len(t.agents)*(len(t.agents)-1)/2)
	for i := 0; i < len(t.agents); i++ {
		for j := i + 1; j < len(t.agents); j++ {
			pairs = append(pairs, pair{a: i, b: j})
		}
	}

	t.totals = make([]int, len(t.agents))
	t.matches = make([]model.MatchRecord, len(pairs))

	// Both paths draw one seed per pair from the parent rng, in pair order,
	// so a given seed produces the same totals at any worker count.
	if t.cfg.Workers == 1 {
		for idx, p := range pairs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			matchRNG := rand.New(rand.NewSource(rng.Int63()))
			record, err := PlayMatch(matchRNG, t.agents[p.a], t.agents[p.b], t.cfg.Match)
			if err != nil {
				return nil, err
			}
			t.matches[idx] = record
			t.totals[p.a] += record.ScoreA
			t.totals[p.b] += record.ScoreB
		}
		return append([]model.MatchRecord(nil), t.matches...), nil
	}

	type job struct {
		idx  int
		a, b *strategy.Agent
		seed int64
	}
	type result struct {
		idx    int
		record model.MatchRecord
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(pairs))

	workerCount := t.cfg.Workers
	if workerCount > len(pairs) {
		workerCount = len(pairs)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				record, err := PlayMatch(rand.New(rand.NewSource(j.seed)), j.a, j.b, t.cfg.Match)
				results <- result{idx: j.idx, record: record, err: err}
			}
		}()
	}

	// Seeds are drawn before dispatch so scheduling cannot change the
	// outcome.
	for idx, p := range pairs {
		jobs <- job{
			idx:  idx,
			a:    t.agents[p.a].Clone(),
			b:    t.agents[p.b].Clone(),
			seed: rng.Int63(),
		}
	}
	close(jobs)

	wg.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		t.matches[res.idx] = res.record
	}
	for idx, p := range pairs {
		t.totals[p.a] += t.matches[idx].ScoreA
		t.totals[p.b] += t.matches[idx].ScoreB
	}

	return append([]model.MatchRecord(nil), t.matches...), nil
}

// Totals returns the accumulated tournament score per agent, indexed the
// same as the input agents.
func (t *Tournament) Totals() []int {
	return append([]int(nil), t.totals...)
}

// ResultsTable returns per-agent totals sorted by score descending. Ties
// keep the original agent order so rankings are reproducible.
func (t *Tournament) ResultsTable() []TableEntry {
	order := make([]int, len(t.agents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return t.totals[order[i]] > t.totals[order[j]]
	})

	table := make([]TableEntry, len(order))
	for rank, idx := range order {
		table[rank] = TableEntry{Name: t.agents[idx].Name(), Score: t.totals[idx]}
	}
	return table
}
