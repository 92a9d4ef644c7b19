package symbiosis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ShaduMan201/symbiosis/internal/evo"
	"github.com/ShaduMan201/symbiosis/internal/game"
	"github.com/ShaduMan201/symbiosis/internal/model"
	"github.com/ShaduMan201/symbiosis/internal/stats"
	"github.com/ShaduMan201/symbiosis/internal/storage"
	"github.com/ShaduMan201/symbiosis/internal/strategy"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultExportsDir   = "exports"
	defaultDBPath       = "symbiosis.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
}

// Client is the high-level entry point: it owns the store and the
// artifacts directory and exposes one method per user-facing operation.
type Client struct {
	store       storage.Store
	initialized bool

	artifactsDir string
	exportsDir   string
}

type TournamentRequest struct {
	// Roster names the competing strategies. Empty means the ten archetypes.
	Roster  []string
	Rounds  int
	Noise   float64
	Seed    int64
	Workers int
	KeepLog bool
}

type TournamentSummary struct {
	Table   []game.TableEntry
	Matches []model.MatchRecord
}

type EvolveRequest struct {
	RunID        string
	Composition  map[string]int
	Pairing      string
	Rounds       int
	Noise        float64
	MutationRate float64
	Elimination  int
	Generations  int
	Seed         int64
	Workers      int
}

type EvolveSummary struct {
	RunID        string
	ArtifactsDir string
	Generations  int
	FinalCounts  map[string]int
}

type BatchRequest struct {
	ExperimentID string
	Runs         int
	Composition  map[string]int
	Pairing      string
	Rounds       int
	Noise        float64
	MutationRate float64
	Elimination  int
	Generations  int
	Seed         int64
	Workers      int
}

type BatchSummary struct {
	ExperimentID string
	ArtifactsDir string
	Rows         []model.BatchRow
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Pairing      string
	Generations  int
	Seed         int64
	FinalCounts  map[string]int
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// Reset drops all persisted runs and experiments.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.ensureStore(ctx); err != nil {
		return err
	}
	resetter, ok := c.store.(storage.Resetter)
	if !ok {
		return errors.New("store does not support reset")
	}
	return resetter.Reset(ctx)
}

// Tournament plays a single round-robin over the requested roster and
// returns the ranked leaderboard. Nothing is persisted.
func (c *Client) Tournament(ctx context.Context, req TournamentRequest) (TournamentSummary, error) {
	if req.Rounds <= 0 {
		req.Rounds = 200
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}

	kinds, err := rosterKinds(req.Roster)
	if err != nil {
		return TournamentSummary{}, err
	}
	agents := make([]*strategy.Agent, len(kinds))
	for i, kind := range kinds {
		agents[i] = strategy.NewAgent(kind)
	}

	tournament, err := game.NewTournament(agents, game.TournamentConfig{
		Match: game.MatchConfig{
			Rounds:  req.Rounds,
			Noise:   req.Noise,
			Payoff:  game.DefaultPayoffTable(),
			KeepLog: req.KeepLog,
		},
		Workers: req.Workers,
	})
	if err != nil {
		return TournamentSummary{}, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	matches, err := tournament.Run(ctx, rng)
	if err != nil {
		return TournamentSummary{}, err
	}

	return TournamentSummary{Table: tournament.ResultsTable(), Matches: matches}, nil
}

// Evolve runs one full population lifecycle, persists the run record, and
// writes its artifacts under the artifacts directory.
func (c *Client) Evolve(ctx context.Context, req EvolveRequest) (EvolveSummary, error) {
	if req.Rounds <= 0 {
		req.Rounds = 200
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}

	cfg, err := populationConfig(req.Composition, req.Pairing, req.Rounds, req.Noise, req.MutationRate, req.Elimination, req.Seed, req.Workers)
	if err != nil {
		return EvolveSummary{}, err
	}
	population, err := evo.NewPopulation(cfg)
	if err != nil {
		return EvolveSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	snapshots := make([]model.GenerationSnapshot, 0, req.Generations)
	for gen := 0; gen < req.Generations; gen++ {
		snapshot, err := population.AdvanceGeneration(ctx)
		if err != nil {
			return EvolveSummary{}, err
		}
		snapshots = append(snapshots, snapshot)
	}

	composition := make(map[string]int, len(cfg.Composition))
	for _, seed := range cfg.Composition {
		composition[seed.Kind.String()] += seed.Count
	}

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           runID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Pairing:      string(cfg.Pairing),
		Rounds:       cfg.Rounds,
		Noise:        cfg.Noise,
		MutationRate: cfg.MutationRate,
		Elimination:  population.Elimination(),
		Generations:  req.Generations,
		Seed:         req.Seed,
		Composition:  composition,
		Snapshots:    snapshots,
		FinalCounts:  population.Counts(),
	}

	if err := c.ensureStore(ctx); err != nil {
		return EvolveSummary{}, err
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return EvolveSummary{}, err
	}
	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, run)
	if err != nil {
		return EvolveSummary{}, err
	}

	return EvolveSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		Generations:  req.Generations,
		FinalCounts:  run.FinalCounts,
	}, nil
}

// Batch executes many independent evolution runs, persists the aggregate
// record, and writes the JSON and CSV reports.
func (c *Client) Batch(ctx context.Context, req BatchRequest) (BatchSummary, error) {
	if req.Runs <= 0 {
		req.Runs = 10
	}
	if req.Rounds <= 0 {
		req.Rounds = 200
	}
	if req.Generations <= 0 {
		req.Generations = 100
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}

	cfg, err := populationConfig(req.Composition, req.Pairing, req.Rounds, req.Noise, req.MutationRate, req.Elimination, req.Seed, 1)
	if err != nil {
		return BatchSummary{}, err
	}
	runner, err := evo.NewBatchRunner(evo.BatchConfig{
		Runs:        req.Runs,
		Generations: req.Generations,
		Population:  cfg,
		Seed:        req.Seed,
		Workers:     req.Workers,
	})
	if err != nil {
		return BatchSummary{}, err
	}

	result, err := runner.RunAll(ctx)
	if err != nil {
		return BatchSummary{}, err
	}

	experimentID := req.ExperimentID
	if experimentID == "" {
		experimentID = uuid.NewString()
	}

	batch := model.BatchRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           experimentID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Runs:         req.Runs,
		Generations:  req.Generations,
		Rounds:       cfg.Rounds,
		Noise:        cfg.Noise,
		MutationRate: cfg.MutationRate,
		Seed:         req.Seed,
		Rows:         result.Rows,
	}

	if err := c.ensureStore(ctx); err != nil {
		return BatchSummary{}, err
	}
	if err := c.store.SaveBatch(ctx, batch); err != nil {
		return BatchSummary{}, err
	}
	batchDir, err := stats.WriteBatchArtifacts(c.artifactsDir, batch)
	if err != nil {
		return BatchSummary{}, err
	}

	return BatchSummary{
		ExperimentID: experimentID,
		ArtifactsDir: filepath.Clean(batchDir),
		Rows:         batch.Rows,
	}, nil
}

// Runs lists persisted runs, newest last.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) > req.Limit {
		runs = runs[len(runs)-req.Limit:]
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:        run.ID,
			CreatedAtUTC: run.CreatedAtUTC,
			Pairing:      run.Pairing,
			Generations:  run.Generations,
			Seed:         run.Seed,
			FinalCounts:  run.FinalCounts,
		})
	}
	return out, nil
}

// Export re-writes a persisted run's artifacts into the export directory.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	if err := c.ensureStore(ctx); err != nil {
		return ExportSummary{}, err
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListRuns(ctx)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(runs) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = runs[len(runs)-1].ID
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run not found: %s", runID)
	}

	exportedDir, err := stats.WriteRunArtifacts(req.OutDir, run)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// rosterKinds resolves strategy names, defaulting to the archetype lineup.
func rosterKinds(names []string) ([]strategy.Kind, error) {
	if len(names) == 0 {
		return strategy.Archetypes(), nil
	}
	kinds := make([]strategy.Kind, 0, len(names))
	for _, name := range names {
		kind, err := strategy.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// populationConfig turns the request-level fields into an evo.Config.
// The composition map is resolved in roster order so a given request is
// deterministic regardless of map iteration.
func populationConfig(composition map[string]int, pairing string, rounds int, noise, mutationRate float64, elimination int, seed int64, workers int) (evo.Config, error) {
	policy, err := evo.ParsePairingPolicy(pairing)
	if err != nil {
		return evo.Config{}, err
	}

	seeds := evo.DefaultComposition()
	if len(composition) > 0 {
		counts := make(map[strategy.Kind]int, len(composition))
		for name, count := range composition {
			kind, err := strategy.ParseKind(name)
			if err != nil {
				return evo.Config{}, err
			}
			counts[kind] += count
		}
		seeds = seeds[:0]
		for _, kind := range strategy.AllKinds() {
			if count := counts[kind]; count > 0 {
				seeds = append(seeds, evo.SeedCount{Kind: kind, Count: count})
			}
		}
	}

	return evo.Config{
		Composition:  seeds,
		Pairing:      policy,
		Rounds:       rounds,
		Noise:        noise,
		MutationRate: mutationRate,
		Elimination:  elimination,
		Payoff:       game.DefaultPayoffTable(),
		Seed:         seed,
		Workers:      workers,
	}, nil
}
