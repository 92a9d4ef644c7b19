package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ShaduMan201/symbiosis/internal/storage"
	"github.com/ShaduMan201/symbiosis/internal/strategy"
	symbiosisapi "github.com/ShaduMan201/symbiosis/pkg/symbiosis"
)

const (
	artifactsDir  = "artifacts"
	exportsDir    = "exports"
	defaultDBPath = "symbiosis.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "strategies":
		return runStrategies(ctx, args[1:])
	case "tournament":
		return runTournament(ctx, args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "batch":
		return runBatch(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runStrategies(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ContinueOnError)
	all := fs.Bool("all", false, "include the baseline strategies")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds := strategy.Archetypes()
	if *all {
		kinds = strategy.AllKinds()
	}
	for _, kind := range kinds {
		fmt.Println(kind.String())
	}
	return nil
}

func runTournament(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	roster := fs.String("roster", "", "comma-separated strategy names (empty plays the ten archetypes)")
	rounds := fs.Int("rounds", 200, "rounds per match")
	noise := fs.Float64("noise", 0.05, "probability an intended cooperation flips to defection")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 1, "worker count")
	showMatches := fs.Bool("matches", false, "print every match result")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(storage.DefaultStoreKind(), defaultDBPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Tournament(ctx, symbiosisapi.TournamentRequest{
		Roster:  splitList(*roster),
		Rounds:  *rounds,
		Noise:   *noise,
		Seed:    *seed,
		Workers: *workers,
	})
	if err != nil {
		return err
	}

	if *showMatches {
		for _, match := range summary.Matches {
			fmt.Printf("match %s vs %s score=%d-%d\n", match.AgentA, match.AgentB, match.ScoreA, match.ScoreB)
		}
	}
	fmt.Printf("tournament rounds=%d noise=%.3f seed=%d agents=%d matches=%d\n",
		*rounds, *noise, *seed, len(summary.Table), len(summary.Matches))
	for rank, entry := range summary.Table {
		fmt.Printf("rank=%d strategy=%s score=%d\n", rank+1, entry.Name, entry.Score)
	}
	return nil
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional evolve config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	composition := fs.String("composition", "", "starting composition, e.g. tit-for-tat=10,always-defect=10 (empty seeds five of each archetype)")
	pairing := fs.String("pairing", "fixed-random", "pairing policy: all-pairs|fixed-random")
	rounds := fs.Int("rounds", 200, "rounds per match")
	noise := fs.Float64("noise", 0.05, "probability an intended cooperation flips to defection")
	mutationRate := fs.Float64("mutation", 0.02, "replication mutation probability")
	elimination := fs.Int("elimination", 0, "slots replaced per generation (0 selects max(1, pop/10))")
	generations := fs.Int("gens", 100, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 1, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultEvolveRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" || setFlags["run-id"] {
		req.RunID = *runID
	}
	if *configPath == "" || setFlags["composition"] {
		req.Composition, err = parseComposition(*composition)
		if err != nil {
			return err
		}
	}
	if *configPath == "" || setFlags["pairing"] {
		req.Pairing = *pairing
	}
	if *configPath == "" || setFlags["rounds"] {
		req.Rounds = *rounds
	}
	if *configPath == "" || setFlags["noise"] {
		req.Noise = *noise
	}
	if *configPath == "" || setFlags["mutation"] {
		req.MutationRate = *mutationRate
	}
	if *configPath == "" || setFlags["elimination"] {
		req.Elimination = *elimination
	}
	if *configPath == "" || setFlags["gens"] {
		req.Generations = *generations
	}
	if *configPath == "" || setFlags["seed"] {
		req.Seed = *seed
	}
	if *configPath == "" || setFlags["workers"] {
		req.Workers = *workers
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Evolve(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("evolve completed run_id=%s gens=%d seed=%d\n", summary.RunID, summary.Generations, req.Seed)
	printCounts(summary.FinalCounts)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional batch config JSON path")
	experimentID := fs.String("experiment-id", "", "explicit experiment id (optional)")
	runs := fs.Int("runs", 10, "independent runs")
	composition := fs.String("composition", "", "starting composition per run (empty seeds five of each archetype)")
	pairing := fs.String("pairing", "fixed-random", "pairing policy: all-pairs|fixed-random")
	rounds := fs.Int("rounds", 200, "rounds per match")
	noise := fs.Float64("noise", 0.05, "probability an intended cooperation flips to defection")
	mutationRate := fs.Float64("mutation", 0.02, "replication mutation probability")
	elimination := fs.Int("elimination", 0, "slots replaced per generation (0 selects max(1, pop/10))")
	generations := fs.Int("gens", 100, "generations per run")
	seed := fs.Int64("seed", 1, "base rng seed; run i uses seed+i")
	workers := fs.Int("workers", 4, "concurrent runs")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultBatchRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" || setFlags["experiment-id"] {
		req.ExperimentID = *experimentID
	}
	if *configPath == "" || setFlags["runs"] {
		req.Runs = *runs
	}
	if *configPath == "" || setFlags["composition"] {
		req.Composition, err = parseComposition(*composition)
		if err != nil {
			return err
		}
	}
	if *configPath == "" || setFlags["pairing"] {
		req.Pairing = *pairing
	}
	if *configPath == "" || setFlags["rounds"] {
		req.Rounds = *rounds
	}
	if *configPath == "" || setFlags["noise"] {
		req.Noise = *noise
	}
	if *configPath == "" || setFlags["mutation"] {
		req.MutationRate = *mutationRate
	}
	if *configPath == "" || setFlags["elimination"] {
		req.Elimination = *elimination
	}
	if *configPath == "" || setFlags["gens"] {
		req.Generations = *generations
	}
	if *configPath == "" || setFlags["seed"] {
		req.Seed = *seed
	}
	if *configPath == "" || setFlags["workers"] {
		req.Workers = *workers
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Batch(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("batch completed experiment_id=%s runs=%d gens=%d seed=%d\n",
		summary.ExperimentID, req.Runs, req.Generations, req.Seed)
	for _, row := range summary.Rows {
		fmt.Printf("strategy=%s mean_final_pop=%.2f min=%d max=%d\n", row.Strategy, row.Mean, row.Min, row.Max)
	}
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum runs listed")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, symbiosisapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s pairing=%s gens=%d seed=%d survivors=%s\n",
			item.RunID, item.CreatedAtUTC, item.Pairing, item.Generations, item.Seed, formatCounts(item.FinalCounts))
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to export")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, symbiosisapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", summary.RunID, filepath.Clean(summary.Directory))
	return nil
}

func newClient(storeKind, dbPath string) (*symbiosisapi.Client, error) {
	return symbiosisapi.New(symbiosisapi.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
		ExportsDir:   exportsDir,
	})
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseComposition reads "name=count" pairs, e.g.
// "tit-for-tat=10,always-defect=10".
func parseComposition(s string) (map[string]int, error) {
	entries := splitList(s)
	if len(entries) == 0 {
		return nil, nil
	}
	composition := make(map[string]int, len(entries))
	for _, entry := range entries {
		name, countText, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid composition entry %q: want name=count", entry)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countText))
		if err != nil {
			return nil, fmt.Errorf("invalid composition count in %q: %w", entry, err)
		}
		composition[strings.TrimSpace(name)] += count
	}
	return composition, nil
}

func printCounts(counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Printf("strategy=%s count=%d\n", name, counts[name])
	}
}

func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, counts[name]))
	}
	return strings.Join(parts, ",")
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: symbiosisctl <init|reset|strategies|tournament|evolve|batch|runs|export> [flags]", msg)
}
