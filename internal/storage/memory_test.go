package storage

import (
	"context"
	"testing"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		CreatedAtUTC:    "2026-01-05T12:00:00Z",
		Pairing:         "fixed-random",
		Rounds:          10,
		Generations:     3,
		Seed:            42,
		Composition:     map[string]int{"Tit-for-Tat": 2, "Always Defect": 2},
		FinalCounts:     map[string]int{"Tit-for-Tat": 4},
	}
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}

	output, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if output.ID != input.ID || output.FinalCounts["Tit-for-Tat"] != 4 {
		t.Fatalf("unexpected run: %+v", output)
	}
}

func TestMemoryStoreGetRunMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_, ok, err := store.GetRun(ctx, "absent")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if ok {
		t.Fatal("expected missing run")
	}
}

func TestMemoryStoreListRunsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	newer := model.RunRecord{ID: "run-b", CreatedAtUTC: "2026-01-06T00:00:00Z"}
	older := model.RunRecord{ID: "run-a", CreatedAtUTC: "2026-01-05T00:00:00Z"}
	if err := store.SaveRun(ctx, newer); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.SaveRun(ctx, older); err != nil {
		t.Fatalf("save run: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("unexpected run count: %d", len(runs))
	}
	if runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected run order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestMemoryStoreBatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.BatchRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "experiment-1",
		Runs:            5,
		Generations:     20,
		Rows: []model.BatchRow{
			{Strategy: "Tit-for-Tat", Mean: 12.4, Min: 10, Max: 15},
		},
	}
	if err := store.SaveBatch(ctx, input); err != nil {
		t.Fatalf("save batch: %v", err)
	}

	output, ok, err := store.GetBatch(ctx, "experiment-1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted batch")
	}
	if len(output.Rows) != 1 || output.Rows[0].Strategy != "Tit-for-Tat" {
		t.Fatalf("unexpected batch: %+v", output)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveRun(ctx, model.RunRecord{ID: "run-1"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	_, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if ok {
		t.Fatal("expected run to be gone after reset")
	}
}
