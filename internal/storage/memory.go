package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]model.RunRecord
	batches map[string]model.BatchRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.RunRecord)
	s.batches = make(map[string]model.BatchRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveBatch(_ context.Context, batch model.BatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[batch.ID] = batch
	return nil
}

func (s *MemoryStore) GetBatch(_ context.Context, id string) (model.BatchRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[id]
	return batch, ok, nil
}

func (s *MemoryStore) ListBatches(_ context.Context) ([]model.BatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batches := make([]model.BatchRecord, 0, len(s.batches))
	for _, batch := range s.batches {
		batches = append(batches, batch)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].CreatedAtUTC != batches[j].CreatedAtUTC {
			return batches[i].CreatedAtUTC < batches[j].CreatedAtUTC
		}
		return batches[i].ID < batches[j].ID
	})
	return batches, nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

// sortRuns orders records oldest first so listings read as a timeline.
// Timestamps are RFC 3339 UTC, so string order matches chronological order.
func sortRuns(runs []model.RunRecord) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC
		}
		return runs[i].ID < runs[j].ID
	})
}
