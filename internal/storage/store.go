package storage

import (
	"context"

	"github.com/ShaduMan201/symbiosis/internal/model"
)

// Store defines persistence operations for simulation outputs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveBatch(ctx context.Context, batch model.BatchRecord) error
	GetBatch(ctx context.Context, id string) (model.BatchRecord, bool, error)
	ListBatches(ctx context.Context) ([]model.BatchRecord, error)
}

// Resetter is implemented by stores that can drop all persisted records.
type Resetter interface {
	Reset(ctx context.Context) error
}
