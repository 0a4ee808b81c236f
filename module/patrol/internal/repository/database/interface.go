package database

import (
	"context"
	"time"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

// ScanQuery filters List results. Zero values mean no filter.
type ScanQuery struct {
	Checkpoint string
	Officer    string
	Limit      int
}

type ScanRecordRepository interface {
	Insert(ctx context.Context, rec *domain.ScanRecord) error
	// List returns records newest first. Checkpoint matches id or name so
	// records that lost their id on a remote round trip stay findable.
	List(ctx context.Context, q *ScanQuery) ([]domain.ScanRecord, error)
	// LastValidAt returns the timestamp of the newest VALID record for the
	// checkpoint, matching by id or name, nil when there is none.
	LastValidAt(ctx context.Context, checkpointID, checkpointName string) (*time.Time, error)
	// ReplaceAll swaps the whole collection in one transaction.
	ReplaceAll(ctx context.Context, recs []domain.ScanRecord) error
}

type CheckpointRepository interface {
	LoadAll(ctx context.Context) ([]domain.Checkpoint, error)
	Upsert(ctx context.Context, cp *domain.Checkpoint) error
	ReplaceAll(ctx context.Context, cps []domain.Checkpoint) error
}

type OfficerRepository interface {
	LoadAll(ctx context.Context) ([]domain.Officer, error)
	Upsert(ctx context.Context, o *domain.Officer) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, officers []domain.Officer) error
}
