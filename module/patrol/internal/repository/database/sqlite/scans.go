package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
)

const insertScanSQL = `INSERT INTO scan_records
	(id, checkpoint_id, checkpoint_name, officer, timestamp_ms, status, latitude, longitude, accuracy_m, distance_m, note, evidence_ref)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectScanColumns = `SELECT id, checkpoint_id, checkpoint_name, officer, timestamp_ms, status, latitude, longitude, accuracy_m, distance_m, note, evidence_ref FROM scan_records`

type ScanRecordStore struct {
	db *sql.DB
}

var _ database.ScanRecordRepository = (*ScanRecordStore)(nil)

func NewScanRecordStore(db *sql.DB) *ScanRecordStore {
	return &ScanRecordStore{db: db}
}

func (s *ScanRecordStore) Insert(ctx context.Context, rec *domain.ScanRecord) error {
	_, err := s.db.ExecContext(ctx, insertScanSQL,
		rec.ID,
		rec.CheckpointID,
		rec.CheckpointName,
		rec.Officer,
		rec.TimestampMS,
		string(rec.Status),
		rec.Location.Lat,
		rec.Location.Lon,
		rec.Location.AccuracyM,
		rec.DistanceM,
		rec.Note,
		rec.EvidenceRef,
	)
	if err != nil {
		return fmt.Errorf("insert scan record: %w", err)
	}
	return nil
}

func (s *ScanRecordStore) List(ctx context.Context, q *database.ScanQuery) ([]domain.ScanRecord, error) {
	query := selectScanColumns
	var (
		conds []string
		args  []any
	)
	if q != nil && q.Checkpoint != "" {
		conds = append(conds, `(checkpoint_id = ? OR checkpoint_name = ?)`)
		args = append(args, q.Checkpoint, q.Checkpoint)
	}
	if q != nil && q.Officer != "" {
		conds = append(conds, `officer LIKE ?`)
		args = append(args, "%"+q.Officer+"%")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp_ms DESC"
	if q != nil && q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scan records: %w", err)
	}
	defer rows.Close()

	recs := make([]domain.ScanRecord, 0)
	for rows.Next() {
		var rec domain.ScanRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CheckpointID,
			&rec.CheckpointName,
			&rec.Officer,
			&rec.TimestampMS,
			&rec.Status,
			&rec.Location.Lat,
			&rec.Location.Lon,
			&rec.Location.AccuracyM,
			&rec.DistanceM,
			&rec.Note,
			&rec.EvidenceRef,
		); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan record rows: %w", err)
	}
	return recs, nil
}

func (s *ScanRecordStore) LastValidAt(ctx context.Context, checkpointID, checkpointName string) (*time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT timestamp_ms FROM scan_records
			WHERE status = ? AND (checkpoint_id = ? OR checkpoint_name = ?)
			ORDER BY timestamp_ms DESC LIMIT 1`,
		string(domain.ScanValid), checkpointID, checkpointName)

	var ms int64
	if err := row.Scan(&ms); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last valid scan: %w", err)
	}
	t := time.UnixMilli(ms)
	return &t, nil
}

func (s *ScanRecordStore) ReplaceAll(ctx context.Context, recs []domain.ScanRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace scan records: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scan_records`); err != nil {
		return fmt.Errorf("clear scan records: %w", err)
	}
	for i := range recs {
		rec := &recs[i]
		if _, err := tx.ExecContext(ctx, insertScanSQL,
			rec.ID,
			rec.CheckpointID,
			rec.CheckpointName,
			rec.Officer,
			rec.TimestampMS,
			string(rec.Status),
			rec.Location.Lat,
			rec.Location.Lon,
			rec.Location.AccuracyM,
			rec.DistanceM,
			rec.Note,
			rec.EvidenceRef,
		); err != nil {
			return fmt.Errorf("replace scan record %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace scan records: %w", err)
	}
	return nil
}
