package remotelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

// Store persists the authoritative patrol log in postgres. Scan records are
// stored by checkpoint name only; the remote log never learns checkpoint
// ids, so agents that pull them back rejoin by name.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the log tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checkpoints (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			radius_m DOUBLE PRECISION NOT NULL,
			schedule JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS officers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scan_records (
			id TEXT PRIMARY KEY,
			checkpoint_name TEXT NOT NULL,
			officer TEXT NOT NULL,
			timestamp_ms BIGINT NOT NULL,
			status TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			accuracy_m DOUBLE PRECISION NOT NULL DEFAULT 0,
			distance_m DOUBLE PRECISION NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			evidence_ref TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Checkpoints(ctx context.Context) ([]domain.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, radius_m, schedule FROM checkpoints ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select checkpoints: %w", err)
	}
	defer rows.Close()

	cps := make([]domain.Checkpoint, 0)
	for rows.Next() {
		var (
			cp  domain.Checkpoint
			raw []byte
		)
		if err := rows.Scan(&cp.ID, &cp.Name, &cp.Location.Lat, &cp.Location.Lon, &cp.RadiusM, &raw); err != nil {
			return nil, fmt.Errorf("checkpoint row: %w", err)
		}
		if err := json.Unmarshal(raw, &cp.Schedule); err != nil {
			cp.Schedule = domain.ScheduleConfig{Type: domain.ScheduleNone}
		}
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checkpoint rows: %w", err)
	}
	return cps, nil
}

func (s *Store) Officers(ctx context.Context) ([]domain.Officer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM officers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select officers: %w", err)
	}
	defer rows.Close()

	officers := make([]domain.Officer, 0)
	for rows.Next() {
		var o domain.Officer
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("officer row: %w", err)
		}
		officers = append(officers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("officer rows: %w", err)
	}
	return officers, nil
}

func (s *Store) ScanRecords(ctx context.Context) ([]domain.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, checkpoint_name, officer, timestamp_ms, status, latitude, longitude, accuracy_m, distance_m, note, evidence_ref
			FROM scan_records ORDER BY timestamp_ms DESC`)
	if err != nil {
		return nil, fmt.Errorf("select scan records: %w", err)
	}
	defer rows.Close()

	recs := make([]domain.ScanRecord, 0)
	for rows.Next() {
		var rec domain.ScanRecord
		if err := rows.Scan(
			&rec.ID,
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

func (s *Store) AddCheckpoint(ctx context.Context, cp *domain.Checkpoint) error {
	schedule, err := json.Marshal(cp.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (id, name, latitude, longitude, radius_m, schedule)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				radius_m = EXCLUDED.radius_m,
				schedule = EXCLUDED.schedule`,
		cp.ID, cp.Name, cp.Location.Lat, cp.Location.Lon, cp.RadiusM, schedule)
	if err != nil {
		return fmt.Errorf("upsert checkpoint %s: %w", cp.ID, err)
	}
	return nil
}

func (s *Store) AddOfficer(ctx context.Context, o *domain.Officer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO officers (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		o.ID, o.Name)
	if err != nil {
		return fmt.Errorf("upsert officer %s: %w", o.ID, err)
	}
	return nil
}

func (s *Store) RemoveOfficer(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM officers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete officer %s: %w", id, err)
	}
	return nil
}

// LogScan appends a finalized record. Re-submissions of the same scan id are
// ignored so agents retrying after a lost response cannot duplicate history.
func (s *Store) LogScan(ctx context.Context, rec *domain.ScanRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_records
			(id, checkpoint_name, officer, timestamp_ms, status, latitude, longitude, accuracy_m, distance_m, note, evidence_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
		rec.ID,
		rec.CheckpointName,
		rec.Officer,
		rec.TimestampMS,
		string(rec.Status),
		rec.Location.Lat,
		rec.Location.Lon,
		rec.Location.AccuracyM,
		rec.DistanceM,
		rec.Note,
		rec.EvidenceRef)
	if err != nil {
		return fmt.Errorf("log scan %s: %w", rec.ID, err)
	}
	return nil
}
