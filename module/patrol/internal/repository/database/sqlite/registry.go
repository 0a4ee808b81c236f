package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
)

type CheckpointStore struct {
	db *sql.DB
}

var _ database.CheckpointRepository = (*CheckpointStore)(nil)

func NewCheckpointStore(db *sql.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

func (s *CheckpointStore) LoadAll(ctx context.Context) ([]domain.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, radius_m, schedule FROM checkpoints ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load checkpoints: %w", err)
	}
	defer rows.Close()

	cps := make([]domain.Checkpoint, 0)
	for rows.Next() {
		var (
			cp  domain.Checkpoint
			raw string
		)
		if err := rows.Scan(&cp.ID, &cp.Name, &cp.Location.Lat, &cp.Location.Lon, &cp.RadiusM, &raw); err != nil {
			return nil, fmt.Errorf("checkpoint row: %w", err)
		}
		// A schedule blob that no longer parses is treated as absent, not as
		// a reason to lose the checkpoint.
		if err := json.Unmarshal([]byte(raw), &cp.Schedule); err != nil {
			cp.Schedule = domain.ScheduleConfig{Type: domain.ScheduleNone}
		}
		cps = append(cps, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checkpoint rows: %w", err)
	}
	return cps, nil
}

func (s *CheckpointStore) Upsert(ctx context.Context, cp *domain.Checkpoint) error {
	schedule, err := json.Marshal(cp.Schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (id, name, latitude, longitude, radius_m, schedule)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				radius_m = excluded.radius_m,
				schedule = excluded.schedule`,
		cp.ID, cp.Name, cp.Location.Lat, cp.Location.Lon, cp.RadiusM, string(schedule))
	if err != nil {
		return fmt.Errorf("upsert checkpoint %s: %w", cp.ID, err)
	}
	return nil
}

func (s *CheckpointStore) ReplaceAll(ctx context.Context, cps []domain.Checkpoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace checkpoints: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM checkpoints`); err != nil {
		return fmt.Errorf("clear checkpoints: %w", err)
	}
	for i := range cps {
		cp := &cps[i]
		schedule, err := json.Marshal(cp.Schedule)
		if err != nil {
			return fmt.Errorf("marshal schedule: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO checkpoints (id, name, latitude, longitude, radius_m, schedule) VALUES (?, ?, ?, ?, ?, ?)`,
			cp.ID, cp.Name, cp.Location.Lat, cp.Location.Lon, cp.RadiusM, string(schedule)); err != nil {
			return fmt.Errorf("replace checkpoint %s: %w", cp.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace checkpoints: %w", err)
	}
	return nil
}

type OfficerStore struct {
	db *sql.DB
}

var _ database.OfficerRepository = (*OfficerStore)(nil)

func NewOfficerStore(db *sql.DB) *OfficerStore {
	return &OfficerStore{db: db}
}

func (s *OfficerStore) LoadAll(ctx context.Context) ([]domain.Officer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM officers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load officers: %w", err)
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

func (s *OfficerStore) Upsert(ctx context.Context, o *domain.Officer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO officers (id, name) VALUES (?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		o.ID, o.Name)
	if err != nil {
		return fmt.Errorf("upsert officer %s: %w", o.ID, err)
	}
	return nil
}

func (s *OfficerStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM officers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete officer %s: %w", id, err)
	}
	return nil
}

func (s *OfficerStore) ReplaceAll(ctx context.Context, officers []domain.Officer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace officers: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM officers`); err != nil {
		return fmt.Errorf("clear officers: %w", err)
	}
	for i := range officers {
		o := &officers[i]
		if _, err := tx.ExecContext(ctx, `INSERT INTO officers (id, name) VALUES (?, ?)`, o.ID, o.Name); err != nil {
			return fmt.Errorf("replace officer %s: %w", o.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace officers: %w", err)
	}
	return nil
}
