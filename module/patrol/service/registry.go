package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
)

var (
	ErrUnknownCheckpoint = errors.New("unknown checkpoint")
	ErrUnknownOfficer    = errors.New("officer not on roster")
	ErrInvalidSchedule   = errors.New("invalid schedule")
	ErrOfficerIDMissing  = errors.New("officer id is required")
)

// Built-in seed rosters, used only when local persistence yields nothing.
var (
	defaultCheckpoints = []domain.Checkpoint{
		{
			ID:       "cp-main-gate",
			Name:     "Main Gate Post",
			Location: domain.Coordinates{Lat: -6.2088, Lon: 106.8456},
			RadiusM:  50,
			Schedule: domain.ScheduleConfig{Type: domain.ScheduleNone},
		},
		{
			ID:       "cp-east-perimeter",
			Name:     "East Perimeter Post",
			Location: domain.Coordinates{Lat: -6.2101, Lon: 106.8470},
			RadiusM:  50,
			Schedule: domain.ScheduleConfig{Type: domain.ScheduleNone},
		},
	}
	defaultOfficers = []domain.Officer{
		{ID: "PTR-01", Name: "Budi Santoso"},
		{ID: "PTR-02", Name: "Siti Rahayu"},
	}
)

// RegistryService keeps the checkpoint and officer rosters in memory and
// writes every change through to local persistence. The verification path
// only reads; mutations come from admin handlers and reconciliation pulls.
type RegistryService struct {
	cpRepo  database.CheckpointRepository
	offRepo database.OfficerRepository

	mu          sync.RWMutex
	checkpoints map[string]domain.Checkpoint
	officers    map[string]domain.Officer
}

// NewRegistryService loads both rosters. Empty or unreadable local state is
// replaced by the built-in defaults instead of failing startup.
func NewRegistryService(ctx context.Context, cpRepo database.CheckpointRepository, offRepo database.OfficerRepository) *RegistryService {
	s := &RegistryService{
		cpRepo:      cpRepo,
		offRepo:     offRepo,
		checkpoints: make(map[string]domain.Checkpoint),
		officers:    make(map[string]domain.Officer),
	}

	cps, err := cpRepo.LoadAll(ctx)
	if err != nil {
		log.Printf("load checkpoints: %v, seeding defaults", err)
	}
	if len(cps) == 0 {
		cps = defaultCheckpoints
		if err := cpRepo.ReplaceAll(ctx, cps); err != nil {
			log.Printf("persist default checkpoints: %v", err)
		}
	}
	for _, cp := range cps {
		s.checkpoints[cp.ID] = cp
	}

	officers, err := offRepo.LoadAll(ctx)
	if err != nil {
		log.Printf("load officers: %v, seeding defaults", err)
	}
	if len(officers) == 0 {
		officers = defaultOfficers
		if err := offRepo.ReplaceAll(ctx, officers); err != nil {
			log.Printf("persist default officers: %v", err)
		}
	}
	for _, o := range officers {
		s.officers[o.ID] = o
	}

	return s
}

func (s *RegistryService) Checkpoint(id string) (domain.Checkpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[id]
	return cp, ok
}

func (s *RegistryService) Checkpoints() []domain.Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cps := make([]domain.Checkpoint, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		cps = append(cps, cp)
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i].Name < cps[j].Name })
	return cps
}

// AddCheckpoint issues an id when the caller did not bring one and writes
// the checkpoint through to local persistence before exposing it.
func (s *RegistryService) AddCheckpoint(ctx context.Context, cp domain.Checkpoint) (domain.Checkpoint, error) {
	if err := validateSchedule(cp.Schedule); err != nil {
		return domain.Checkpoint{}, err
	}
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Schedule.Type == "" {
		cp.Schedule.Type = domain.ScheduleNone
	}

	if err := s.cpRepo.Upsert(ctx, &cp); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("persist checkpoint: %w", err)
	}

	s.mu.Lock()
	s.checkpoints[cp.ID] = cp
	s.mu.Unlock()
	return cp, nil
}

// UpdateCheckpoint edits the mutable fields of an existing checkpoint. The
// id, name and location never change after creation.
func (s *RegistryService) UpdateCheckpoint(ctx context.Context, id string, radiusM float64, schedule domain.ScheduleConfig) (domain.Checkpoint, error) {
	if err := validateSchedule(schedule); err != nil {
		return domain.Checkpoint{}, err
	}
	if schedule.Type == "" {
		schedule.Type = domain.ScheduleNone
	}

	s.mu.RLock()
	cp, ok := s.checkpoints[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Checkpoint{}, ErrUnknownCheckpoint
	}

	cp.RadiusM = radiusM
	cp.Schedule = schedule
	if err := s.cpRepo.Upsert(ctx, &cp); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("persist checkpoint: %w", err)
	}

	s.mu.Lock()
	s.checkpoints[id] = cp
	s.mu.Unlock()
	return cp, nil
}

// ReplaceCheckpoints swaps the whole roster, cache and persistence both.
// Used by reconciliation pulls, which treat the remote copy as authoritative.
func (s *RegistryService) ReplaceCheckpoints(ctx context.Context, cps []domain.Checkpoint) error {
	s.mu.Lock()
	s.checkpoints = make(map[string]domain.Checkpoint, len(cps))
	for _, cp := range cps {
		s.checkpoints[cp.ID] = cp
	}
	s.mu.Unlock()

	if err := s.cpRepo.ReplaceAll(ctx, cps); err != nil {
		return fmt.Errorf("persist checkpoints: %w", err)
	}
	return nil
}

func (s *RegistryService) Officer(id string) (domain.Officer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.officers[id]
	return o, ok
}

func (s *RegistryService) Officers() []domain.Officer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	officers := make([]domain.Officer, 0, len(s.officers))
	for _, o := range s.officers {
		officers = append(officers, o)
	}
	sort.Slice(officers, func(i, j int) bool { return officers[i].ID < officers[j].ID })
	return officers
}

func (s *RegistryService) AddOfficer(ctx context.Context, o domain.Officer) error {
	o.ID = strings.TrimSpace(o.ID)
	if o.ID == "" {
		return ErrOfficerIDMissing
	}

	if err := s.offRepo.Upsert(ctx, &o); err != nil {
		return fmt.Errorf("persist officer: %w", err)
	}

	s.mu.Lock()
	s.officers[o.ID] = o
	s.mu.Unlock()
	return nil
}

func (s *RegistryService) RemoveOfficer(ctx context.Context, id string) error {
	s.mu.RLock()
	_, ok := s.officers[id]
	s.mu.RUnlock()
	if !ok {
		return ErrUnknownOfficer
	}

	if err := s.offRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete officer: %w", err)
	}

	s.mu.Lock()
	delete(s.officers, id)
	s.mu.Unlock()
	return nil
}

// ReplaceOfficers swaps the whole roster, cache and persistence both.
func (s *RegistryService) ReplaceOfficers(ctx context.Context, officers []domain.Officer) error {
	s.mu.Lock()
	s.officers = make(map[string]domain.Officer, len(officers))
	for _, o := range officers {
		s.officers[o.ID] = o
	}
	s.mu.Unlock()

	if err := s.offRepo.ReplaceAll(ctx, officers); err != nil {
		return fmt.Errorf("persist officers: %w", err)
	}
	return nil
}

func validateSchedule(cfg domain.ScheduleConfig) error {
	switch cfg.Type {
	case "", domain.ScheduleNone:
		return nil
	case domain.ScheduleFixedTime:
		if len(cfg.FixedTimes) == 0 {
			return fmt.Errorf("%w: fixed_times must not be empty", ErrInvalidSchedule)
		}
		for _, raw := range cfg.FixedTimes {
			if _, err := time.Parse("15:04", raw); err != nil {
				return fmt.Errorf("%w: bad fixed time %q", ErrInvalidSchedule, raw)
			}
		}
		if cfg.ToleranceMin < 0 {
			return fmt.Errorf("%w: tolerance_min must not be negative", ErrInvalidSchedule)
		}
		return nil
	case domain.ScheduleInterval:
		if cfg.IntervalMin <= 0 {
			return fmt.Errorf("%w: interval_min must be positive", ErrInvalidSchedule)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSchedule, cfg.Type)
	}
}
