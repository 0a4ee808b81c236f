package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/publisher"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/sensor"
)

// degradedAccuracyMeters is the reported-accuracy threshold above which the
// reading is too weak to place the officer. Past it the geofence test is
// skipped and the scanned token alone carries the verdict.
const degradedAccuracyMeters = 100.0

var (
	ErrOfficerRequired = errors.New("officer selection is required")
	ErrScanNotFound    = errors.New("scan not found")
)

// VerificationService turns a scanned checkpoint token plus a measured
// location and the current clock into a trust verdict. Verdicts sit as
// drafts until Confirm makes them durable or Abandon drops them.
type VerificationService struct {
	registry *RegistryService
	scans    database.ScanRecordRepository
	source   sensor.Source
	events   publisher.VerdictPublisher

	now func() time.Time

	mu     sync.Mutex
	drafts map[string]*domain.Draft
}

func NewVerificationService(registry *RegistryService, scans database.ScanRecordRepository, source sensor.Source, events publisher.VerdictPublisher) *VerificationService {
	return &VerificationService{
		registry: registry,
		scans:    scans,
		source:   source,
		events:   events,
		now:      time.Now,
		drafts:   make(map[string]*domain.Draft),
	}
}

// StartScan runs the verification procedure for one scanned token: resolve
// the checkpoint, wait for a location fix from the device, evaluate schedule
// then geofence, and park the verdict as a draft awaiting confirmation.
//
// Schedule violations win over everything else. A reading with accuracy
// above the degraded threshold can place the officer nowhere, so the
// geofence test is skipped and the scan passes on token trust, never fails.
func (v *VerificationService) StartScan(ctx context.Context, checkpointID, deviceID string) (*domain.Draft, error) {
	cp, ok := v.registry.Checkpoint(checkpointID)
	if !ok {
		return nil, ErrUnknownCheckpoint
	}

	fix, err := v.source.Await(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("acquire location: %w", err)
	}

	now := v.now()

	var lastValid *time.Time
	if cp.Schedule.Type == domain.ScheduleInterval {
		lastValid, err = v.scans.LastValidAt(ctx, cp.ID, cp.Name)
		if err != nil {
			return nil, fmt.Errorf("last valid scan: %w", err)
		}
	}

	distance := haversine(fix.Coordinates.Lat, fix.Coordinates.Lon, cp.Location.Lat, cp.Location.Lon)

	var (
		status domain.ScanStatus
		note   string
	)
	switch {
	case !scheduleAllows(cp.Schedule, now, lastValid):
		status = domain.ScanInvalidTime
		note = "outside allowed visiting window"
	case fix.Coordinates.AccuracyM > degradedAccuracyMeters:
		status = domain.ScanValid
		note = "weak signal, accepted on proof-token trust"
	case distance > cp.RadiusM:
		status = domain.ScanInvalidLocation
		note = fmt.Sprintf("outside geofence: %.0fm from checkpoint (allowed %.0fm)", distance, cp.RadiusM)
	default:
		status = domain.ScanValid
		note = fmt.Sprintf("on site: %.0fm from checkpoint", distance)
	}

	draft := &domain.Draft{
		Record: domain.ScanRecord{
			ID:             newScanID(now),
			CheckpointID:   cp.ID,
			CheckpointName: cp.Name,
			TimestampMS:    now.UnixMilli(),
			Status:         status,
			Location:       fix.Coordinates,
			DistanceM:      distance,
			Note:           note,
		},
		State: domain.StateAwaitingConfirmation,
	}

	v.mu.Lock()
	v.drafts[draft.Record.ID] = draft
	v.mu.Unlock()

	return draft, nil
}

// Confirm finalizes a draft under the named officer. Officer problems leave
// the draft in place so the operator can fix the selection and retry; so
// does a persistence failure. Publishing the verdict event happens after the
// record is durable and its failure never undoes the confirmation.
func (v *VerificationService) Confirm(ctx context.Context, scanID, officerID, note, evidenceRef string) (domain.ScanRecord, error) {
	v.mu.Lock()
	draft, ok := v.drafts[scanID]
	v.mu.Unlock()
	if !ok {
		return domain.ScanRecord{}, ErrScanNotFound
	}

	officerID = strings.TrimSpace(officerID)
	if officerID == "" {
		return domain.ScanRecord{}, ErrOfficerRequired
	}
	officer, ok := v.registry.Officer(officerID)
	if !ok {
		return domain.ScanRecord{}, ErrUnknownOfficer
	}

	rec := draft.Record
	rec.Officer = fmt.Sprintf("%s (%s)", officer.Name, officer.ID)
	if note != "" {
		rec.Note = note
	}
	if evidenceRef != "" {
		rec.EvidenceRef = evidenceRef
	}

	if err := v.scans.Insert(ctx, &rec); err != nil {
		return domain.ScanRecord{}, fmt.Errorf("persist scan: %w", err)
	}

	v.mu.Lock()
	delete(v.drafts, scanID)
	v.mu.Unlock()

	ev := &domain.ScanEvent{
		ScanID:         rec.ID,
		CheckpointID:   rec.CheckpointID,
		CheckpointName: rec.CheckpointName,
		Officer:        rec.Officer,
		Status:         rec.Status,
		DistanceM:      rec.DistanceM,
		TimestampMS:    rec.TimestampMS,
	}
	if err := v.events.PublishVerdict(ctx, ev); err != nil {
		log.Printf("publish verdict %s: %v", rec.ID, err)
	}

	return rec, nil
}

// Abandon discards a pending draft without side effects.
func (v *VerificationService) Abandon(scanID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.drafts[scanID]; !ok {
		return ErrScanNotFound
	}
	delete(v.drafts, scanID)
	return nil
}

// Draft returns a pending draft by scan id.
func (v *VerificationService) Draft(scanID string) (*domain.Draft, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	d, ok := v.drafts[scanID]
	return d, ok
}

// Records lists locally stored scan records, newest first.
func (v *VerificationService) Records(ctx context.Context, q *database.ScanQuery) ([]domain.ScanRecord, error) {
	return v.scans.List(ctx, q)
}

func newScanID(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), uuid.NewString()[:8])
}
