package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/sensor"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/service"
)

type mockVerifyService struct {
	startScanFn func(ctx context.Context, checkpointID, deviceID string) (*domain.Draft, error)
	confirmFn   func(ctx context.Context, scanID, officerID, note, evidenceRef string) (domain.ScanRecord, error)
	abandonFn   func(scanID string) error
	recordsFn   func(ctx context.Context, q *database.ScanQuery) ([]domain.ScanRecord, error)
}

func (m *mockVerifyService) StartScan(ctx context.Context, checkpointID, deviceID string) (*domain.Draft, error) {
	return m.startScanFn(ctx, checkpointID, deviceID)
}

func (m *mockVerifyService) Confirm(ctx context.Context, scanID, officerID, note, evidenceRef string) (domain.ScanRecord, error) {
	return m.confirmFn(ctx, scanID, officerID, note, evidenceRef)
}

func (m *mockVerifyService) Abandon(scanID string) error {
	return m.abandonFn(scanID)
}

func (m *mockVerifyService) Records(ctx context.Context, q *database.ScanQuery) ([]domain.ScanRecord, error) {
	return m.recordsFn(ctx, q)
}

// mockSyncService covers both handler-side sync interfaces so one mock
// serves the scan and registry tests.
type mockSyncService struct {
	pushedScans       []domain.ScanRecord
	pushedCheckpoints []domain.Checkpoint
	pushedOfficers    []domain.Officer
	pushedRemovals    []string
	pullFn            func(ctx context.Context) error
}

func (m *mockSyncService) PushScan(rec domain.ScanRecord) {
	m.pushedScans = append(m.pushedScans, rec)
}

func (m *mockSyncService) PushCheckpoint(cp domain.Checkpoint) {
	m.pushedCheckpoints = append(m.pushedCheckpoints, cp)
}

func (m *mockSyncService) PushOfficer(o domain.Officer) {
	m.pushedOfficers = append(m.pushedOfficers, o)
}

func (m *mockSyncService) PushOfficerRemoval(id string) {
	m.pushedRemovals = append(m.pushedRemovals, id)
}

func (m *mockSyncService) Pull(ctx context.Context) error {
	if m.pullFn != nil {
		return m.pullFn(ctx)
	}
	return nil
}

func setupScanRouter(svc verificationService, sync scanSyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewScanHandler(svc, sync)
	h.Register(r.Group(""))
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestStartScan_ReturnsDraft(t *testing.T) {
	svc := &mockVerifyService{
		startScanFn: func(_ context.Context, checkpointID, deviceID string) (*domain.Draft, error) {
			if checkpointID != "cp-1" {
				t.Fatalf("unexpected checkpointID: %s", checkpointID)
			}
			if deviceID != "UNIT-01" {
				t.Fatalf("unexpected deviceID: %s", deviceID)
			}
			return &domain.Draft{
				Record: domain.ScanRecord{
					ID:             "1715003456000-a1b2c3d4",
					CheckpointID:   "cp-1",
					CheckpointName: "Main Gate Post",
					Status:         domain.ScanValid,
					DistanceM:      12.5,
					Note:           "on site: 12m from checkpoint",
				},
				State: domain.StateAwaitingConfirmation,
			}, nil
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans", `{"checkpoint_id":"cp-1","device_id":"UNIT-01"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	var resp domain.Draft
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.State != domain.StateAwaitingConfirmation {
		t.Errorf("expected AWAITING_CONFIRMATION, got %s", resp.State)
	}
	if resp.Record.Status != domain.ScanValid {
		t.Errorf("expected VALID, got %s", resp.Record.Status)
	}
	if resp.Record.ID == "" {
		t.Error("expected a scan id")
	}
}

func TestStartScan_MissingFields(t *testing.T) {
	r := setupScanRouter(&mockVerifyService{}, &mockSyncService{})
	w := postJSON(r, "/scans", `{"checkpoint_id":"cp-1"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStartScan_InvalidBody(t *testing.T) {
	r := setupScanRouter(&mockVerifyService{}, &mockSyncService{})
	w := postJSON(r, "/scans", `not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestStartScan_UnknownCheckpoint(t *testing.T) {
	svc := &mockVerifyService{
		startScanFn: func(_ context.Context, _, _ string) (*domain.Draft, error) {
			return nil, service.ErrUnknownCheckpoint
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans", `{"checkpoint_id":"cp-404","device_id":"UNIT-01"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestStartScan_SensorTimeout(t *testing.T) {
	svc := &mockVerifyService{
		startScanFn: func(_ context.Context, _, _ string) (*domain.Draft, error) {
			return nil, fmt.Errorf("acquire location: %w", sensor.ErrTimeout)
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans", `{"checkpoint_id":"cp-1","device_id":"UNIT-01"}`)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
}

func TestStartScan_PermissionDenied(t *testing.T) {
	svc := &mockVerifyService{
		startScanFn: func(_ context.Context, _, _ string) (*domain.Draft, error) {
			return nil, fmt.Errorf("acquire location: %w", sensor.ErrPermissionDenied)
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans", `{"checkpoint_id":"cp-1","device_id":"UNIT-01"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestStartScan_Superseded(t *testing.T) {
	svc := &mockVerifyService{
		startScanFn: func(_ context.Context, _, _ string) (*domain.Draft, error) {
			return nil, fmt.Errorf("acquire location: %w", sensor.ErrSuperseded)
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans", `{"checkpoint_id":"cp-1","device_id":"UNIT-01"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestConfirmScan_FinalizesAndPushes(t *testing.T) {
	rec := domain.ScanRecord{
		ID:             "scan-1",
		CheckpointID:   "cp-1",
		CheckpointName: "Main Gate Post",
		Officer:        "Budi Santoso (PTR-01)",
		Status:         domain.ScanValid,
	}
	svc := &mockVerifyService{
		confirmFn: func(_ context.Context, scanID, officerID, note, evidenceRef string) (domain.ScanRecord, error) {
			if scanID != "scan-1" {
				t.Fatalf("unexpected scanID: %s", scanID)
			}
			if officerID != "PTR-01" {
				t.Fatalf("unexpected officerID: %s", officerID)
			}
			if note != "gate locked" {
				t.Fatalf("unexpected note: %s", note)
			}
			return rec, nil
		},
	}
	sync := &mockSyncService{}

	r := setupScanRouter(svc, sync)
	w := postJSON(r, "/scans/scan-1/confirm", `{"officer_id":"PTR-01","note":"gate locked"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Record domain.ScanRecord `json:"record"`
		State  domain.ScanState  `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.State != domain.StateFinalized {
		t.Errorf("expected FINALIZED, got %s", resp.State)
	}
	if resp.Record.Officer != "Budi Santoso (PTR-01)" {
		t.Errorf("unexpected officer: %s", resp.Record.Officer)
	}
	if len(sync.pushedScans) != 1 {
		t.Fatalf("expected 1 pushed scan, got %d", len(sync.pushedScans))
	}
	if sync.pushedScans[0].ID != "scan-1" {
		t.Errorf("expected scan-1 pushed, got %s", sync.pushedScans[0].ID)
	}
}

func TestConfirmScan_OfficerRequired(t *testing.T) {
	svc := &mockVerifyService{
		confirmFn: func(_ context.Context, _, _, _, _ string) (domain.ScanRecord, error) {
			return domain.ScanRecord{}, service.ErrOfficerRequired
		},
	}
	sync := &mockSyncService{}

	r := setupScanRouter(svc, sync)
	w := postJSON(r, "/scans/scan-1/confirm", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(sync.pushedScans) != 0 {
		t.Errorf("expected no pushed scans, got %d", len(sync.pushedScans))
	}
}

func TestConfirmScan_NotFound(t *testing.T) {
	svc := &mockVerifyService{
		confirmFn: func(_ context.Context, _, _, _, _ string) (domain.ScanRecord, error) {
			return domain.ScanRecord{}, service.ErrScanNotFound
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans/gone/confirm", `{"officer_id":"PTR-01"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAbandonScan_Success(t *testing.T) {
	svc := &mockVerifyService{
		abandonFn: func(scanID string) error {
			if scanID != "scan-1" {
				t.Fatalf("unexpected scanID: %s", scanID)
			}
			return nil
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans/scan-1/abandon", ``)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestAbandonScan_NotFound(t *testing.T) {
	svc := &mockVerifyService{
		abandonFn: func(_ string) error {
			return service.ErrScanNotFound
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := postJSON(r, "/scans/gone/abandon", ``)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListScans_ForwardsQuery(t *testing.T) {
	svc := &mockVerifyService{
		recordsFn: func(_ context.Context, q *database.ScanQuery) ([]domain.ScanRecord, error) {
			if q.Checkpoint != "cp-1" {
				t.Fatalf("unexpected checkpoint filter: %s", q.Checkpoint)
			}
			if q.Officer != "PTR-01" {
				t.Fatalf("unexpected officer filter: %s", q.Officer)
			}
			if q.Limit != 5 {
				t.Fatalf("unexpected limit: %d", q.Limit)
			}
			return []domain.ScanRecord{
				{ID: "s-2", Status: domain.ScanValid},
				{ID: "s-1", Status: domain.ScanInvalidLocation},
			}, nil
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/scans?checkpoint=cp-1&officer=PTR-01&limit=5", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []domain.ScanRecord
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resp))
	}
}

func TestListScans_InvalidLimit(t *testing.T) {
	r := setupScanRouter(&mockVerifyService{}, &mockSyncService{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/scans?limit=abc", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestListScans_EmptyIsArray(t *testing.T) {
	svc := &mockVerifyService{
		recordsFn: func(_ context.Context, _ *database.ScanQuery) ([]domain.ScanRecord, error) {
			return nil, nil
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/scans", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "[]" {
		t.Errorf("expected empty JSON array, got %s", w.Body.String())
	}
}

func TestListScans_ServiceError(t *testing.T) {
	svc := &mockVerifyService{
		recordsFn: func(_ context.Context, _ *database.ScanQuery) ([]domain.ScanRecord, error) {
			return nil, errors.New("db error")
		},
	}

	r := setupScanRouter(svc, &mockSyncService{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/scans", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestTriggerPull_Success(t *testing.T) {
	r := setupScanRouter(&mockVerifyService{}, &mockSyncService{})
	w := postJSON(r, "/sync/pull", ``)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestTriggerPull_RemoteDown(t *testing.T) {
	sync := &mockSyncService{
		pullFn: func(_ context.Context) error {
			return errors.New("connection refused")
		},
	}

	r := setupScanRouter(&mockVerifyService{}, sync)
	w := postJSON(r, "/sync/pull", ``)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}
