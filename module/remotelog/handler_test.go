package remotelog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

type mockLogStore struct {
	checkpointsFn   func(ctx context.Context) ([]domain.Checkpoint, error)
	officersFn      func(ctx context.Context) ([]domain.Officer, error)
	scanRecordsFn   func(ctx context.Context) ([]domain.ScanRecord, error)
	addCheckpointFn func(ctx context.Context, cp *domain.Checkpoint) error
	addOfficerFn    func(ctx context.Context, o *domain.Officer) error
	removeOfficerFn func(ctx context.Context, id string) error
	logScanFn       func(ctx context.Context, rec *domain.ScanRecord) error
}

func (m *mockLogStore) Checkpoints(ctx context.Context) ([]domain.Checkpoint, error) {
	return m.checkpointsFn(ctx)
}

func (m *mockLogStore) Officers(ctx context.Context) ([]domain.Officer, error) {
	return m.officersFn(ctx)
}

func (m *mockLogStore) ScanRecords(ctx context.Context) ([]domain.ScanRecord, error) {
	return m.scanRecordsFn(ctx)
}

func (m *mockLogStore) AddCheckpoint(ctx context.Context, cp *domain.Checkpoint) error {
	return m.addCheckpointFn(ctx, cp)
}

func (m *mockLogStore) AddOfficer(ctx context.Context, o *domain.Officer) error {
	return m.addOfficerFn(ctx, o)
}

func (m *mockLogStore) RemoveOfficer(ctx context.Context, id string) error {
	return m.removeOfficerFn(ctx, id)
}

func (m *mockLogStore) LogScan(ctx context.Context, rec *domain.ScanRecord) error {
	return m.logScanFn(ctx, rec)
}

func setupRouter(store logStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(store)
	h.Register(r.Group(""))
	return r
}

func submit(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/submit", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSnapshot_AggregatesCollections(t *testing.T) {
	store := &mockLogStore{
		checkpointsFn: func(_ context.Context) ([]domain.Checkpoint, error) {
			return []domain.Checkpoint{{ID: "cp-1", Name: "Main Gate Post"}}, nil
		},
		officersFn: func(_ context.Context) ([]domain.Officer, error) {
			return []domain.Officer{{ID: "PTR-01", Name: "Budi Santoso"}}, nil
		},
		scanRecordsFn: func(_ context.Context) ([]domain.ScanRecord, error) {
			return []domain.ScanRecord{{ID: "s-1", CheckpointName: "Main Gate Post", Status: domain.ScanValid}}, nil
		},
	}

	r := setupRouter(store)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/snapshot", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Checkpoints []domain.Checkpoint `json:"checkpoints"`
		Officers    []domain.Officer    `json:"officers"`
		ScanRecords []domain.ScanRecord `json:"scan_records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Checkpoints) != 1 {
		t.Errorf("expected 1 checkpoint, got %d", len(resp.Checkpoints))
	}
	if len(resp.Officers) != 1 {
		t.Errorf("expected 1 officer, got %d", len(resp.Officers))
	}
	if len(resp.ScanRecords) != 1 {
		t.Errorf("expected 1 scan record, got %d", len(resp.ScanRecords))
	}
}

func TestSnapshot_StoreError(t *testing.T) {
	store := &mockLogStore{
		checkpointsFn: func(_ context.Context) ([]domain.Checkpoint, error) {
			return nil, errors.New("db error")
		},
	}

	r := setupRouter(store)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/snapshot", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestSubmit_LogScanStripsCheckpointID(t *testing.T) {
	var logged *domain.ScanRecord
	store := &mockLogStore{
		logScanFn: func(_ context.Context, rec *domain.ScanRecord) error {
			logged = rec
			return nil
		},
	}

	r := setupRouter(store)
	w := submit(r, `{"action":"log_scan","scan":{"id":"s-1","checkpoint_id":"cp-1","checkpoint_name":"Main Gate Post","status":"VALID"}}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if logged == nil {
		t.Fatal("expected LogScan to be called")
	}
	if logged.CheckpointID != "" {
		t.Errorf("expected checkpoint_id stripped, got %s", logged.CheckpointID)
	}
	if logged.CheckpointName != "Main Gate Post" {
		t.Errorf("expected checkpoint name kept, got %s", logged.CheckpointName)
	}
}

func TestSubmit_AddCheckpoint(t *testing.T) {
	var added *domain.Checkpoint
	store := &mockLogStore{
		addCheckpointFn: func(_ context.Context, cp *domain.Checkpoint) error {
			added = cp
			return nil
		},
	}

	r := setupRouter(store)
	w := submit(r, `{"action":"add_checkpoint","checkpoint":{"id":"cp-2","name":"Warehouse Door","radius_m":30}}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if added == nil || added.ID != "cp-2" {
		t.Fatalf("unexpected checkpoint: %+v", added)
	}
}

func TestSubmit_AddOfficer(t *testing.T) {
	var added *domain.Officer
	store := &mockLogStore{
		addOfficerFn: func(_ context.Context, o *domain.Officer) error {
			added = o
			return nil
		},
	}

	r := setupRouter(store)
	w := submit(r, `{"action":"add_officer","officer":{"id":"PTR-03","name":"Agus Wijaya"}}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if added == nil || added.ID != "PTR-03" {
		t.Fatalf("unexpected officer: %+v", added)
	}
}

func TestSubmit_RemoveOfficer(t *testing.T) {
	var removed string
	store := &mockLogStore{
		removeOfficerFn: func(_ context.Context, id string) error {
			removed = id
			return nil
		},
	}

	r := setupRouter(store)
	w := submit(r, `{"action":"remove_officer","officer_id":"PTR-02"}`)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if removed != "PTR-02" {
		t.Errorf("expected PTR-02, got %s", removed)
	}
}

func TestSubmit_UnknownAction(t *testing.T) {
	r := setupRouter(&mockLogStore{})
	w := submit(r, `{"action":"truncate_everything"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSubmit_MissingPayload(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"log_scan without scan", `{"action":"log_scan"}`},
		{"add_checkpoint without checkpoint", `{"action":"add_checkpoint"}`},
		{"add_officer without officer", `{"action":"add_officer"}`},
		{"remove_officer without id", `{"action":"remove_officer"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(&mockLogStore{})
			w := submit(r, tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSubmit_StoreError(t *testing.T) {
	store := &mockLogStore{
		logScanFn: func(_ context.Context, _ *domain.ScanRecord) error {
			return errors.New("db error")
		},
	}

	r := setupRouter(store)
	w := submit(r, `{"action":"log_scan","scan":{"id":"s-1","checkpoint_name":"Main Gate Post","status":"VALID"}}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
