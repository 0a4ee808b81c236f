package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/repository/database"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/sensor"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/service"
)

type verificationService interface {
	StartScan(ctx context.Context, checkpointID, deviceID string) (*domain.Draft, error)
	Confirm(ctx context.Context, scanID, officerID, note, evidenceRef string) (domain.ScanRecord, error)
	Abandon(scanID string) error
	Records(ctx context.Context, q *database.ScanQuery) ([]domain.ScanRecord, error)
}

type scanSyncService interface {
	PushScan(rec domain.ScanRecord)
	Pull(ctx context.Context) error
}

type ScanHandler struct {
	verifySvc verificationService
	syncSvc   scanSyncService
}

func NewScanHandler(verifySvc verificationService, syncSvc scanSyncService) *ScanHandler {
	return &ScanHandler{verifySvc: verifySvc, syncSvc: syncSvc}
}

func (h *ScanHandler) Register(r *gin.RouterGroup) {
	r.POST("/scans", h.StartScan)
	r.GET("/scans", h.ListScans)
	r.POST("/scans/:scan_id/confirm", h.ConfirmScan)
	r.POST("/scans/:scan_id/abandon", h.AbandonScan)
	r.POST("/sync/pull", h.TriggerPull)
}

type startScanRequest struct {
	CheckpointID string `json:"checkpoint_id"`
	DeviceID     string `json:"device_id"`
}

func (h *ScanHandler) StartScan(c *gin.Context) {
	var req startScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.CheckpointID == "" || req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checkpoint_id and device_id are required"})
		return
	}

	draft, err := h.verifySvc.StartScan(c.Request.Context(), req.CheckpointID, req.DeviceID)
	if err != nil {
		status, msg := startScanError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, draft)
}

func startScanError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownCheckpoint):
		return http.StatusNotFound, "unknown checkpoint"
	case errors.Is(err, sensor.ErrTimeout):
		return http.StatusGatewayTimeout, "location reading timed out"
	case errors.Is(err, sensor.ErrPermissionDenied):
		return http.StatusServiceUnavailable, "location permission denied"
	case errors.Is(err, sensor.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable, "location device unavailable"
	case errors.Is(err, sensor.ErrSuperseded):
		return http.StatusConflict, "superseded by a newer scan attempt"
	default:
		return http.StatusInternalServerError, "verification failed"
	}
}

type confirmScanRequest struct {
	OfficerID   string `json:"officer_id"`
	Note        string `json:"note"`
	EvidenceRef string `json:"evidence_ref"`
}

func (h *ScanHandler) ConfirmScan(c *gin.Context) {
	var req confirmScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.verifySvc.Confirm(c.Request.Context(), c.Param("scan_id"), req.OfficerID, req.Note, req.EvidenceRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		case errors.Is(err, service.ErrOfficerRequired), errors.Is(err, service.ErrUnknownOfficer):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to finalize scan"})
		}
		return
	}

	h.syncSvc.PushScan(rec)

	c.JSON(http.StatusOK, gin.H{"record": rec, "state": domain.StateFinalized})
}

func (h *ScanHandler) AbandonScan(c *gin.Context) {
	if err := h.verifySvc.Abandon(c.Param("scan_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ScanHandler) ListScans(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = n
	}

	recs, err := h.verifySvc.Records(c.Request.Context(), &database.ScanQuery{
		Checkpoint: c.Query("checkpoint"),
		Officer:    c.Query("officer"),
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scan records"})
		return
	}
	if recs == nil {
		recs = []domain.ScanRecord{}
	}

	c.JSON(http.StatusOK, recs)
}

func (h *ScanHandler) TriggerPull(c *gin.Context) {
	if err := h.syncSvc.Pull(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote log unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}
