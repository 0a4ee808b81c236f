package remotelog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
)

type logStore interface {
	Checkpoints(ctx context.Context) ([]domain.Checkpoint, error)
	Officers(ctx context.Context) ([]domain.Officer, error)
	ScanRecords(ctx context.Context) ([]domain.ScanRecord, error)
	AddCheckpoint(ctx context.Context, cp *domain.Checkpoint) error
	AddOfficer(ctx context.Context, o *domain.Officer) error
	RemoveOfficer(ctx context.Context, id string) error
	LogScan(ctx context.Context, rec *domain.ScanRecord) error
}

// Handler exposes the remote log's two endpoints: the snapshot agents pull
// and the tagged-action submit they push to.
type Handler struct {
	store logStore
}

func NewHandler(store logStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	r.GET("/snapshot", h.Snapshot)
	r.POST("/submit", h.Submit)
}

func (h *Handler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()

	cps, err := h.store.Checkpoints(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read checkpoints"})
		return
	}
	officers, err := h.store.Officers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read officers"})
		return
	}
	recs, err := h.store.ScanRecords(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read scan records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkpoints":  cps,
		"officers":     officers,
		"scan_records": recs,
	})
}

type submitEnvelope struct {
	Action     string             `json:"action"`
	Scan       *domain.ScanRecord `json:"scan"`
	Checkpoint *domain.Checkpoint `json:"checkpoint"`
	Officer    *domain.Officer    `json:"officer"`
	OfficerID  string             `json:"officer_id"`
}

func (h *Handler) Submit(c *gin.Context) {
	var env submitEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var err error
	switch env.Action {
	case "log_scan":
		if env.Scan == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scan payload is required"})
			return
		}
		// The log keeps names only; drop the agent-local id on the way in.
		env.Scan.CheckpointID = ""
		err = h.store.LogScan(ctx, env.Scan)
	case "add_checkpoint":
		if env.Checkpoint == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "checkpoint payload is required"})
			return
		}
		err = h.store.AddCheckpoint(ctx, env.Checkpoint)
	case "add_officer":
		if env.Officer == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "officer payload is required"})
			return
		}
		err = h.store.AddOfficer(ctx, env.Officer)
	case "remove_officer":
		if env.OfficerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "officer_id is required"})
			return
		}
		err = h.store.RemoveOfficer(ctx, env.OfficerID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply submission"})
		return
	}
	c.Status(http.StatusNoContent)
}
