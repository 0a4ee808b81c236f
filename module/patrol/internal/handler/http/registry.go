package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/service"
)

type registryService interface {
	Checkpoints() []domain.Checkpoint
	AddCheckpoint(ctx context.Context, cp domain.Checkpoint) (domain.Checkpoint, error)
	UpdateCheckpoint(ctx context.Context, id string, radiusM float64, schedule domain.ScheduleConfig) (domain.Checkpoint, error)
	Officers() []domain.Officer
	AddOfficer(ctx context.Context, o domain.Officer) error
	RemoveOfficer(ctx context.Context, id string) error
}

type registrySyncService interface {
	PushCheckpoint(cp domain.Checkpoint)
	PushOfficer(o domain.Officer)
	PushOfficerRemoval(id string)
}

type RegistryHandler struct {
	registry registryService
	syncSvc  registrySyncService
}

func NewRegistryHandler(registry registryService, syncSvc registrySyncService) *RegistryHandler {
	return &RegistryHandler{registry: registry, syncSvc: syncSvc}
}

func (h *RegistryHandler) Register(r *gin.RouterGroup) {
	r.GET("/checkpoints", h.ListCheckpoints)
	r.POST("/checkpoints", h.CreateCheckpoint)
	r.PUT("/checkpoints/:checkpoint_id", h.UpdateCheckpoint)
	r.GET("/officers", h.ListOfficers)
	r.POST("/officers", h.CreateOfficer)
	r.DELETE("/officers/:officer_id", h.DeleteOfficer)
}

func (h *RegistryHandler) ListCheckpoints(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Checkpoints())
}

type createCheckpointRequest struct {
	Name      string                 `json:"name"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	RadiusM   float64                `json:"radius_m"`
	Schedule  *domain.ScheduleConfig `json:"schedule"`
}

func (h *RegistryHandler) CreateCheckpoint(c *gin.Context) {
	var req createCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if msg := validateCheckpointRequest(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	cp := domain.Checkpoint{
		Name:     req.Name,
		Location: domain.Coordinates{Lat: req.Latitude, Lon: req.Longitude},
		RadiusM:  req.RadiusM,
	}
	if req.Schedule != nil {
		cp.Schedule = *req.Schedule
	}

	created, err := h.registry.AddCheckpoint(c.Request.Context(), cp)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSchedule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkpoint"})
		return
	}

	h.syncSvc.PushCheckpoint(created)

	c.JSON(http.StatusCreated, created)
}

type updateCheckpointRequest struct {
	RadiusM  float64               `json:"radius_m"`
	Schedule domain.ScheduleConfig `json:"schedule"`
}

func (h *RegistryHandler) UpdateCheckpoint(c *gin.Context) {
	var req updateCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.RadiusM <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius_m must be positive"})
		return
	}

	updated, err := h.registry.UpdateCheckpoint(c.Request.Context(), c.Param("checkpoint_id"), req.RadiusM, req.Schedule)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCheckpoint):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown checkpoint"})
		case errors.Is(err, service.ErrInvalidSchedule):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update checkpoint"})
		}
		return
	}

	h.syncSvc.PushCheckpoint(updated)

	c.JSON(http.StatusOK, updated)
}

func (h *RegistryHandler) ListOfficers(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Officers())
}

type createOfficerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *RegistryHandler) CreateOfficer(c *gin.Context) {
	var req createOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ID == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and name are required"})
		return
	}

	officer := domain.Officer{ID: req.ID, Name: req.Name}
	if err := h.registry.AddOfficer(c.Request.Context(), officer); err != nil {
		if errors.Is(err, service.ErrOfficerIDMissing) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create officer"})
		return
	}

	h.syncSvc.PushOfficer(officer)

	c.JSON(http.StatusCreated, officer)
}

func (h *RegistryHandler) DeleteOfficer(c *gin.Context) {
	id := c.Param("officer_id")
	if err := h.registry.RemoveOfficer(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrUnknownOfficer) {
			c.JSON(http.StatusNotFound, gin.H{"error": "officer not on roster"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete officer"})
		return
	}

	h.syncSvc.PushOfficerRemoval(id)

	c.Status(http.StatusNoContent)
}

func validateCheckpointRequest(req *createCheckpointRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return "latitude must be between -90 and 90"
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return "longitude must be between -180 and 180"
	}
	if req.RadiusM <= 0 {
		return "radius_m must be positive"
	}
	return ""
}
