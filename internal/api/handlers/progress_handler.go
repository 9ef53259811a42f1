package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/journey"
	"homepath/api/internal/models"
	"homepath/api/internal/services"
)

// ProgressHandler serves a client's journey progress.
type ProgressHandler struct {
	responder
	progressService services.IProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService services.IProgressService, timeout time.Duration, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{responder: newResponder(logger, "progress", timeout), progressService: progressService}
}

// progressView is a stored record with the state of every milestone resolved.
type progressView struct {
	*models.UserProgress
	Resolved      map[string]journey.MilestoneState `json:"resolved"`
	NextMilestone string                            `json:"nextMilestone,omitempty"`
}

func newProgressView(id string, p *models.UserProgress) progressView {
	var resolveFrom *models.UserProgress
	if p == nil {
		p = &models.UserProgress{ID: id, Milestones: map[string]models.MilestoneEntry{}}
	} else {
		resolveFrom = p
	}
	return progressView{
		UserProgress:  p,
		Resolved:      journey.ResolveAll(resolveFrom, journey.Milestones),
		NextMilestone: journey.NextMilestone(resolveFrom, journey.Milestones),
	}
}

type milestoneUpdateRequest struct {
	MilestoneID string                 `json:"milestoneId" binding:"required"`
	Status      models.MilestoneStatus `json:"status" binding:"required,oneof=pending available in_progress completed"`
	Data        map[string]interface{} `json:"data"`
}

type milestoneCompleteRequest struct {
	Data map[string]interface{} `json:"data"`
}

// GetProgress handles GET /api/progress/:id. A client without a record gets
// an empty one: only the first milestone is available.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	p, err := h.progressService.Get(ctx, id)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		h.serviceError(c, err, "progress lookup failed")
		return
	}
	ok(c, http.StatusOK, newProgressView(id, p))
}

// UpdateMilestone handles PUT /api/progress/:id/milestone.
func (h *ProgressHandler) UpdateMilestone(c *gin.Context) {
	var req milestoneUpdateRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	p, err := h.progressService.UpsertMilestone(ctx, id, req.MilestoneID, req.Status, req.Data)
	if err != nil {
		h.serviceError(c, err, "milestone update failed")
		return
	}
	ok(c, http.StatusOK, newProgressView(id, p))
}

// CompleteMilestone handles POST /api/progress/:id/complete/:milestoneId.
func (h *ProgressHandler) CompleteMilestone(c *gin.Context) {
	var req milestoneCompleteRequest
	if !bindOptional(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	p, err := h.progressService.CompleteMilestone(ctx, id, c.Param("milestoneId"), req.Data)
	if err != nil {
		h.serviceError(c, err, "milestone completion failed")
		return
	}
	ok(c, http.StatusOK, newProgressView(id, p))
}
