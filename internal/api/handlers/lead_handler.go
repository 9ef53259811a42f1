package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/services"
)

// LeadHandler serves lead capture and the admin lead list.
type LeadHandler struct {
	responder
	leadService services.ILeadService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadService services.ILeadService, timeout time.Duration, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{responder: newResponder(logger, "leads", timeout), leadService: leadService}
}

// CreateLead handles POST /api/leads.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var in services.LeadInput
	if !bind(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	lead, err := h.leadService.Create(ctx, in)
	if err != nil {
		h.serviceError(c, err, "lead create failed")
		return
	}
	ok(c, http.StatusCreated, lead)
}

// ListLeads handles GET /api/leads (admin).
func (h *LeadHandler) ListLeads(c *gin.Context) {
	var f services.ListFilter
	if !bindQuery(c, &f) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	leads, err := h.leadService.List(ctx, f)
	if err != nil {
		h.serviceError(c, err, "lead list failed")
		return
	}
	ok(c, http.StatusOK, leads)
}
