package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/api/middleware"
	"homepath/api/internal/models"
	"homepath/api/internal/services"
)

// AppointmentHandler serves viewing bookings.
type AppointmentHandler struct {
	responder
	appointmentService services.IAppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointmentService services.IAppointmentService, timeout time.Duration, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{responder: newResponder(logger, "appointments", timeout), appointmentService: appointmentService}
}

type appointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

// CreateAppointment handles POST /api/appointments. A signed-in client's
// booking also completes the viewing milestone.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var in services.AppointmentInput
	if !bind(c, &in) {
		return
	}
	if userID := middleware.UserID(c); userID != "" && !c.GetBool(middleware.ContextKeyIsAdmin) {
		in.UserID = userID
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	appt, milestoneUpdated, err := h.appointmentService.Create(ctx, in)
	if err != nil {
		h.serviceError(c, err, "appointment create failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": appt, "milestoneUpdated": milestoneUpdated})
}

// ListAppointments handles GET /api/appointments (admin).
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	var f services.ListFilter
	if !bindQuery(c, &f) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	appts, err := h.appointmentService.List(ctx, f)
	if err != nil {
		h.serviceError(c, err, "appointment list failed")
		return
	}
	ok(c, http.StatusOK, appts)
}

// UpdateAppointmentStatus handles PATCH /api/appointments/:id (admin).
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req appointmentStatusRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	appt, err := h.appointmentService.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		h.serviceError(c, err, "appointment status update failed")
		return
	}
	ok(c, http.StatusOK, appt)
}

// DeleteAppointment handles DELETE /api/appointments/:id (admin).
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.appointmentService.Delete(ctx, c.Param("id")); err != nil {
		h.serviceError(c, err, "appointment delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
