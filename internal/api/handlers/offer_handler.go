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

// OfferHandler serves purchase offers. Client routes act on the caller's own offers.
type OfferHandler struct {
	responder
	offerService services.IOfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService services.IOfferService, timeout time.Duration, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{responder: newResponder(logger, "offers", timeout), offerService: offerService}
}

type attachmentRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
}

type offerStatusRequest struct {
	Status models.OfferStatus `json:"status" binding:"required,oneof=accepted rejected"`
}

// CreateOffer handles POST /api/offers.
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var in services.OfferInput
	if !bind(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	offer, err := h.offerService.Create(ctx, middleware.UserID(c), in)
	if err != nil {
		h.serviceError(c, err, "offer create failed")
		return
	}
	ok(c, http.StatusCreated, offer)
}

// GetOffer handles GET /api/offers/:id.
func (h *OfferHandler) GetOffer(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	offer, err := h.offerService.FindByID(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.serviceError(c, err, "offer lookup failed")
		return
	}
	ok(c, http.StatusOK, offer)
}

// SubmitOffer handles POST /api/offers/:id/submit. The offer moves to
// submitted and the make-offer milestone is completed.
func (h *OfferHandler) SubmitOffer(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	offer, milestoneUpdated, err := h.offerService.Submit(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.serviceError(c, err, "offer submit failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": offer, "milestoneUpdated": milestoneUpdated})
}

// AddAttachment handles POST /api/offers/:id/attachments and returns a
// presigned upload URL.
func (h *OfferHandler) AddAttachment(c *gin.Context) {
	var req attachmentRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	upload, err := h.offerService.AddAttachment(ctx, c.Param("id"), middleware.UserID(c), req.Filename, req.ContentType)
	if err != nil {
		h.serviceError(c, err, "attachment presign failed")
		return
	}
	ok(c, http.StatusCreated, upload)
}

// UpdateOfferStatus handles PATCH /api/offers/:id/status (admin).
func (h *OfferHandler) UpdateOfferStatus(c *gin.Context) {
	var req offerStatusRequest
	if !bind(c, &req) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	offer, err := h.offerService.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		h.serviceError(c, err, "offer status update failed")
		return
	}
	ok(c, http.StatusOK, offer)
}
