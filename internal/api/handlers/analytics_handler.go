package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/services"
)

// AnalyticsHandler serves the admin dashboard figures.
type AnalyticsHandler struct {
	responder
	analyticsService services.IAnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.IAnalyticsService, timeout time.Duration, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{responder: newResponder(logger, "analytics", timeout), analyticsService: analyticsService}
}

type analyticsQuery struct {
	Since *time.Time `form:"since" time_format:"2006-01-02" time_utc:"1"`
}

// Summary handles GET /api/admin/analytics.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var q analyticsQuery
	if !bindQuery(c, &q) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	summary, err := h.analyticsService.Summary(ctx, q.Since)
	if err != nil {
		h.serviceError(c, err, "analytics summary failed")
		return
	}
	ok(c, http.StatusOK, summary)
}
