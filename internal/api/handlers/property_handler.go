package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/listings"
	"homepath/api/internal/models"
)

// PropertyHandler serves the property search step.
type PropertyHandler struct {
	responder
	search listings.ISearchClient
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(search listings.ISearchClient, timeout time.Duration, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{responder: newResponder(logger, "properties", timeout), search: search}
}

// Search handles GET /api/properties/search.
func (h *PropertyHandler) Search(c *gin.Context) {
	var q models.PropertySearch
	if !bindQuery(c, &q) {
		return
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		failFields(c, map[string]string{"maxPrice": "must not be below minPrice"})
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	results, err := h.search.Search(ctx, q)
	if err != nil {
		h.serviceError(c, err, "property search failed")
		return
	}
	ok(c, http.StatusOK, gin.H{"listings": results, "count": len(results)})
}
