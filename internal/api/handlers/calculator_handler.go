package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/journey"
	"homepath/api/internal/models"
)

// CalculatorHandler exposes the pure journey calculations.
type CalculatorHandler struct {
	responder
}

// NewCalculatorHandler creates a new CalculatorHandler.
func NewCalculatorHandler(timeout time.Duration, logger *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{responder: newResponder(logger, "calculators", timeout)}
}

type rateRequest struct {
	journey.RateInput
	SortBy journey.SortKey `json:"sortBy"`
}

type affordabilityRequest struct {
	Income  float64 `json:"income" binding:"gte=0,lte=100000000"`
	Savings float64 `json:"savings" binding:"gte=0,lte=100000000"`
	HasRRSP bool    `json:"hasRRSP"`
}

// incentivesRequest.DownPayment bounds the HBP withdrawal and defaults to the
// minimum down payment for the price.
type incentivesRequest struct {
	PropertyPrice float64 `json:"propertyPrice" binding:"gt=0"`
	IsNewBuild    bool    `json:"isNewBuild"`
	HasRRSP       bool    `json:"hasRRSP"`
	DownPayment   float64 `json:"downPayment" binding:"gte=0"`
}

// PersonalizeRates handles POST /api/rates/personalize.
func (h *CalculatorHandler) PersonalizeRates(c *gin.Context) {
	var req rateRequest
	if !bind(c, &req) {
		return
	}
	quotes, err := journey.PersonalizeRate(req.RateInput, req.SortBy)
	if err != nil {
		h.serviceError(c, err, "rate personalization failed")
		return
	}
	ok(c, http.StatusOK, gin.H{"rates": quotes})
}

// Affordability handles POST /api/calculators/affordability.
func (h *CalculatorHandler) Affordability(c *gin.Context) {
	var req affordabilityRequest
	if !bind(c, &req) {
		return
	}
	breakdown, err := journey.CalculateAffordability(req.Income, req.Savings, req.HasRRSP)
	if err != nil {
		h.serviceError(c, err, "affordability failed")
		return
	}
	ok(c, http.StatusOK, breakdown)
}

// Incentives handles POST /api/calculators/incentives.
func (h *CalculatorHandler) Incentives(c *gin.Context) {
	var req incentivesRequest
	if !bind(c, &req) {
		return
	}
	downPayment := req.DownPayment
	if downPayment == 0 {
		downPayment = journey.MinDownPayment(req.PropertyPrice)
	}
	breakdown := models.AffordabilityBreakdown{AffordablePrice: req.PropertyPrice, DownPayment: downPayment}
	ok(c, http.StatusOK, journey.CalculateIncentives(breakdown, req.PropertyPrice, req.IsNewBuild, req.HasRRSP))
}
