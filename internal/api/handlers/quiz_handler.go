package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/api/middleware"
	"homepath/api/internal/services"
)

// QuizHandler serves the affordability quiz.
type QuizHandler struct {
	responder
	quizService services.IQuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService services.IQuizService, timeout time.Duration, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{responder: newResponder(logger, "quiz", timeout), quizService: quizService}
}

// GetResponse handles GET /api/quiz/response/:id. The id may be the response
// id, the user id or the session id.
func (h *QuizHandler) GetResponse(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	resp, err := h.quizService.FindByID(ctx, c.Param("id"))
	if err != nil {
		h.serviceError(c, err, "quiz lookup failed")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Submit handles POST /api/quiz/submit. A signed-in client's answers are kept
// under their own user id so every milestone lands on one progress record.
func (h *QuizHandler) Submit(c *gin.Context) {
	var sub services.QuizSubmission
	if !bind(c, &sub) {
		return
	}
	if userID := middleware.UserID(c); userID != "" && !c.GetBool(middleware.ContextKeyIsAdmin) {
		sub.UserID = userID
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	resp, milestoneUpdated, err := h.quizService.Submit(ctx, sub)
	if err != nil {
		h.serviceError(c, err, "quiz submit failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp, "milestoneUpdated": milestoneUpdated})
}
