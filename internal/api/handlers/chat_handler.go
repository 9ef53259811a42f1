package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/services"
)

// ChatHandler serves the chat widget.
type ChatHandler struct {
	responder
	chatService services.IChatService
}

// NewChatHandler creates a new ChatHandler. The timeout covers the model call.
func NewChatHandler(chatService services.IChatService, timeout time.Duration, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{responder: newResponder(logger, "chatbot", timeout), chatService: chatService}
}

// GetSession handles GET /api/chatbot/session/:sessionId.
func (h *ChatHandler) GetSession(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	session, err := h.chatService.GetSession(ctx, c.Param("sessionId"))
	if err != nil {
		h.serviceError(c, err, "chat session lookup failed")
		return
	}
	ok(c, http.StatusOK, session)
}

// SendMessage handles POST /api/chatbot/message and returns the assistant's reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var in services.ChatMessageInput
	if !bind(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	reply, err := h.chatService.SendMessage(ctx, in.SessionID, in.Message)
	if err != nil {
		h.serviceError(c, err, "chat message failed")
		return
	}
	ok(c, http.StatusOK, reply)
}
