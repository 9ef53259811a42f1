package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"homepath/api/internal/chatbot"
	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/models"
	"homepath/api/internal/utils"
)

// ChatMessageInput is the body of a chat message request.
type ChatMessageInput struct {
	SessionID string `json:"sessionId" binding:"required,max=128"`
	Message   string `json:"message" binding:"required,max=2000"`
}

// IChatService keeps the chat widget's message log and talks to the assistant.
type IChatService interface {
	GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error)
	SendMessage(ctx context.Context, sessionID, text string) (*models.ChatMessage, error)
}

type chatService struct {
	db           *mongo.Database
	completer    chatbot.ICompleter
	historyLimit int
	logger       *zap.Logger
}

// NewChatService creates a new ChatService. historyLimit bounds how many
// earlier messages are sent to the assistant.
func NewChatService(db *mongo.Database, completer chatbot.ICompleter, historyLimit int, logger *zap.Logger) IChatService {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &chatService{db: db, completer: completer, historyLimit: historyLimit, logger: logger.Named("chat")}
}

// GetSession returns every message of a session, oldest first. Message ids
// are time-ordered, so sorting by id keeps the conversation order. An unknown
// session is returned empty.
func (s *chatService) GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	msgs, err := db.FindMany[models.ChatMessage](ctx, s.db, db.CollectionChatMessages,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return &models.ChatSession{SessionID: sessionID, Messages: msgs}, nil
}

// SendMessage appends the user's message, asks the assistant with the recent
// history and appends its reply.
func (s *chatService) SendMessage(ctx context.Context, sessionID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &journey.ValidationError{Fields: map[string]string{"message": "must not be empty"}}
	}

	if _, err := s.appendMessage(ctx, sessionID, models.ChatRoleUser, text); err != nil {
		return nil, err
	}

	history, err := s.recent(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, history)
	if err != nil {
		s.logger.Error("assistant completion failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
	}
	return s.appendMessage(ctx, sessionID, models.ChatRoleAssistant, reply)
}

func (s *chatService) appendMessage(ctx context.Context, sessionID string, role models.ChatRole, content string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	op := func() error {
		msg.ID = utils.NewSortableID()
		return db.InsertOne(ctx, s.db, db.CollectionChatMessages, msg)
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to store chat message: %w", err)
	}
	return msg, nil
}

// recent loads the newest historyLimit messages in chronological order.
func (s *chatService) recent(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	msgs, err := db.FindMany[models.ChatMessage](ctx, s.db, db.CollectionChatMessages,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(s.historyLimit)))
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
