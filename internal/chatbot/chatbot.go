// Package chatbot answers home-buying questions for the site's chat widget.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"homepath/api/internal/models"
)

// SystemPrompt frames every conversation.
const SystemPrompt = `You are HomePath's assistant for first-time home buyers in British Columbia.
Answer briefly and plainly. You can explain the affordability quiz, mortgage rates,
the Property Transfer Tax first-time buyer exemption, the FHSA, the RRSP Home Buyers' Plan
and the GST new housing rebate. You are not a lawyer or a licensed mortgage broker;
suggest booking a call with an agent for advice on a specific property.`

// ErrEmptyReply is returned when the model produced no text.
var ErrEmptyReply = errors.New("assistant returned an empty reply")

// ICompleter produces the assistant's next reply for a conversation.
type ICompleter interface {
	Complete(ctx context.Context, history []models.ChatMessage) (string, error)
}

// GenAICompleter generates replies with a Gemini model.
type GenAICompleter struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGenAICompleter creates a Gemini-backed completer.
func NewGenAICompleter(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAICompleter{client: client, model: model, logger: logger.Named("chatbot")}, nil
}

// Complete sends the conversation to the model and returns its reply.
func (c *GenAICompleter) Complete(ctx context.Context, history []models.ChatMessage) (string, error) {
	contents := BuildContents(history)
	if len(contents) == 0 {
		return "", fmt.Errorf("conversation is empty")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.4),
		MaxOutputTokens:   512,
	})
	if err != nil {
		c.logger.Error("generate content failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// BuildContents maps stored chat messages onto GenAI conversation turns.
func BuildContents(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == models.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(text, role))
	}
	return contents
}
