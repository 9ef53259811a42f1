package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OutboxTTL is how long mock emails stay readable in Redis.
const OutboxTTL = 15 * time.Minute

// RedisSender implements the Sender interface by storing emails in Redis.
// It stands in for SES when MOCK_SERVICES is on so tests and local tooling
// can read what would have been sent.
type RedisSender struct {
	client redis.Cmdable
	from   string
	logger *zap.Logger
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client redis.Cmdable, from string, logger *zap.Logger) *RedisSender {
	return &RedisSender{client: client, from: from, logger: logger.Named("email_outbox")}
}

// OutboxKey is the Redis key holding the last mock email sent to recipient.
func OutboxKey(recipient string) string {
	return "mockemail:" + strings.ToLower(recipient)
}

// OutboxEntry is a stored mock email.
type OutboxEntry struct {
	To      string    `json:"to"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
	HTML    string    `json:"html,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// Send stores msg once per recipient.
func (s *RedisSender) Send(ctx context.Context, msg Message) error {
	for _, to := range msg.To {
		entry := OutboxEntry{
			To:      to,
			From:    s.from,
			Subject: msg.Subject,
			Text:    msg.Text,
			HTML:    msg.HTML,
			SentAt:  time.Now().UTC(),
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal email data: %w", err)
		}
		key := OutboxKey(to)
		if err := s.client.Set(ctx, key, raw, OutboxTTL).Err(); err != nil {
			return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
		}
		s.logger.Debug("mock email stored", zap.String("key", key), zap.String("subject", msg.Subject))
	}
	return nil
}
