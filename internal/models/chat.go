package models

import "time"

// ChatRole partitions chat messages by author.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a session's append-only message log.
type ChatMessage struct {
	ID        string    `bson:"_id" json:"id"`
	SessionID string    `bson:"session_id" json:"sessionId"`
	Role      ChatRole  `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ChatSession is a view over the messages sharing a session id.
type ChatSession struct {
	SessionID string        `json:"sessionId"`
	Messages  []ChatMessage `json:"messages"`
}
