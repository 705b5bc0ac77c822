package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const sqlCreateMessageForSession = `
INSERT INTO messages (session_id, speaker, content, provider_data)
VALUES ($1, $2, $3, $4)
RETURNING message_id, session_id, timestamp, speaker, content, provider_data, created_at`

// CreateMessage appends one conversation turn to a session. providerData is the raw
// agent payload and may be nil.
func (s *Store) CreateMessage(ctx context.Context, sessionID uuid.UUID, speaker, content string, providerData []byte) (Message, error) {
	var raw interface{}
	if len(providerData) > 0 {
		raw = string(providerData)
	}

	var message Message
	err := s.db.GetContext(ctx, &message, sqlCreateMessageForSession, sessionID, speaker, content, raw)
	if err != nil {
		s.logger.Error(ctx, "failed to create message", err)
		return Message{}, fmt.Errorf("failed to create message: %w", err)
	}
	return message, nil
}

const sqlGetMessagesBySession = `
SELECT message_id, session_id, timestamp, speaker, content, provider_data, created_at
FROM messages
WHERE session_id = $1
ORDER BY timestamp ASC`

func (s *Store) GetMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	var messages []Message
	err := s.db.SelectContext(ctx, &messages, sqlGetMessagesBySession, sessionID)
	if err != nil {
		s.logger.Error(ctx, "failed to get messages by session", err)
		return nil, fmt.Errorf("failed to get messages by session: %w", err)
	}
	return messages, nil
}
