package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const sessionColumns = `session_id, caller_phone, twilio_call_sid, start_time, end_time, duration_seconds,
full_transcript, summary, session_number, created_at`

const sqlFinalizeSession = `
UPDATE sessions SET
    end_time = NOW(),
    duration_seconds = $2,
    full_transcript = $3,
    summary = NULLIF($4, '')
WHERE session_id = $1
RETURNING ` + sessionColumns

// FinalizeSession closes a session: the recorded turns are folded into
// full_transcript and the end time, duration and optional summary are stored.
func (s *Store) FinalizeSession(ctx context.Context, sessionID uuid.UUID, params FinalizeSessionParams) (CallSession, error) {
	messages, err := s.GetMessagesBySession(ctx, sessionID)
	if err != nil {
		return CallSession{}, err
	}

	transcript := make([]TranscriptEntry, 0, len(messages))
	for _, m := range messages {
		transcript = append(transcript, TranscriptEntry{
			Speaker:   m.Speaker,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return CallSession{}, fmt.Errorf("failed to encode transcript: %w", err)
	}

	var session CallSession
	err = s.db.GetContext(ctx, &session, sqlFinalizeSession,
		sessionID, int64(params.Duration.Seconds()), string(transcriptJSON), params.Summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallSession{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to finalize session", err)
		return CallSession{}, fmt.Errorf("failed to finalize session: %w", err)
	}
	return session, nil
}

const sqlGetSessionsByPhone = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE caller_phone = $1
ORDER BY start_time DESC`

func (s *Store) GetSessionsByPhone(ctx context.Context, phone string) ([]CallSession, error) {
	var sessions []CallSession
	err := s.db.SelectContext(ctx, &sessions, sqlGetSessionsByPhone, phone)
	if err != nil {
		s.logger.Error(ctx, "failed to get sessions by phone", err)
		return nil, fmt.Errorf("failed to get sessions by phone: %w", err)
	}
	return sessions, nil
}

const sqlGetSessionByID = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE session_id = $1`

func (s *Store) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (CallSession, error) {
	var session CallSession
	err := s.db.GetContext(ctx, &session, sqlGetSessionByID, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallSession{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get session by ID", err)
		return CallSession{}, fmt.Errorf("failed to get session by ID: %w", err)
	}
	return session, nil
}
