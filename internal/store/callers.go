package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const callerColumns = `phone_number, display_name, master_prompt, ongoing_context, first_call_date,
last_call_date, total_calls, status, created_at, updated_at`

const sqlUpsertCallerForCall = `
INSERT INTO callers (phone_number, last_call_date, total_calls)
VALUES ($1, NOW(), 1)
ON CONFLICT (phone_number)
DO UPDATE SET
    last_call_date = NOW(),
    total_calls = callers.total_calls + 1,
    updated_at = NOW()
RETURNING ` + callerColumns

const sqlGetSessionForCall = `
SELECT session_id, session_number
FROM sessions
WHERE twilio_call_sid = $1 AND caller_phone = $2`

// The conflict clause covers two streams for one call racing past the lookup.
const sqlCreateSessionForCall = `
INSERT INTO sessions (caller_phone, twilio_call_sid, session_number)
VALUES ($1, $2, $3)
ON CONFLICT (twilio_call_sid)
DO UPDATE SET twilio_call_sid = EXCLUDED.twilio_call_sid
RETURNING session_id, session_number`

const sqlGetRecentEndedSessions = `
SELECT session_id, session_number, start_time, full_transcript, summary
FROM sessions
WHERE caller_phone = $1 AND end_time IS NOT NULL AND session_id <> $2
ORDER BY start_time DESC
LIMIT $3`

// ResolveOrCreate bumps the caller's call counter (creating the profile on first
// contact), opens a session for callSID and loads up to historyDepth ended sessions,
// newest first. A stream reconnecting for a callSID that already has a session gets
// that session back without another bump. A historyDepth of zero skips the history query.
func (s *Store) ResolveOrCreate(ctx context.Context, phone, callSID string, historyDepth int) (ResolvedSession, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error(ctx, "failed to begin transaction", err)
		return ResolvedSession{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error(ctx, "failed to rollback transaction", rbErr)
			}
		}
	}()

	var resolved ResolvedSession
	reconnect := false
	if callSID != "" {
		err = tx.QueryRowxContext(ctx, sqlGetSessionForCall, callSID, phone).
			Scan(&resolved.SessionID, &resolved.SessionNumber)
		switch {
		case err == nil:
			reconnect = true
		case errors.Is(err, sql.ErrNoRows):
			err = nil
		default:
			s.logger.Error(ctx, "failed to look up session for call", err)
			return ResolvedSession{}, fmt.Errorf("failed to look up session for call: %w", err)
		}
	}

	if reconnect {
		// the call was already counted when its first stream opened
		if err = tx.GetContext(ctx, &resolved.Caller, sqlGetCallerByPhone, phone); err != nil {
			s.logger.Error(ctx, "failed to get caller for reconnect", err)
			return ResolvedSession{}, fmt.Errorf("failed to get caller for reconnect: %w", err)
		}
	} else {
		if err = tx.GetContext(ctx, &resolved.Caller, sqlUpsertCallerForCall, phone); err != nil {
			s.logger.Error(ctx, "failed to upsert caller", err)
			return ResolvedSession{}, fmt.Errorf("failed to upsert caller: %w", err)
		}

		callSIDParam := sql.NullString{String: callSID, Valid: callSID != ""}
		row := tx.QueryRowxContext(ctx, sqlCreateSessionForCall, phone, callSIDParam, resolved.Caller.TotalCalls)
		if err = row.Scan(&resolved.SessionID, &resolved.SessionNumber); err != nil {
			s.logger.Error(ctx, "failed to create session", err)
			return ResolvedSession{}, fmt.Errorf("failed to create session: %w", err)
		}
	}

	if historyDepth > 0 {
		err = tx.SelectContext(ctx, &resolved.RecentSessions, sqlGetRecentEndedSessions,
			phone, resolved.SessionID, historyDepth)
		if err != nil {
			s.logger.Error(ctx, "failed to load recent sessions", err)
			return ResolvedSession{}, fmt.Errorf("failed to load recent sessions: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		s.logger.Error(ctx, "failed to commit transaction", err)
		return ResolvedSession{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return resolved, nil
}

const sqlGetCallerByPhone = `
SELECT ` + callerColumns + `
FROM callers
WHERE phone_number = $1`

func (s *Store) GetCallerByPhone(ctx context.Context, phone string) (Caller, error) {
	var caller Caller
	err := s.db.GetContext(ctx, &caller, sqlGetCallerByPhone, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Caller{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get caller by phone", err)
		return Caller{}, fmt.Errorf("failed to get caller by phone: %w", err)
	}
	return caller, nil
}

const sqlAppendCallerContext = `
UPDATE callers
SET ongoing_context = COALESCE(ongoing_context, '') || $2 || E'\n',
    updated_at = NOW()
WHERE phone_number = $1`

// AppendCallerContext adds a line to the caller's running background notes.
func (s *Store) AppendCallerContext(ctx context.Context, phone, note string) error {
	result, err := s.db.ExecContext(ctx, sqlAppendCallerContext, phone, note)
	if err != nil {
		s.logger.Error(ctx, "failed to append caller context", err)
		return fmt.Errorf("failed to append caller context: %w", err)
	}
	return requireRowsAffected(result)
}

const sqlUpdateMasterPrompt = `
UPDATE callers
SET master_prompt = $2,
    updated_at = NOW()
WHERE phone_number = $1`

// UpdateMasterPrompt replaces the operator guidance injected into the caller's calls.
func (s *Store) UpdateMasterPrompt(ctx context.Context, phone, prompt string) error {
	result, err := s.db.ExecContext(ctx, sqlUpdateMasterPrompt, phone, prompt)
	if err != nil {
		s.logger.Error(ctx, "failed to update master prompt", err)
		return fmt.Errorf("failed to update master prompt: %w", err)
	}
	return requireRowsAffected(result)
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
