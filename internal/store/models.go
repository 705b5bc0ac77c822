package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Speaker labels stored with each conversation turn.
const (
	SpeakerCaller = "caller"
	SpeakerAgent  = "agent"
)

// Caller is the durable, cross-call profile of one phone number.
type Caller struct {
	PhoneNumber    string         `db:"phone_number" json:"phone_number"`
	DisplayName    sql.NullString `db:"display_name" json:"-"`
	MasterPrompt   string         `db:"master_prompt" json:"master_prompt"`
	OngoingContext string         `db:"ongoing_context" json:"ongoing_context"`
	FirstCallDate  time.Time      `db:"first_call_date" json:"first_call_date"`
	LastCallDate   sql.NullTime   `db:"last_call_date" json:"-"`
	TotalCalls     int            `db:"total_calls" json:"total_calls"`
	Status         string         `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// CallSession is the stored record of one phone call.
type CallSession struct {
	SessionID       uuid.UUID      `db:"session_id" json:"session_id"`
	CallerPhone     string         `db:"caller_phone" json:"caller_phone"`
	TwilioCallSID   sql.NullString `db:"twilio_call_sid" json:"-"`
	StartTime       time.Time      `db:"start_time" json:"start_time"`
	EndTime         sql.NullTime   `db:"end_time" json:"-"`
	DurationSeconds sql.NullInt64  `db:"duration_seconds" json:"-"`
	FullTranscript  []byte         `db:"full_transcript" json:"-"`
	Summary         sql.NullString `db:"summary" json:"-"`
	SessionNumber   int            `db:"session_number" json:"session_number"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// RecentSession is the slice of a past session used to build caller memory.
type RecentSession struct {
	SessionID      uuid.UUID      `db:"session_id"`
	SessionNumber  int            `db:"session_number"`
	StartTime      time.Time      `db:"start_time"`
	FullTranscript []byte         `db:"full_transcript"`
	Summary        sql.NullString `db:"summary"`
}

// ResolvedSession is returned when a call opens: the caller profile after the
// counter bump, the new session and up to the requested number of past sessions.
type ResolvedSession struct {
	Caller         Caller
	SessionID      uuid.UUID
	SessionNumber  int
	RecentSessions []RecentSession
}

// Message is one recorded conversation turn.
type Message struct {
	MessageID    uuid.UUID `db:"message_id" json:"message_id"`
	SessionID    uuid.UUID `db:"session_id" json:"session_id"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
	Speaker      string    `db:"speaker" json:"speaker"`
	Content      string    `db:"content" json:"content"`
	ProviderData []byte    `db:"provider_data" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TranscriptEntry is the shape of each element of sessions.full_transcript.
type TranscriptEntry struct {
	Speaker   string    `json:"speaker"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FinalizeSessionParams carries the terminal write for a session.
type FinalizeSessionParams struct {
	Duration time.Duration
	Summary  string
}
