package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published for dashboards.
const (
	TypeCallStarted      = "call_started"
	TypeCallEnded        = "call_ended"
	TypeTranscriptUpdate = "transcript_update"
)

// Event is one observability notification. Fields that do not apply to the event
// type are left empty.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CallSID   string    `json:"call_sid"`
	Phone     string    `json:"phone,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Speaker   string    `json:"speaker,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CallStarted builds a call_started event
func CallStarted(callSID, phone string) Event {
	return newEvent(TypeCallStarted, callSID, func(e *Event) {
		e.Phone = phone
	})
}

// CallEnded builds a call_ended event
func CallEnded(callSID string) Event {
	return newEvent(TypeCallEnded, callSID, nil)
}

// TranscriptUpdate builds a transcript_update event
func TranscriptUpdate(sessionID uuid.UUID, callSID, speaker, content string) Event {
	return newEvent(TypeTranscriptUpdate, callSID, func(e *Event) {
		if sessionID != uuid.Nil {
			e.SessionID = sessionID.String()
		}
		e.Speaker = speaker
		e.Content = content
	})
}

func newEvent(eventType, callSID string, apply func(*Event)) Event {
	e := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		CallSID:   callSID,
		Timestamp: time.Now().UTC(),
	}
	if apply != nil {
		apply(&e)
	}
	return e
}
