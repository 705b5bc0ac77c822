package processor

import (
	"context"
	"sync"
	"time"

	"voice-bridge/internal/callermemory"

	"github.com/google/uuid"
)

// Session is the state of one phone call. It is owned by the relay serving the
// call; other goroutines only read it through its methods.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu        sync.RWMutex
	state     State
	callSID   string
	streamSID string
	identity  string
	recordID  uuid.UUID
	endedAt   time.Time

	streamReady   chan struct{}
	identityReady chan struct{}
	endOnce       sync.Once
}

// SessionInfo is a point-in-time copy of a session for listings.
type SessionInfo struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	CallSID   string    `json:"call_sid"`
	StreamSID string    `json:"stream_sid"`
	Caller    string    `json:"caller"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

func NewSession(now time.Time) *Session {
	return &Session{
		ID:            uuid.New(),
		CreatedAt:     now,
		state:         StateRinging,
		streamReady:   make(chan struct{}),
		identityReady: make(chan struct{}),
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Transition moves the session to a later state. It refuses to go backwards, to
// repeat the current state, or to become active before the stream SID is known.
func (s *Session) Transition(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to <= s.state {
		return false
	}
	if to == StateActive && s.streamSID == "" {
		return false
	}
	s.state = to
	if to == StateEnded {
		s.endedAt = time.Now()
	}
	return true
}

// SetStreamSID records the stream SID. Only the first non-empty value is kept.
func (s *Session) SetStreamSID(sid string) bool {
	if sid == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamSID != "" {
		return false
	}
	s.streamSID = sid
	close(s.streamReady)
	return true
}

func (s *Session) StreamSID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamSID
}

// WaitStreamSID blocks until the stream SID is known or ctx is done.
func (s *Session) WaitStreamSID(ctx context.Context) (string, error) {
	select {
	case <-s.streamReady:
		return s.StreamSID(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SetCallSID records the provider call id if none is known yet.
func (s *Session) SetCallSID(sid string) {
	if sid == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callSID == "" {
		s.callSID = sid
	}
}

func (s *Session) CallSID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callSID
}

// ResolveIdentity fires the one-shot identity signal. An empty identity resolves to
// the unknown caller. It returns false if the identity was already resolved.
func (s *Session) ResolveIdentity(identity string) bool {
	if identity == "" {
		identity = callermemory.UnknownCaller
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.identityReady:
		return false
	default:
	}
	s.identity = identity
	close(s.identityReady)
	return true
}

// WaitIdentity waits up to timeout for the caller identity. When the timeout
// elapses first the session proceeds as the unknown caller.
func (s *Session) WaitIdentity(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.identityReady:
	case <-timer.C:
		s.ResolveIdentity(callermemory.UnknownCaller)
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return s.Identity(), nil
}

func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// SetRecordID stores the id of the persisted session row.
func (s *Session) SetRecordID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordID = id
}

// End moves the session to ENDED and runs finalize. Only the first call does
// anything; it reports whether finalize ran.
func (s *Session) End(finalize func()) bool {
	ran := false
	s.endOnce.Do(func() {
		ran = true
		s.Transition(StateEnded)
		if finalize != nil {
			finalize()
		}
	})
	return ran
}

// Duration is the time from accept to end, or until now for live sessions.
func (s *Session) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endedAt.IsZero() {
		return time.Since(s.CreatedAt)
	}
	return s.endedAt.Sub(s.CreatedAt)
}

func (s *Session) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := SessionInfo{
		ID:        s.ID.String(),
		CallSID:   s.callSID,
		StreamSID: s.streamSID,
		Caller:    s.identity,
		State:     s.state.String(),
		StartedAt: s.CreatedAt,
	}
	if s.recordID != uuid.Nil {
		info.SessionID = s.recordID.String()
	}
	return info
}
