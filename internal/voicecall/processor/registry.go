package processor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrShuttingDown = errors.New("shutting down, not accepting calls")

const pendingCallTTL = 5 * time.Minute

// PendingCall is a call announced by the answer webhook whose media stream has not
// started yet.
type PendingCall struct {
	CallSID      string
	From         string
	RegisteredAt time.Time
}

// Registry tracks ringing calls and live sessions for the whole process.
type Registry struct {
	mu      sync.Mutex
	pending map[string]PendingCall
	active  map[uuid.UUID]*Session
	closed  bool
	wg      sync.WaitGroup
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[string]PendingCall),
		active:  make(map[uuid.UUID]*Session),
		now:     time.Now,
	}
}

// Register records a ringing call. Entries that never produced a stream expire.
func (r *Registry) Register(callSID, from string) {
	if callSID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for sid, p := range r.pending {
		if now.Sub(p.RegisteredAt) > pendingCallTTL {
			delete(r.pending, sid)
		}
	}
	r.pending[callSID] = PendingCall{CallSID: callSID, From: from, RegisteredAt: now}
}

// Claim removes and returns the ringing call for callSID.
func (r *Registry) Claim(callSID string) (PendingCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[callSID]
	if ok {
		delete(r.pending, callSID)
	}
	return p, ok
}

// Track adds a live session. It fails once the registry is closed.
func (r *Registry) Track(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrShuttingDown
	}
	r.active[s.ID] = s
	r.wg.Add(1)
	return nil
}

// Untrack removes a session added with Track.
func (r *Registry) Untrack(s *Session) {
	r.mu.Lock()
	_, ok := r.active[s.ID]
	delete(r.active, s.ID)
	r.mu.Unlock()
	if ok {
		r.wg.Done()
	}
}

// Active lists live sessions, oldest first.
func (r *Registry) Active() []SessionInfo {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.active))
	for _, s := range r.active {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].StartedAt.Before(infos[j].StartedAt) })
	return infos
}

// Accepting reports whether new sessions are allowed.
func (r *Registry) Accepting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

// Close stops the registry from accepting new sessions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Wait blocks until every tracked session is untracked or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
