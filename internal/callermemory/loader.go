package callermemory

import (
	"context"
	"strings"

	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"

	"github.com/google/uuid"
)

// UnknownCaller is the identity used when no phone number could be resolved.
const UnknownCaller = "unknown"

type Config struct {
	BasePersonality string
	// HistoryDepth is how many past sessions are fetched before filtering.
	HistoryDepth int
	Digest       DigestConfig
}

// Result is what a call needs from memory before the agent is configured.
// SessionID is uuid.Nil when the store could not open a session; such a call is
// not recorded.
type Result struct {
	SessionID     uuid.UUID
	SessionNumber int
	Caller        store.Caller
	Digest        string
	Instructions  string
}

// Recorded reports whether the call has a session row to record into.
func (r Result) Recorded() bool {
	return r.SessionID != uuid.Nil
}

type Loader struct {
	store  ProfileStore
	cfg    Config
	logger *observability.Logger
}

func NewLoader(profileStore ProfileStore, cfg Config, logger *observability.Logger) *Loader {
	return &Loader{
		store:  profileStore,
		cfg:    cfg,
		logger: logger,
	}
}

// Load opens the call's session and builds the agent instructions for identity.
// It never fails: a store error yields the base personality and no session.
func (l *Loader) Load(ctx context.Context, identity, callSID string) Result {
	known := identity != "" && identity != UnknownCaller
	phone := identity
	if !known {
		phone = UnknownCaller
	}
	depth := 0
	if known {
		depth = l.cfg.HistoryDepth
	}

	base := Result{
		Caller:       store.Caller{PhoneNumber: phone},
		Instructions: l.cfg.BasePersonality,
	}

	resolved, err := l.store.ResolveOrCreate(ctx, phone, callSID, depth)
	if err != nil {
		l.logger.Error(ctx, "failed to load caller memory, continuing without it", err)
		return base
	}

	result := Result{
		SessionID:     resolved.SessionID,
		SessionNumber: resolved.SessionNumber,
		Caller:        resolved.Caller,
		Instructions:  l.cfg.BasePersonality,
	}
	if !known {
		return result
	}

	result.Digest = BuildDigest(resolved.RecentSessions, l.cfg.Digest)
	result.Instructions = ComposeInstructions(l.cfg.BasePersonality, resolved.Caller, result.Digest)

	l.logger.Info(ctx, "caller memory loaded",
		observability.Field{Key: "session_number", Value: resolved.SessionNumber},
		observability.Field{Key: "history_sessions", Value: len(resolved.RecentSessions)},
		observability.Field{Key: "digest_chars", Value: len(result.Digest)},
	)
	return result
}

// ComposeInstructions appends operator guidance, background notes and the digest to
// the base personality, skipping whichever parts are empty.
func ComposeInstructions(base string, caller store.Caller, digest string) string {
	parts := []string{base}
	if g := strings.TrimSpace(caller.MasterPrompt); g != "" {
		parts = append(parts, "OPERATOR GUIDANCE FOR THIS CALLER\n"+g)
	}
	if notes := strings.TrimSpace(caller.OngoingContext); notes != "" {
		parts = append(parts, "BACKGROUND NOTES\n"+notes)
	}
	if digest != "" {
		parts = append(parts, digest)
	}
	if len(parts) == 1 {
		return base
	}
	return strings.Join(parts, "\n\n")
}
