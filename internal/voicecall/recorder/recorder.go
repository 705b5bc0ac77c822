package recorder

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"

	"github.com/google/uuid"
)

const (
	DefaultQueueSize = 256

	writeTimeout     = 5 * time.Second
	summaryTimeout   = 15 * time.Second
	unknownCaller    = "unknown"
	contextDateStyle = "2006-01-02"
)

// Turn is one conversation turn waiting to be stored.
type Turn struct {
	Speaker string
	Content string
	Raw     []byte
}

// Factory starts one Recorder per call.
type Factory struct {
	store      Store
	summarizer Summarizer
	logger     *observability.Logger
	queueSize  int
	now        func() time.Time
}

// NewFactory creates a recorder factory. summarizer may be nil, in which case
// sessions are finalized without a summary.
func NewFactory(s Store, summarizer Summarizer, logger *observability.Logger) *Factory {
	return &Factory{
		store:      s,
		summarizer: summarizer,
		logger:     logger,
		queueSize:  DefaultQueueSize,
		now:        time.Now,
	}
}

// Recorder persists the turns of one call in the background. Record never blocks
// and every storage error is logged and dropped.
type Recorder struct {
	store      Store
	summarizer Summarizer
	logger     *observability.Logger
	now        func() time.Time

	sessionID uuid.UUID
	phone     string
	startedAt time.Time
	ctx       context.Context

	mu     sync.RWMutex
	closed bool
	turns  chan Turn
	done   chan struct{}
	once   sync.Once

	// written is only touched by the writer goroutine until done is closed
	written []Turn
}

// Start begins recording for sessionID. With a nil session id the recorder accepts
// and discards turns.
func (f *Factory) Start(ctx context.Context, sessionID uuid.UUID, phone string) *Recorder {
	r := &Recorder{
		store:      f.store,
		summarizer: f.summarizer,
		logger:     f.logger,
		now:        f.now,
		sessionID:  sessionID,
		phone:      phone,
		startedAt:  f.now(),
		ctx:        context.WithoutCancel(ctx),
		done:       make(chan struct{}),
	}
	if sessionID == uuid.Nil {
		r.closed = true
		close(r.done)
		return r
	}
	r.turns = make(chan Turn, f.queueSize)
	go r.run()
	return r
}

// Record queues a turn. It returns false when the turn was dropped.
func (r *Recorder) Record(t Turn) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false
	}
	select {
	case r.turns <- t:
		return true
	default:
		r.logger.Warn(r.ctx, "recorder queue full, dropping turn")
		return false
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for t := range r.turns {
		ctx, cancel := context.WithTimeout(r.ctx, writeTimeout)
		_, err := r.store.CreateMessage(ctx, r.sessionID, t.Speaker, t.Content, t.Raw)
		cancel()
		if err != nil {
			r.logger.Error(r.ctx, "failed to record turn", err)
			continue
		}
		r.written = append(r.written, t)
	}
}

// Close stops accepting turns, waits for queued turns to be written and finalizes
// the session. Only the first call does any work.
func (r *Recorder) Close(ctx context.Context) {
	r.once.Do(func() {
		r.mu.Lock()
		wasClosed := r.closed
		r.closed = true
		if !wasClosed {
			close(r.turns)
		}
		r.mu.Unlock()

		if r.sessionID == uuid.Nil {
			return
		}

		select {
		case <-r.done:
		case <-ctx.Done():
			r.logger.Warn(ctx, "timed out draining recorder, finalizing without summary")
			// ctx has expired; the terminal write gets its own deadline
			finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
			defer cancel()
			r.finalize(finalizeCtx, nil)
			return
		}
		r.finalize(ctx, r.written)
	})
}

func (r *Recorder) finalize(ctx context.Context, turns []Turn) {
	duration := r.now().Sub(r.startedAt)
	summary := r.summarize(ctx, turns)

	_, err := r.store.FinalizeSession(ctx, r.sessionID, store.FinalizeSessionParams{
		Duration: duration,
		Summary:  summary,
	})
	if err != nil {
		r.logger.Error(ctx, "failed to finalize session", err)
	}

	if summary == "" || r.phone == "" || r.phone == unknownCaller {
		return
	}
	note := fmt.Sprintf("%s: %s", r.startedAt.UTC().Format(contextDateStyle), summary)
	if err := r.store.AppendCallerContext(ctx, r.phone, note); err != nil {
		r.logger.Error(ctx, "failed to append caller context", err)
	}
}

func (r *Recorder) summarize(ctx context.Context, turns []Turn) string {
	if r.summarizer == nil || !hasCallerTurn(turns) {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	summary, err := r.summarizer.Summarize(ctx, RenderTranscript(turns))
	if err != nil {
		r.logger.InfoWithError(ctx, "call summary unavailable", err)
		return ""
	}
	return summary
}

// RenderTranscript formats turns as "Caller: ..." / "Agent: ..." lines.
func RenderTranscript(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		label := "Agent"
		if t.Speaker == store.SpeakerCaller {
			label = "Caller"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(t.Content))
		b.WriteByte('\n')
	}
	return b.String()
}

func hasCallerTurn(turns []Turn) bool {
	for _, t := range turns {
		if t.Speaker == store.SpeakerCaller {
			return true
		}
	}
	return false
}
