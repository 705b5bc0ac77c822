package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"voice-bridge/internal/callermemory"
	"voice-bridge/internal/clients/deepgram"
	"voice-bridge/internal/events"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voice/audio"
	"voice-bridge/internal/voicecall/recorder"
	"voice-bridge/internal/voicecall/twilio"

	"golang.org/x/sync/errgroup"
)

// Reasons a call's loops stop. Each loop returns one of these so the group tears
// down its siblings.
var (
	ErrCallStopped      = errors.New("call stopped by provider")
	ErrTelephonyClosed  = errors.New("telephony stream closed")
	ErrAgentClosed      = errors.New("agent connection closed")
	ErrAgentUnavailable = errors.New("agent unavailable")
	ErrAudioDrained     = errors.New("caller audio drained")
)

// Config holds per-call relay settings.
type Config struct {
	// Agent is the settings template; Instructions is filled per call.
	Agent             deepgram.SettingsParams
	IdentityTimeout   time.Duration
	ChunkSize         int
	QueueChunks       int
	KeepAliveInterval time.Duration
	PollInterval      time.Duration
	DrainTimeout      time.Duration
	FinalizeTimeout   time.Duration
}

// DefaultConfig returns the relay timings used in production.
func DefaultConfig() Config {
	return Config{
		IdentityTimeout:   5 * time.Second,
		ChunkSize:         audio.DefaultChunkSize,
		QueueChunks:       128,
		KeepAliveInterval: 5 * time.Second,
		PollInterval:      250 * time.Millisecond,
		DrainTimeout:      500 * time.Millisecond,
		FinalizeTimeout:   20 * time.Second,
	}
}

// Relay bridges telephony media streams to the voice agent, one Serve call per
// phone call.
type Relay struct {
	dialer    AgentDialer
	loader    ContextLoader
	recorders RecorderFactory
	events    EventPublisher
	registry  *Registry
	cfg       Config
	logger    *observability.Logger
}

func New(dialer AgentDialer, loader ContextLoader, recorders RecorderFactory, publisher EventPublisher,
	registry *Registry, cfg Config, logger *observability.Logger) *Relay {
	return &Relay{
		dialer:    dialer,
		loader:    loader,
		recorders: recorders,
		events:    publisher,
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
	}
}

// call is the per-call state shared by the loops of one Serve.
type call struct {
	relay *Relay
	sess  *Session
	tel   TelephonyConn
	stats callStats

	// chunks flows from the telephony loop to the agent outbound loop and is
	// closed by the telephony loop.
	chunks  chan []byte
	drained chan struct{}

	mu               sync.Mutex
	agent            AgentConn
	closed           bool
	outboundStarted  bool
	rec              TurnRecorder
	memory           callermemory.Result
	startedPublished bool
}

// Serve runs one call until the caller hangs up, either socket fails, or ctx is
// cancelled. It returns nil for an orderly end.
func (r *Relay) Serve(ctx context.Context, conn TelephonyConn) error {
	sess := NewSession(time.Now())
	if err := r.registry.Track(sess); err != nil {
		conn.Close()
		return err
	}
	defer r.registry.Untrack(sess)
	sess.Transition(StateStreaming)

	ctx = observability.WithFields(ctx, observability.Field{Key: "session", Value: sess.ID.String()})
	r.logger.Info(ctx, "media stream connected")

	c := &call{
		relay:   r,
		sess:    sess,
		tel:     conn,
		chunks:  make(chan []byte, r.cfg.QueueChunks),
		drained: make(chan struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		c.closeSockets()
		return nil
	})
	g.Go(func() error {
		return c.telephonyInbound(gctx)
	})
	g.Go(func() error {
		agent, err := c.setup(gctx)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return c.agentOutbound(gctx, agent)
		})
		streamSID, err := sess.WaitStreamSID(gctx)
		if err != nil {
			return err
		}
		if sess.Transition(StateActive) {
			r.logger.Info(c.logContext(ctx), "call active")
		}
		return c.agentInbound(gctx, agent, streamSID)
	})

	err := g.Wait()
	sess.End(func() { c.finalize(ctx, err) })

	if isOrderlyEnd(err) {
		return nil
	}
	return err
}

func isOrderlyEnd(err error) bool {
	return err == nil ||
		errors.Is(err, ErrCallStopped) ||
		errors.Is(err, ErrTelephonyClosed) ||
		errors.Is(err, ErrAudioDrained) ||
		errors.Is(err, context.Canceled)
}

// setup waits for the caller identity, loads memory, starts the recorder and
// connects the agent.
func (c *call) setup(ctx context.Context) (AgentConn, error) {
	r := c.relay

	identity, err := c.sess.WaitIdentity(ctx, r.cfg.IdentityTimeout)
	if err != nil {
		return nil, err
	}
	logCtx := c.logContext(ctx)
	if identity == callermemory.UnknownCaller {
		r.logger.Info(logCtx, "caller identity unavailable, continuing as unknown caller")
	}

	memory := r.loader.Load(logCtx, identity, c.sess.CallSID())
	c.sess.SetRecordID(memory.SessionID)
	rec := r.recorders.Start(c.logContext(ctx), memory.SessionID, memory.Caller.PhoneNumber)

	c.mu.Lock()
	c.memory = memory
	c.rec = rec
	c.startedPublished = true
	c.mu.Unlock()
	r.events.Publish(events.CallStarted(c.sess.CallSID(), identity))

	params := r.cfg.Agent
	params.Instructions = memory.Instructions
	agent, err := r.dialer.Dial(ctx, deepgram.NewSettings(params))
	if err != nil {
		r.logger.Error(logCtx, "failed to connect voice agent", err)
		return nil, fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	if !c.setAgent(agent) {
		return nil, ctx.Err()
	}
	r.logger.Info(logCtx, "voice agent connected",
		observability.Field{Key: "digest_chars", Value: len(memory.Digest)})
	return agent, nil
}

// telephonyInbound reads media stream frames, buffers caller audio into chunks and
// handles start and stop.
func (c *call) telephonyInbound(ctx context.Context) (err error) {
	r := c.relay
	buf := audio.NewBuffer(r.cfg.ChunkSize)

	defer func() {
		if rest := buf.Flush(); rest != nil {
			select {
			case c.chunks <- rest:
			default:
				r.logger.Warn(c.logContext(ctx), "audio queue full, final chunk dropped")
			}
		}
		close(c.chunks)
		if errors.Is(err, ErrCallStopped) {
			c.waitDrained(ctx)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := c.tel.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return ErrTelephonyClosed
			}
			return fmt.Errorf("%w: %v", ErrTelephonyClosed, err)
		}

		switch f := frame.(type) {
		case twilio.StartFrame:
			c.handleStart(ctx, f)
		case twilio.ConnectedFrame:
			r.logger.Debug(ctx, "media stream handshake received")
		case twilio.MediaFrame:
			if f.Track != "" && f.Track != twilio.TrackInbound {
				continue
			}
			c.stats.bytesFromCaller.Add(int64(len(f.Payload)))
			for _, chunk := range buf.Append(f.Payload) {
				select {
				case c.chunks <- chunk:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case twilio.StopFrame:
			r.logger.Info(c.logContext(ctx), "media stream stopped by provider")
			return ErrCallStopped
		case twilio.MalformedFrame:
			if c.stats.malformedFrames.Add(1) <= 5 {
				r.logger.InfoWithError(c.logContext(ctx), "skipping malformed media stream frame", f.Err)
			}
		}
	}
}

func (c *call) handleStart(ctx context.Context, f twilio.StartFrame) {
	r := c.relay
	callSID := f.CallSID
	if callSID == "" {
		callSID = f.CustomParameters["callsid"]
	}
	c.sess.SetCallSID(callSID)
	if !c.sess.SetStreamSID(f.StreamSID) {
		r.logger.Warn(c.logContext(ctx), "duplicate start frame ignored")
		return
	}

	identity := f.CustomParameters["caller"]
	pending, ok := r.registry.Claim(c.sess.CallSID())
	if identity == "" && ok {
		identity = pending.From
	}
	c.sess.ResolveIdentity(identity)
	r.logger.Info(c.logContext(ctx), "media stream started")
}

// waitDrained gives the outbound loop a moment to forward the final chunk.
func (c *call) waitDrained(ctx context.Context) {
	c.mu.Lock()
	started := c.outboundStarted
	c.mu.Unlock()
	if !started {
		return
	}
	timer := time.NewTimer(c.relay.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-c.drained:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// agentOutbound forwards caller audio chunks to the agent in order and keeps an
// idle connection alive.
func (c *call) agentOutbound(ctx context.Context, agent AgentConn) error {
	r := c.relay
	c.mu.Lock()
	c.outboundStarted = true
	c.mu.Unlock()
	defer close(c.drained)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	lastSent := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-c.chunks:
			if !ok {
				return ErrAudioDrained
			}
			if err := agent.SendAudio(chunk); err != nil {
				return fmt.Errorf("%w: %v", ErrAgentClosed, err)
			}
			c.stats.chunksToAgent.Add(1)
			c.stats.bytesToAgent.Add(int64(len(chunk)))
			lastSent = time.Now()
		case <-ticker.C:
			if time.Since(lastSent) < r.cfg.KeepAliveInterval {
				continue
			}
			if err := agent.SendKeepAlive(); err != nil {
				return fmt.Errorf("%w: %v", ErrAgentClosed, err)
			}
			lastSent = time.Now()
		}
	}
}

// agentInbound plays agent audio to the caller, handles barge-in and records the
// conversation. All telephony writes for playback happen here, in order.
func (c *call) agentInbound(ctx context.Context, agent AgentConn, streamSID string) error {
	r := c.relay
	for {
		msg, err := agent.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return ErrAgentClosed
			}
			return fmt.Errorf("%w: %v", ErrAgentClosed, err)
		}

		switch m := msg.(type) {
		case deepgram.SynthesizedAudio:
			if err := c.tel.WriteMedia(ctx, streamSID, m.Data); err != nil {
				return fmt.Errorf("%w: %v", ErrTelephonyClosed, err)
			}
			c.stats.bytesFromAgent.Add(int64(len(m.Data)))
		case deepgram.UserStartedSpeaking:
			if err := c.tel.WriteClear(ctx, streamSID); err != nil {
				return fmt.Errorf("%w: %v", ErrTelephonyClosed, err)
			}
			c.stats.clears.Add(1)
		case deepgram.ConversationText:
			c.handleConversationText(ctx, m)
		case deepgram.OtherControl:
			if m.Type == deepgram.TypeError || m.Type == deepgram.TypeWarning {
				r.logger.Warn(c.logContext(ctx), fmt.Sprintf("agent %s: %s", m.Type, string(m.Raw)))
			}
		}
	}
}

func (c *call) handleConversationText(ctx context.Context, m deepgram.ConversationText) {
	var speaker string
	switch m.Role {
	case deepgram.RoleUser:
		speaker = store.SpeakerCaller
	case deepgram.RoleAssistant:
		speaker = store.SpeakerAgent
	default:
		c.relay.logger.Debug(ctx, "dropping conversation text with unknown role "+m.Role)
		return
	}
	c.stats.turns.Add(1)

	c.mu.Lock()
	rec := c.rec
	sessionID := c.memory.SessionID
	c.mu.Unlock()

	if rec != nil {
		rec.Record(recorder.Turn{Speaker: speaker, Content: m.Content, Raw: m.Raw})
	}
	c.relay.events.Publish(events.TranscriptUpdate(sessionID, c.sess.CallSID(), speaker, m.Content))
}

// setAgent stores the agent connection for the watcher. It closes agent and
// returns false when the call is already shutting down.
func (c *call) setAgent(agent AgentConn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		agent.Close()
		return false
	}
	c.agent = agent
	return true
}

// closeSockets unblocks any pending reads so every loop returns.
func (c *call) closeSockets() {
	c.mu.Lock()
	c.closed = true
	agent := c.agent
	c.mu.Unlock()

	c.tel.Close()
	if agent != nil {
		agent.Close()
	}
}

func (c *call) finalize(ctx context.Context, cause error) {
	r := c.relay
	c.closeSockets()

	logCtx := c.logContext(ctx)
	if isOrderlyEnd(cause) {
		r.logger.Info(logCtx, "call ended")
	} else {
		r.logger.InfoWithError(logCtx, "call ended abnormally", cause)
	}

	c.mu.Lock()
	rec := c.rec
	published := c.startedPublished
	c.mu.Unlock()

	if rec != nil {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(logCtx), r.cfg.FinalizeTimeout)
		rec.Close(fctx)
		cancel()
	}
	if published {
		r.events.Publish(events.CallEnded(c.sess.CallSID()))
	}
	c.stats.log(logCtx, r.logger, c.sess)
}

// logContext adds the call identifiers known so far to ctx.
func (c *call) logContext(ctx context.Context) context.Context {
	info := c.sess.Info()
	fields := make([]observability.Field, 0, 4)
	if info.CallSID != "" {
		fields = append(fields, observability.Field{Key: "call_sid", Value: info.CallSID})
	}
	if info.StreamSID != "" {
		fields = append(fields, observability.Field{Key: "stream_sid", Value: info.StreamSID})
	}
	if info.Caller != "" {
		fields = append(fields, observability.Field{Key: "caller", Value: info.Caller})
	}
	if info.SessionID != "" {
		fields = append(fields, observability.Field{Key: "session_id", Value: info.SessionID})
	}
	return observability.WithFields(ctx, fields...)
}
