package processor

import (
	"context"
	"errors"
	"io"
	"sync"

	"voice-bridge/internal/callermemory"
	"voice-bridge/internal/clients/deepgram"
	"voice-bridge/internal/events"
	"voice-bridge/internal/voicecall/recorder"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/google/uuid"
)

var errClosed = errors.New("use of closed network connection")

type telWrite struct {
	kind      string
	streamSID string
	payload   []byte
}

type fakeTelephony struct {
	frames    chan twilio.Frame
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes []telWrite
}

func newFakeTelephony() *fakeTelephony {
	return &fakeTelephony{
		frames: make(chan twilio.Frame, 256),
		closed: make(chan struct{}),
	}
}

func (f *fakeTelephony) ReadFrame() (twilio.Frame, error) {
	select {
	case frame, ok := <-f.frames:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	case <-f.closed:
		return nil, errClosed
	}
}

func (f *fakeTelephony) WriteMedia(_ context.Context, streamSID string, payload []byte) error {
	return f.write(telWrite{kind: "media", streamSID: streamSID, payload: payload})
}

func (f *fakeTelephony) WriteClear(_ context.Context, streamSID string) error {
	return f.write(telWrite{kind: "clear", streamSID: streamSID})
}

func (f *fakeTelephony) write(w telWrite) error {
	select {
	case <-f.closed:
		return errClosed
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, w)
	return nil
}

func (f *fakeTelephony) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTelephony) Writes() []telWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]telWrite(nil), f.writes...)
}

type fakeAgent struct {
	incoming  chan deepgram.Message
	closed    chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	audio      [][]byte
	keepAlives int
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{
		incoming: make(chan deepgram.Message, 64),
		closed:   make(chan struct{}),
	}
}

func (a *fakeAgent) SendAudio(chunk []byte) error {
	select {
	case <-a.closed:
		return errClosed
	default:
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.audio = append(a.audio, append([]byte(nil), chunk...))
	return nil
}

func (a *fakeAgent) SendKeepAlive() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.keepAlives++
	return nil
}

func (a *fakeAgent) Receive() (deepgram.Message, error) {
	select {
	case m, ok := <-a.incoming:
		if !ok {
			return nil, io.EOF
		}
		return m, nil
	case <-a.closed:
		return nil, errClosed
	}
}

func (a *fakeAgent) Close() error {
	a.closeOnce.Do(func() { close(a.closed) })
	return nil
}

func (a *fakeAgent) Audio() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]byte(nil), a.audio...)
}

func (a *fakeAgent) KeepAlives() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keepAlives
}

type fakeDialer struct {
	agent *fakeAgent
	err   error

	mu       sync.Mutex
	settings []deepgram.Settings
}

func (d *fakeDialer) Dial(_ context.Context, settings deepgram.Settings) (AgentConn, error) {
	d.mu.Lock()
	d.settings = append(d.settings, settings)
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return d.agent, nil
}

func (d *fakeDialer) Settings() []deepgram.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]deepgram.Settings(nil), d.settings...)
}

type loadCall struct {
	identity string
	callSID  string
}

type fakeLoader struct {
	instructions string
	sessionID    uuid.UUID

	mu    sync.Mutex
	calls []loadCall
}

func (l *fakeLoader) Load(_ context.Context, identity, callSID string) callermemory.Result {
	l.mu.Lock()
	l.calls = append(l.calls, loadCall{identity: identity, callSID: callSID})
	l.mu.Unlock()
	return callermemory.Result{
		SessionID:    l.sessionID,
		Instructions: l.instructions,
	}
}

func (l *fakeLoader) Calls() []loadCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]loadCall(nil), l.calls...)
}

type fakeRecorder struct {
	mu     sync.Mutex
	turns  []recorder.Turn
	closes int
}

func (r *fakeRecorder) Record(t recorder.Turn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, t)
	return true
}

func (r *fakeRecorder) Close(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
}

func (r *fakeRecorder) Turns() []recorder.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorder.Turn(nil), r.turns...)
}

func (r *fakeRecorder) Closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

type fakeRecorderFactory struct {
	rec *fakeRecorder
}

func (f fakeRecorderFactory) Start(context.Context, uuid.UUID, string) TurnRecorder {
	return f.rec
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func (p *fakePublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}
