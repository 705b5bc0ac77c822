package processor

import (
	"context"

	"voice-bridge/internal/callermemory"
	"voice-bridge/internal/clients/deepgram"
	"voice-bridge/internal/events"
	"voice-bridge/internal/voicecall/recorder"
	"voice-bridge/internal/voicecall/twilio"

	"github.com/google/uuid"
)

// TelephonyConn is the media stream socket of one call.
type TelephonyConn interface {
	ReadFrame() (twilio.Frame, error)
	WriteMedia(ctx context.Context, streamSID string, payload []byte) error
	WriteClear(ctx context.Context, streamSID string) error
	Close() error
}

// AgentConn is a configured voice-agent connection.
type AgentConn interface {
	SendAudio(chunk []byte) error
	SendKeepAlive() error
	Receive() (deepgram.Message, error)
	Close() error
}

// AgentDialer opens an agent connection and sends settings.
type AgentDialer interface {
	Dial(ctx context.Context, settings deepgram.Settings) (AgentConn, error)
}

// ContextLoader opens the stored session and builds the agent instructions.
type ContextLoader interface {
	Load(ctx context.Context, identity, callSID string) callermemory.Result
}

// TurnRecorder persists the turns of one call.
type TurnRecorder interface {
	Record(t recorder.Turn) bool
	Close(ctx context.Context)
}

// RecorderFactory starts a TurnRecorder per call.
type RecorderFactory interface {
	Start(ctx context.Context, sessionID uuid.UUID, phone string) TurnRecorder
}

// EventPublisher receives observability events. Publish must not block.
type EventPublisher interface {
	Publish(e events.Event)
}

type deepgramDialer struct {
	client *deepgram.Client
}

// NewAgentDialer adapts a deepgram client to AgentDialer.
func NewAgentDialer(client *deepgram.Client) AgentDialer {
	return deepgramDialer{client: client}
}

func (d deepgramDialer) Dial(ctx context.Context, settings deepgram.Settings) (AgentConn, error) {
	conn, err := d.client.Connect(ctx, settings)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type recorderFactory struct {
	factory *recorder.Factory
}

// NewRecorderFactory adapts a recorder factory to RecorderFactory.
func NewRecorderFactory(f *recorder.Factory) RecorderFactory {
	return recorderFactory{factory: f}
}

func (f recorderFactory) Start(ctx context.Context, sessionID uuid.UUID, phone string) TurnRecorder {
	return f.factory.Start(ctx, sessionID, phone)
}
