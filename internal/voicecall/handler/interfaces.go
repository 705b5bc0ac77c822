package handler

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=handler

import (
	"context"

	"voice-bridge/internal/events"
	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/processor"

	"github.com/google/uuid"
)

// CallRelay runs one media stream to completion.
type CallRelay interface {
	Serve(ctx context.Context, conn processor.TelephonyConn) error
}

// CallRegistry tracks ringing and live calls.
type CallRegistry interface {
	Register(callSID, from string)
	Accepting() bool
	Active() []processor.SessionInfo
}

// EventSource feeds the dashboard stream.
type EventSource interface {
	Subscribe(buffer int) (<-chan events.Event, func())
}

// OperatorStore defines the database operations behind the operator API
type OperatorStore interface {
	GetCallerByPhone(ctx context.Context, phone string) (store.Caller, error)
	GetSessionsByPhone(ctx context.Context, phone string) ([]store.CallSession, error)
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (store.CallSession, error)
	GetMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]store.Message, error)
	UpdateMasterPrompt(ctx context.Context, phone, prompt string) error
	AppendCallerContext(ctx context.Context, phone, note string) error
}
