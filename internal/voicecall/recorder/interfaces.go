package recorder

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=recorder

import (
	"context"

	"voice-bridge/internal/store"

	"github.com/google/uuid"
)

// Store defines the store interface required by the recorder
type Store interface {
	// CreateMessage appends one turn to a session
	CreateMessage(ctx context.Context, sessionID uuid.UUID, speaker, content string, providerData []byte) (store.Message, error)

	// FinalizeSession writes the end time, duration, transcript and summary
	FinalizeSession(ctx context.Context, sessionID uuid.UUID, params store.FinalizeSessionParams) (store.CallSession, error)

	// AppendCallerContext adds a note to the caller's background context
	AppendCallerContext(ctx context.Context, phone, note string) error
}

// Summarizer turns a rendered transcript into a short summary
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
