package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Storer defines all public methods available on the Store
type Storer interface {
	// Database
	DB() *sqlx.DB
	Ping(ctx context.Context) error
	Close() error

	// Caller operations
	ResolveOrCreate(ctx context.Context, phone, callSID string, historyDepth int) (ResolvedSession, error)
	GetCallerByPhone(ctx context.Context, phone string) (Caller, error)
	AppendCallerContext(ctx context.Context, phone, note string) error
	UpdateMasterPrompt(ctx context.Context, phone, prompt string) error

	// Session operations
	FinalizeSession(ctx context.Context, sessionID uuid.UUID, params FinalizeSessionParams) (CallSession, error)
	GetSessionsByPhone(ctx context.Context, phone string) ([]CallSession, error)
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (CallSession, error)

	// Message operations
	CreateMessage(ctx context.Context, sessionID uuid.UUID, speaker, content string, providerData []byte) (Message, error)
	GetMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]Message, error)
}

var _ Storer = (*Store)(nil)
