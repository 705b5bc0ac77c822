package callermemory

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=callermemory

import (
	"context"

	"voice-bridge/internal/store"
)

// ProfileStore is the part of the caller profile store the loader needs.
type ProfileStore interface {
	// ResolveOrCreate opens a session for the call and returns up to historyDepth past sessions
	ResolveOrCreate(ctx context.Context, phone, callSID string, historyDepth int) (store.ResolvedSession, error)
}
