package handler

import (
	"context"
	"net/http"
	"time"

	"voice-bridge/internal/config"
	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
)

const (
	defaultHeartbeat = 15 * time.Second
	subscriberBuffer = 64
)

type Handler struct {
	relay     CallRelay
	registry  CallRegistry
	events    EventSource
	store     OperatorStore
	twilio    config.TwilioConfig
	sessions  context.Context
	heartbeat time.Duration
	logger    *observability.Logger
}

// New builds the call handler. sessions is cancelled at shutdown; media streams
// outlive their HTTP request once hijacked, so they are bound to it instead.
func New(
	sessions context.Context,
	relay CallRelay,
	registry CallRegistry,
	events EventSource,
	store OperatorStore,
	twilioCfg config.TwilioConfig,
	logger *observability.Logger,
) Handler {
	return Handler{
		relay:     relay,
		registry:  registry,
		events:    events,
		store:     store,
		twilio:    twilioCfg,
		sessions:  sessions,
		heartbeat: defaultHeartbeat,
		logger:    logger,
	}
}

// Twilio connects from its own infrastructure without an Origin header.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
