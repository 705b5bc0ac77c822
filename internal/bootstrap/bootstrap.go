package bootstrap

import (
	"context"
	"fmt"
	"time"

	authHandler "voice-bridge/internal/auth/handler"
	authProcessor "voice-bridge/internal/auth/processor"
	"voice-bridge/internal/callermemory"
	"voice-bridge/internal/clients/deepgram"
	"voice-bridge/internal/clients/googleai"
	redisClient "voice-bridge/internal/clients/redis"
	"voice-bridge/internal/config"
	"voice-bridge/internal/events"
	"voice-bridge/internal/observability"
	"voice-bridge/internal/store"
	voiceCallHandler "voice-bridge/internal/voicecall/handler"
	voiceCallProcessor "voice-bridge/internal/voicecall/processor"
	"voice-bridge/internal/voicecall/recorder"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  store.Store
	Logger *observability.Logger

	// Call plumbing
	Broker   *events.Broker
	Registry *voiceCallProcessor.Registry
	Relay    *voiceCallProcessor.Relay

	// Handlers
	AuthHandler      authHandler.Handler
	VoiceCallHandler voiceCallHandler.Handler

	// Optional Redis fan-out of call events
	RedisClient *redisClient.Client
	RedisRelay  *events.RedisRelay

	cancelSessions context.CancelFunc
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize database store
	var err error
	deps.Store, err = store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := deps.Store.Ping(pingCtx); err != nil {
		deps.Store.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	// Initialize clients
	agentClient, err := deepgram.NewClient(cfg.Agent.APIKey, cfg.Agent.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create voice agent client: %w", err)
	}

	var summarizer recorder.Summarizer
	if cfg.Summary.GoogleAIAPIKey != "" {
		googleSummarizer, err := googleai.NewSummarizer(ctx, cfg.Summary.GoogleAIAPIKey, cfg.Summary.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create summarizer: %w", err)
		}
		summarizer = googleSummarizer
	} else {
		logger.Info(ctx, "GOOGLE_AI_API_KEY not set, call summaries disabled")
	}

	deps.RedisClient, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	// Initialize event fan-out
	deps.Broker = events.NewBroker(logger)
	if deps.RedisClient.IsEnabled() {
		deps.RedisRelay = events.NewRedisRelay(deps.RedisClient, cfg.Redis.EventsChannel, logger)
	}

	// Initialize caller memory and recording
	digestCfg := callermemory.DefaultDigestConfig()
	digestCfg.MaxSessions = cfg.Memory.MaxSessions
	digestCfg.MaxTurnsPerSession = cfg.Memory.MaxTurnsPerSession
	digestCfg.MaxChars = cfg.Memory.MaxChars
	loader := callermemory.NewLoader(&deps.Store, callermemory.Config{
		BasePersonality: cfg.Agent.Personality,
		HistoryDepth:    cfg.Memory.HistoryDepth,
		Digest:          digestCfg,
	}, logger)

	recorderFactory := recorder.NewFactory(&deps.Store, summarizer, logger)

	// Initialize the relay
	relayCfg := voiceCallProcessor.DefaultConfig()
	relayCfg.IdentityTimeout = cfg.Session.IdentityTimeout
	relayCfg.Agent = deepgram.SettingsParams{
		Language:      cfg.Agent.Language,
		ListenModel:   cfg.Agent.ListenModel,
		ThinkProvider: cfg.Agent.ThinkProvider,
		ThinkModel:    cfg.Agent.ThinkModel,
		Temperature:   cfg.Agent.Temperature,
		SpeakModel:    cfg.Agent.SpeakModel,
		Greeting:      cfg.Agent.Greeting,
		Keyterms:      cfg.Agent.Keyterms,
	}

	deps.Registry = voiceCallProcessor.NewRegistry()
	deps.Relay = voiceCallProcessor.New(
		voiceCallProcessor.NewAgentDialer(agentClient),
		loader,
		voiceCallProcessor.NewRecorderFactory(recorderFactory),
		deps.Broker,
		deps.Registry,
		relayCfg,
		logger,
	)

	// Media streams are bound to this context rather than their HTTP request
	sessions, cancelSessions := context.WithCancel(context.Background())
	deps.cancelSessions = cancelSessions

	// Initialize handlers
	authProc := authProcessor.New(cfg.Auth.JWTSecret, logger)
	deps.AuthHandler = authHandler.New(&authProc, logger)
	deps.VoiceCallHandler = voiceCallHandler.New(
		sessions,
		deps.Relay,
		deps.Registry,
		deps.Broker,
		&deps.Store,
		cfg.Twilio,
		logger,
	)

	return deps, nil
}

// StartBackground launches the long-running helpers. They stop with ctx.
func (d *Dependencies) StartBackground(ctx context.Context) {
	if d.RedisRelay != nil {
		go d.RedisRelay.Run(ctx, d.Broker)
	}
}

// DrainCalls stops accepting calls, cancels the live ones and waits up to grace
// for their finalization to complete.
func (d *Dependencies) DrainCalls(ctx context.Context, grace time.Duration) error {
	d.Registry.Close()
	d.cancelSessions()

	waitCtx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()
	return d.Registry.Wait(waitCtx)
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	if d.cancelSessions != nil {
		d.cancelSessions()
	}
	if d.Broker != nil {
		d.Broker.Close()
	}
	if d.RedisClient != nil {
		if err := d.RedisClient.Close(); err != nil {
			d.Logger.Error(context.Background(), "failed to close redis client", err)
		}
	}
	if err := d.Store.Close(); err != nil {
		d.Logger.Error(context.Background(), "failed to close database", err)
	}
}
