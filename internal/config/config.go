package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

const defaultPersonality = `You are having a casual chat with someone who called you.
Be naturally curious about what they share.
Ask simple follow-up questions like a friend would.
Keep it conversational and relaxed.`

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Agent    AgentConfig
	Twilio   TwilioConfig
	Auth     AuthConfig
	Memory   MemoryConfig
	Session  SessionConfig
	Redis    RedisConfig
	Summary  SummaryConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// AgentConfig holds the voice-agent endpoint credentials and model selection
type AgentConfig struct {
	APIKey        string
	URL           string
	Language      string
	ListenModel   string
	ThinkProvider string
	ThinkModel    string
	Temperature   float64
	SpeakModel    string
	Greeting      string
	Personality   string
	Keyterms      []string // boosted words for speech recognition
}

// TwilioConfig holds telephony webhook settings
type TwilioConfig struct {
	AuthToken  string // empty disables signature validation
	PublicHost string // host used in the <Stream> url, falls back to the request host
}

// AuthConfig holds operator API authentication settings
type AuthConfig struct {
	JWTSecret string
}

// MemoryConfig bounds the caller memory digest
type MemoryConfig struct {
	HistoryDepth       int
	MaxSessions        int
	MaxTurnsPerSession int
	MaxChars           int
}

// SessionConfig holds per-call timing settings
type SessionConfig struct {
	IdentityTimeout time.Duration
	ShutdownGrace   time.Duration
}

// RedisConfig holds the observability relay settings
type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          int
	Password      string
	DB            int
	EventsChannel string
}

// SummaryConfig holds end-of-call summary settings
type SummaryConfig struct {
	GoogleAIAPIKey string // empty disables summaries
	Model          string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port       int
	WebAppURIs []string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if _, err := os.Stat("env.local"); err == nil {
			if err := godotenv.Load("env.local"); err != nil {
				return nil, fmt.Errorf("failed to load env.local: %w", err)
			}
		}
	}

	cfg := &Config{}
	var err error

	// Database configuration
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Agent configuration
	if cfg.Agent.APIKey, err = requireEnv("DEEPGRAM_API_KEY"); err != nil {
		return nil, err
	}
	cfg.Agent.URL = getEnvWithDefault("AGENT_URL", "wss://agent.deepgram.com/v1/agent/converse")
	cfg.Agent.Language = getEnvWithDefault("AGENT_LANGUAGE", "en")
	cfg.Agent.ListenModel = getEnvWithDefault("AGENT_LISTEN_MODEL", "nova-3")
	cfg.Agent.ThinkProvider = getEnvWithDefault("AGENT_THINK_PROVIDER", "open_ai")
	cfg.Agent.ThinkModel = getEnvWithDefault("AGENT_THINK_MODEL", "gpt-4o-mini")
	cfg.Agent.SpeakModel = getEnvWithDefault("AGENT_SPEAK_MODEL", "aura-2-thalia-en")
	cfg.Agent.Greeting = getEnvWithDefault("AGENT_GREETING", "Hello! How can I help you today?")
	cfg.Agent.Personality = getEnvWithDefault("AGENT_PERSONALITY", defaultPersonality)
	if cfg.Agent.Temperature, err = strconv.ParseFloat(getEnvWithDefault("AGENT_TEMPERATURE", "0.7"), 64); err != nil {
		return nil, fmt.Errorf("failed to parse AGENT_TEMPERATURE: %w", err)
	}

	cfg.Agent.Keyterms = listEnv("AGENT_KEYTERMS", "hello,goodbye")

	// Twilio configuration
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.PublicHost = os.Getenv("PUBLIC_HOST")

	// Operator auth
	if cfg.Auth.JWTSecret, err = requireEnv("OPERATOR_JWT_SECRET"); err != nil {
		return nil, err
	}

	// Memory configuration
	if cfg.Memory.HistoryDepth, err = intEnv("MEMORY_HISTORY_DEPTH", "20"); err != nil {
		return nil, err
	}
	if cfg.Memory.MaxSessions, err = intEnv("MEMORY_MAX_SESSIONS", "3"); err != nil {
		return nil, err
	}
	if cfg.Memory.MaxTurnsPerSession, err = intEnv("MEMORY_MAX_TURNS", "6"); err != nil {
		return nil, err
	}
	if cfg.Memory.MaxChars, err = intEnv("MEMORY_MAX_CHARS", "4000"); err != nil {
		return nil, err
	}

	// Session timing
	if cfg.Session.IdentityTimeout, err = durationEnv("IDENTITY_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.Session.ShutdownGrace, err = durationEnv("SHUTDOWN_GRACE", "10s"); err != nil {
		return nil, err
	}

	// Redis relay
	cfg.Redis.Enabled = getEnvWithDefault("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", "localhost")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.EventsChannel = getEnvWithDefault("REDIS_EVENTS_CHANNEL", "voice-bridge:events")
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", "6379"); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = intEnv("REDIS_DB", "0"); err != nil {
		return nil, err
	}

	// Summaries
	cfg.Summary.GoogleAIAPIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.Summary.Model = getEnvWithDefault("SUMMARY_MODEL", "gemini-2.0-flash")

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", "8080"); err != nil {
		return nil, err
	}
	if uri := os.Getenv("WEBAPP_URI"); uri != "" {
		cfg.Server.WebAppURIs = []string{uri}
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// listEnv splits a comma separated variable, dropping blank entries. Set the
// variable to "," to clear a non-empty default.
func listEnv(key, defaultValue string) []string {
	var out []string
	for _, v := range strings.Split(getEnvWithDefault(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intEnv(key, defaultValue string) (int, error) {
	v, err := strconv.Atoi(getEnvWithDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key, defaultValue string) (time.Duration, error) {
	v, err := time.ParseDuration(getEnvWithDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return v, nil
}
