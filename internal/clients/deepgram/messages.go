package deepgram

import (
	"encoding/json"
)

// Settings is the single configuration message sent when an agent connection opens.
type Settings struct {
	Type  string        `json:"type"`
	Audio AudioSettings `json:"audio"`
	Agent AgentSettings `json:"agent"`
}

type AudioSettings struct {
	Input  AudioFormat `json:"input"`
	Output AudioFormat `json:"output"`
}

type AudioFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
	Container  string `json:"container,omitempty"`
}

type AgentSettings struct {
	Language string         `json:"language,omitempty"`
	Listen   ListenSettings `json:"listen"`
	Think    ThinkSettings  `json:"think"`
	Speak    SpeakSettings  `json:"speak"`
	Greeting string         `json:"greeting,omitempty"`
}

type ListenSettings struct {
	Provider Provider `json:"provider"`
}

type ThinkSettings struct {
	Provider Provider `json:"provider"`
	Prompt   string   `json:"prompt"`
}

type SpeakSettings struct {
	Provider Provider `json:"provider"`
}

type Provider struct {
	Type        string   `json:"type"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`
	Keyterms    []string `json:"keyterms,omitempty"`
}

// SettingsParams are the per-call inputs to NewSettings.
type SettingsParams struct {
	Language      string
	ListenModel   string
	ThinkProvider string
	ThinkModel    string
	Temperature   float64
	SpeakModel    string
	Instructions  string
	Greeting      string
	Keyterms      []string
}

// NewSettings builds a settings message for mulaw 8 kHz audio in both directions,
// which is what the telephony media stream carries.
func NewSettings(p SettingsParams) Settings {
	temperature := p.Temperature
	return Settings{
		Type: "Settings",
		Audio: AudioSettings{
			Input:  AudioFormat{Encoding: "mulaw", SampleRate: 8000},
			Output: AudioFormat{Encoding: "mulaw", SampleRate: 8000, Container: "none"},
		},
		Agent: AgentSettings{
			Language: p.Language,
			Listen: ListenSettings{
				Provider: Provider{Type: "deepgram", Model: p.ListenModel, Keyterms: p.Keyterms},
			},
			Think: ThinkSettings{
				Provider: Provider{Type: p.ThinkProvider, Model: p.ThinkModel, Temperature: &temperature},
				Prompt:   p.Instructions,
			},
			Speak: SpeakSettings{
				Provider: Provider{Type: "deepgram", Model: p.SpeakModel},
			},
			Greeting: p.Greeting,
		},
	}
}

// Agent control message types this service reacts to.
const (
	TypeConversationText    = "ConversationText"
	TypeUserStartedSpeaking = "UserStartedSpeaking"
	TypeKeepAlive           = "KeepAlive"
	TypeError               = "Error"
	TypeWarning             = "Warning"
)

// Agent role labels found in ConversationText.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one decoded frame from the agent endpoint.
type Message interface {
	message()
}

type ConversationText struct {
	Role    string
	Content string
	Raw     json.RawMessage
}

type UserStartedSpeaking struct{}

// OtherControl is any textual frame without dedicated handling, including frames
// that are not valid JSON (Type is empty then).
type OtherControl struct {
	Type string
	Raw  []byte
}

type SynthesizedAudio struct {
	Data []byte
}

func (ConversationText) message()    {}
func (UserStartedSpeaking) message() {}
func (OtherControl) message()        {}
func (SynthesizedAudio) message()    {}

type controlEnvelope struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DecodeMessage classifies one agent frame. Binary frames are synthesized audio,
// text frames are JSON control messages.
func DecodeMessage(binary bool, data []byte) Message {
	if binary {
		return SynthesizedAudio{Data: data}
	}

	var env controlEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return OtherControl{Raw: data}
	}

	switch env.Type {
	case TypeConversationText:
		return ConversationText{Role: env.Role, Content: env.Content, Raw: json.RawMessage(data)}
	case TypeUserStartedSpeaking:
		return UserStartedSpeaking{}
	default:
		return OtherControl{Type: env.Type, Raw: data}
	}
}

var keepAliveMessage = []byte(`{"type":"KeepAlive"}`)
