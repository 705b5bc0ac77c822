package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name   string
		binary bool
		data   string
		want   Message
	}{
		{
			name:   "binary frame is audio",
			binary: true,
			data:   "\xff\x7f",
			want:   SynthesizedAudio{Data: []byte("\xff\x7f")},
		},
		{
			name: "conversation text",
			data: `{"type":"ConversationText","role":"user","content":"I moved to Leeds"}`,
			want: ConversationText{
				Role:    RoleUser,
				Content: "I moved to Leeds",
				Raw:     json.RawMessage(`{"type":"ConversationText","role":"user","content":"I moved to Leeds"}`),
			},
		},
		{
			name: "user started speaking",
			data: `{"type":"UserStartedSpeaking"}`,
			want: UserStartedSpeaking{},
		},
		{
			name: "other control",
			data: `{"type":"AgentAudioDone"}`,
			want: OtherControl{Type: "AgentAudioDone", Raw: []byte(`{"type":"AgentAudioDone"}`)},
		},
		{
			name: "undecodable text",
			data: `{oops`,
			want: OtherControl{Raw: []byte(`{oops`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeMessage(tt.binary, []byte(tt.data)))
		})
	}
}

func TestNewSettings(t *testing.T) {
	s := NewSettings(SettingsParams{
		Language:      "en",
		ListenModel:   "nova-3",
		ThinkProvider: "open_ai",
		ThinkModel:    "gpt-4o-mini",
		Temperature:   0.7,
		SpeakModel:    "aura-2-thalia-en",
		Instructions:  "Be kind.",
		Greeting:      "Hello!",
		Keyterms:      []string{"hello", "goodbye"},
	})

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "Settings", got["type"])
	audio := got["audio"].(map[string]interface{})
	input := audio["input"].(map[string]interface{})
	output := audio["output"].(map[string]interface{})
	assert.Equal(t, "mulaw", input["encoding"])
	assert.Equal(t, float64(8000), input["sample_rate"])
	assert.Equal(t, "none", output["container"])

	agent := got["agent"].(map[string]interface{})
	think := agent["think"].(map[string]interface{})
	provider := think["provider"].(map[string]interface{})
	assert.Equal(t, "Be kind.", think["prompt"])
	assert.Equal(t, "gpt-4o-mini", provider["model"])
	assert.Equal(t, 0.7, provider["temperature"])
	assert.Equal(t, "Hello!", agent["greeting"])

	listen := agent["listen"].(map[string]interface{})["provider"].(map[string]interface{})
	assert.Equal(t, "nova-3", listen["model"])
	assert.Equal(t, []interface{}{"hello", "goodbye"}, listen["keyterms"])
	speak := agent["speak"].(map[string]interface{})["provider"].(map[string]interface{})
	assert.NotContains(t, speak, "keyterms")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("", "", observability.NewLogger())
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestClient_Connect(t *testing.T) {
	received := make(chan []byte, 1)
	protocols := make(chan []string, 1)
	upgrader := websocket.Upgrader{Subprotocols: []string{"token"}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protocols <- websocket.Subprotocols(r)
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		_, settings, err := c.ReadMessage()
		if err != nil {
			return
		}
		received <- settings

		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"UserStartedSpeaking"}`))
		_ = c.WriteMessage(websocket.BinaryMessage, []byte{1, 2})
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	client, err := NewClient("dg-secret", "ws"+strings.TrimPrefix(srv.URL, "http"), observability.NewLoggerFromZap(zap.New(core)))
	require.NoError(t, err)

	conn, err := client.Connect(context.Background(), NewSettings(SettingsParams{Instructions: "hi"}))
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, 1, logs.FilterMessage("voice agent configured").Len())

	assert.Equal(t, []string{"token", "dg-secret"}, <-protocols)
	settings := <-received
	assert.Contains(t, string(settings), `"type":"Settings"`)

	msg, err := conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, UserStartedSpeaking{}, msg)

	msg, err = conn.Receive()
	require.NoError(t, err)
	assert.Equal(t, SynthesizedAudio{Data: []byte{1, 2}}, msg)

	_, err = conn.Receive()
	assert.True(t, errors.Is(err, io.EOF), "got %v", err)
}

func TestClient_ConnectRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient("bad-key", "ws"+strings.TrimPrefix(srv.URL, "http"), observability.NewLogger())
	require.NoError(t, err)

	_, err = client.Connect(context.Background(), NewSettings(SettingsParams{}))
	assert.ErrorIs(t, err, ErrHandshake)
}
