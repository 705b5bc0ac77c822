package callermemory

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Turn is one utterance recovered from a stored transcript. An empty Speaker marks
// an opaque turn that could not be attributed.
type Turn struct {
	Speaker string
	Content string
}

const (
	speakerCaller = "caller"
	speakerAgent  = "agent"

	maxOpaqueLen = 280
	maxTurnLen   = 400
)

type storedTurn struct {
	Speaker string `json:"speaker"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

// parseTranscript decodes a stored transcript. Transcripts are usually a JSON list of
// turns, but older rows hold the list encoded as a JSON string. Anything else becomes
// a single opaque turn.
func parseTranscript(raw []byte) []Turn {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = bytes.TrimSpace([]byte(encoded))
		if len(raw) == 0 {
			return nil
		}
	}

	var stored []storedTurn
	if err := json.Unmarshal(raw, &stored); err != nil {
		return []Turn{opaqueTurn(string(raw))}
	}

	turns := make([]Turn, 0, len(stored))
	for _, st := range stored {
		content := st.Content
		if content == "" {
			content = st.Text
		}
		speaker := normalizeSpeaker(st.Speaker)
		if speaker == "" {
			speaker = normalizeSpeaker(st.Role)
		}
		if speaker == "" || strings.TrimSpace(content) == "" {
			continue
		}
		turns = append(turns, Turn{Speaker: speaker, Content: strings.TrimSpace(content)})
	}
	return turns
}

func normalizeSpeaker(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "caller", "user":
		return speakerCaller
	case "agent", "assistant":
		return speakerAgent
	default:
		return ""
	}
}

func opaqueTurn(s string) Turn {
	s = strings.Join(strings.Fields(s), " ")
	return Turn{Content: truncateRunes(s, maxOpaqueLen)}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
