package callermemory

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"voice-bridge/internal/store"
)

const digestPreamble = `MEMORY FROM PREVIOUS CALLS
The lines below are quoted from earlier calls with this caller. Only reference what is literally written here. If you are not sure whether something was said, ask the caller instead of guessing.`

// DigestConfig bounds how much history ends up in the agent's instructions.
type DigestConfig struct {
	MinTurnLength      int
	MaxTurnsPerSession int
	MaxSessions        int
	MaxChars           int
	Stoplist           []string
	MemoryClaims       []string
}

// DefaultDigestConfig returns the limits used when nothing is configured.
func DefaultDigestConfig() DigestConfig {
	return DigestConfig{
		MinTurnLength:      12,
		MaxTurnsPerSession: 6,
		MaxSessions:        3,
		MaxChars:           4000,
		Stoplist: []string{
			"hello how can i help you today",
			"hi how can i help you today",
			"hello how can i help you",
			"how can i help you today",
			"is there anything else i can help you with",
			"thank you for calling",
			"thanks for calling",
			"have a great day",
			"nice to talk to you",
			"can you hear me",
			"are you still there",
			"thank you so much",
			"thanks goodbye",
			"okay thank you",
		},
		MemoryClaims: []string{
			"last time we spoke",
			"last time you called",
			"you mentioned before",
			"you mentioned last",
			"as you told me",
			"you told me",
			"i remember",
			"i recall",
			"previously you said",
			"from our last call",
			"we discussed",
		},
	}
}

// BuildDigest renders the recent sessions (newest first, as the store returns them)
// into a bounded memory block. Sessions that contribute nothing are skipped; the
// result is empty when no session contributes. When MaxChars is set, whole sessions
// are kept newest first until the next one would not fit.
func BuildDigest(sessions []store.RecentSession, cfg DigestConfig) string {
	if cfg.MaxSessions <= 0 || cfg.MaxTurnsPerSession <= 0 {
		return ""
	}

	stoplist := make(map[string]struct{}, len(cfg.Stoplist))
	for _, s := range cfg.Stoplist {
		stoplist[normalize(s)] = struct{}{}
	}
	claims := make([]string, 0, len(cfg.MemoryClaims))
	for _, c := range cfg.MemoryClaims {
		claims = append(claims, normalize(c))
	}

	budget := cfg.MaxChars - len(digestPreamble)
	var blocks []string
	for _, session := range sessions {
		if len(blocks) == cfg.MaxSessions {
			break
		}
		block := renderSession(session, cfg, stoplist, claims)
		if block == "" {
			continue
		}
		if cfg.MaxChars > 0 {
			// newest sessions claim the budget first
			budget -= len("\n\n")
			if len(block) > budget {
				// a partial block keeps its header only with a line under it
				if budget > 0 {
					if block = capAtLine(block, budget); strings.Contains(block, "\n") {
						blocks = append(blocks, block)
					}
				}
				break
			}
			budget -= len(block)
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(digestPreamble)
	// oldest first
	for i := len(blocks) - 1; i >= 0; i-- {
		b.WriteString("\n\n")
		b.WriteString(blocks[i])
	}
	return b.String()
}

func renderSession(session store.RecentSession, cfg DigestConfig, stoplist map[string]struct{}, claims []string) string {
	turns := selectTurns(parseTranscript(session.FullTranscript), cfg, stoplist, claims)
	summary := ""
	if session.Summary.Valid {
		summary = strings.TrimSpace(session.Summary.String)
	}
	if len(turns) == 0 && summary == "" {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Call %d (%s):", session.SessionNumber, session.StartTime.Format("2006-01-02"))
	if summary != "" {
		fmt.Fprintf(&b, "\nSummary: %s", truncateRunes(oneLine(summary), maxTurnLen))
	}
	for _, t := range turns {
		t.Content = truncateRunes(oneLine(t.Content), maxTurnLen)
		switch t.Speaker {
		case speakerCaller:
			fmt.Fprintf(&b, "\nCaller said: %q", t.Content)
		case speakerAgent:
			fmt.Fprintf(&b, "\nAgent replied: %q", t.Content)
		default:
			fmt.Fprintf(&b, "\nRecorded note: %q", t.Content)
		}
	}
	return b.String()
}

// selectTurns filters a session's turns and keeps the last MaxTurnsPerSession caller
// turns, each followed by the agent reply that answered it when that reply survived
// filtering. Opaque turns count as caller turns.
func selectTurns(turns []Turn, cfg DigestConfig, stoplist map[string]struct{}, claims []string) []Turn {
	kept := make([]Turn, 0, len(turns))
	for _, t := range turns {
		if utf8.RuneCountInString(t.Content) < cfg.MinTurnLength {
			continue
		}
		norm := normalize(t.Content)
		if _, ok := stoplist[norm]; ok {
			continue
		}
		if t.Speaker == speakerAgent && containsAny(norm, claims) {
			continue
		}
		kept = append(kept, t)
	}

	callerTurns := 0
	start := len(kept)
	for i := len(kept) - 1; i >= 0; i-- {
		if kept[i].Speaker == speakerAgent {
			continue
		}
		if callerTurns == cfg.MaxTurnsPerSession {
			break
		}
		callerTurns++
		start = i
	}
	if callerTurns == 0 {
		return nil
	}

	selected := make([]Turn, 0, 2*callerTurns)
	for i := start; i < len(kept); i++ {
		if kept[i].Speaker != speakerAgent {
			selected = append(selected, kept[i])
			continue
		}
		// only the first reply after a caller turn
		if i > start && kept[i-1].Speaker != speakerAgent {
			selected = append(selected, kept[i])
		}
	}
	return selected
}

// normalize lowercases s, drops punctuation and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		case r == '\'':
			// keep contractions together
		default:
			space = true
		}
	}
	return b.String()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capAtLine trims s to at most max bytes, cutting at the last line break that fits.
// A first line longer than max is cut on a rune boundary.
func capAtLine(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return strings.TrimRight(cut[:i], "\n")
	}
	n := max
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
