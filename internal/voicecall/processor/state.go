package processor

// State is the lifecycle position of a call. States only move forward.
type State int

const (
	StateRinging State = iota
	StateStreaming
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateRinging:
		return "ringing"
	case StateStreaming:
		return "streaming"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}
