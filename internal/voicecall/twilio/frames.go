package twilio

import (
	"encoding/json"
	"errors"
	"fmt"

	"voice-bridge/internal/voice/audio"
)

var (
	ErrUnknownEvent   = errors.New("unknown media stream event")
	ErrMissingStream  = errors.New("start event without streamSid")
	ErrInvalidPayload = errors.New("invalid media payload")
)

// Track labels used by the media stream.
const (
	TrackInbound  = "inbound"
	TrackOutbound = "outbound"
)

// Frame is one decoded media stream envelope.
type Frame interface {
	frame()
}

type StartFrame struct {
	StreamSID        string
	CallSID          string
	CustomParameters map[string]string
}

type ConnectedFrame struct{}

type MediaFrame struct {
	Track   string
	Payload []byte
}

type StopFrame struct {
	StreamSID string
}

// MalformedFrame carries an envelope that could not be decoded. The caller decides
// whether to skip it.
type MalformedFrame struct {
	Raw []byte
	Err error
}

func (StartFrame) frame()     {}
func (ConnectedFrame) frame() {}
func (MediaFrame) frame()     {}
func (StopFrame) frame()      {}
func (MalformedFrame) frame() {}

// MediaEvent is the wire shape of an inbound media stream message.
type MediaEvent struct {
	Event string `json:"event"`
	Start *struct {
		StreamSid        string            `json:"streamSid"`
		CallSid          string            `json:"callSid"`
		CustomParameters map[string]string `json:"customParameters"`
	} `json:"start,omitempty"`
	Media *struct {
		Track   string `json:"track"`
		Payload string `json:"payload"`
	} `json:"media,omitempty"`
	Stop *struct {
		StreamSid string `json:"streamSid"`
	} `json:"stop,omitempty"`
}

// Decode turns one text message from the media stream into a Frame. It never fails;
// anything it cannot interpret comes back as MalformedFrame.
func Decode(msg []byte) Frame {
	var event MediaEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return MalformedFrame{Raw: msg, Err: err}
	}

	switch event.Event {
	case "start":
		if event.Start == nil || event.Start.StreamSid == "" {
			return MalformedFrame{Raw: msg, Err: ErrMissingStream}
		}
		params := event.Start.CustomParameters
		if params == nil {
			params = map[string]string{}
		}
		return StartFrame{
			StreamSID:        event.Start.StreamSid,
			CallSID:          event.Start.CallSid,
			CustomParameters: params,
		}
	case "connected":
		return ConnectedFrame{}
	case "media":
		if event.Media == nil {
			return MalformedFrame{Raw: msg, Err: ErrInvalidPayload}
		}
		payload, err := audio.Base64ToBytes(event.Media.Payload)
		if err != nil {
			return MalformedFrame{Raw: msg, Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
		}
		return MediaFrame{Track: event.Media.Track, Payload: payload}
	case "stop":
		var sid string
		if event.Stop != nil {
			sid = event.Stop.StreamSid
		}
		return StopFrame{StreamSID: sid}
	default:
		return MalformedFrame{Raw: msg, Err: fmt.Errorf("%w: %q", ErrUnknownEvent, event.Event)}
	}
}

type outboundMedia struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
	Media     struct {
		Payload string `json:"payload"`
	} `json:"media"`
}

type outboundClear struct {
	Event     string `json:"event"`
	StreamSid string `json:"streamSid"`
}

// EncodeMedia builds a playback envelope addressed to streamSID.
func EncodeMedia(streamSID string, payload []byte) ([]byte, error) {
	msg := outboundMedia{Event: "media", StreamSid: streamSID}
	msg.Media.Payload = audio.BytesToBase64(payload)
	return json.Marshal(msg)
}

// EncodeClear builds the barge-in envelope that discards queued playback.
func EncodeClear(streamSID string) ([]byte, error) {
	return json.Marshal(outboundClear{Event: "clear", StreamSid: streamSID})
}
