package audio

import (
	"encoding/base64"
)

// Telephony media is 8-bit mulaw at 8 kHz, 20 ms per frame.
const (
	SampleRate       = 8000
	FrameBytes       = 160
	FramesPerChunk   = 20
	DefaultChunkSize = FrameBytes * FramesPerChunk
)

func Base64ToBytes(base64String string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64String)
}

func BytesToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
