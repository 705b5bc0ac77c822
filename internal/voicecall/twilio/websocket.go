package twilio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	maxFrameSize = 64 * 1024
)

// Conn is the server side of one Twilio media stream websocket.
// Reads happen on a single goroutine; writes are serialized.
type Conn struct {
	conn   *websocket.Conn
	logger *observability.Logger

	writeMutex sync.Mutex
	closeOnce  sync.Once
}

func NewConn(conn *websocket.Conn, logger *observability.Logger) *Conn {
	conn.SetReadLimit(maxFrameSize)
	return &Conn{
		conn:   conn,
		logger: logger,
	}
}

// ReadFrame blocks until the next envelope arrives. Transport errors are returned;
// undecodable envelopes are returned as MalformedFrame with a nil error.
// A normal close from the provider is reported as io.EOF.
func (c *Conn) ReadFrame() (Frame, error) {
	msgType, msg, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read media stream: %w", err)
	}
	if msgType != websocket.TextMessage {
		return MalformedFrame{Raw: msg, Err: fmt.Errorf("unexpected message type %d", msgType)}, nil
	}
	return Decode(msg), nil
}

// WriteMedia sends synthesized audio for playback on the call.
func (c *Conn) WriteMedia(ctx context.Context, streamSID string, payload []byte) error {
	msg, err := EncodeMedia(streamSID, payload)
	if err != nil {
		return fmt.Errorf("encode media: %w", err)
	}
	return c.write(ctx, msg)
}

// WriteClear asks the provider to drop any queued playback.
func (c *Conn) WriteClear(ctx context.Context, streamSID string) error {
	msg, err := EncodeClear(streamSID)
	if err != nil {
		return fmt.Errorf("encode clear: %w", err)
	}
	return c.write(ctx, msg)
}

func (c *Conn) write(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write media stream: %w", err)
	}
	return nil
}

// Close sends a close frame and releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMutex.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMutex.Unlock()
		err = c.conn.Close()
		c.logger.Debug(context.Background(), "media stream socket closed")
	})
	return err
}
