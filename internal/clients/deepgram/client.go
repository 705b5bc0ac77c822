package deepgram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"voice-bridge/internal/observability"

	"github.com/gorilla/websocket"
)

const (
	DefaultAgentURL  = "wss://agent.deepgram.com/v1/agent/converse"
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

var (
	ErrHandshake  = errors.New("agent handshake failed")
	ErrMissingKey = errors.New("agent API key is required")
)

// Client opens voice-agent connections.
type Client struct {
	apiKey string
	url    string
	logger *observability.Logger
}

func NewClient(apiKey, url string, logger *observability.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	if url == "" {
		url = DefaultAgentURL
	}
	return &Client{apiKey: apiKey, url: url, logger: logger}, nil
}

// Connect dials the agent endpoint and sends settings. The returned connection is
// configured and ready for audio. Any failure wraps ErrHandshake.
func (c *Client) Connect(ctx context.Context, settings Settings) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		Subprotocols:     []string{"token", c.apiKey},
	}

	conn, resp, err := dialer.DialContext(ctx, c.url, http.Header{})
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		c.logger.Error(ctx, "failed to connect to voice agent endpoint", err)
		return nil, fmt.Errorf("%w: dial: %v", ErrHandshake, err)
	}

	agentConn := &Conn{conn: conn}
	if err := agentConn.writeJSON(settings); err != nil {
		conn.Close()
		c.logger.Error(ctx, "failed to send agent settings", err)
		return nil, fmt.Errorf("%w: settings: %v", ErrHandshake, err)
	}

	c.logger.Info(ctx, "voice agent configured")
	return agentConn, nil
}

// Conn is one live agent connection. Receive must be called from a single goroutine;
// sends are serialized internally.
type Conn struct {
	conn *websocket.Conn

	writeMutex sync.Mutex
	closeOnce  sync.Once
}

// SendAudio forwards a raw audio chunk as a binary frame.
func (c *Conn) SendAudio(chunk []byte) error {
	return c.write(websocket.BinaryMessage, chunk)
}

// SendKeepAlive tells the agent the connection is idle but alive.
func (c *Conn) SendKeepAlive() error {
	return c.write(websocket.TextMessage, keepAliveMessage)
}

// Receive blocks for the next agent frame. A normal close is reported as io.EOF.
func (c *Conn) Receive() (Message, error) {
	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read agent: %w", err)
	}
	return DecodeMessage(msgType == websocket.BinaryMessage, data), nil
}

// Close closes the connection. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMutex.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMutex.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) writeJSON(v interface{}) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *Conn) write(msgType int, data []byte) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(msgType, data); err != nil {
		return fmt.Errorf("write agent: %w", err)
	}
	return nil
}
