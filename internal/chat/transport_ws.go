package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

// WSDialer — Dialer поверх gorilla/websocket.
type WSDialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MaxMessageSize   int64
	// Token, если задан, добавляет Authorization: Bearer к handshake.
	Token func() string
}

func (d *WSDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	var header http.Header
	if d.Token != nil {
		if tok := d.Token(); tok != "" {
			header = http.Header{"Authorization": {"Bearer " + tok}}
		}
	}

	c, resp, err := dialer.DialContext(ctx, rawURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("chat: dial %s: %w (status %d)", rawURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("chat: dial %s: %w", rawURL, err)
	}
	if d.MaxMessageSize > 0 {
		c.SetReadLimit(d.MaxMessageSize)
	}

	writeTimeout := d.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	return &wsConn{conn: c, writeTimeout: writeTimeout}, nil
}

type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) ReadFrame() ([]byte, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, fmt.Errorf("%w: %v", ErrPeerClosed, err)
			}
			return nil, err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		return data, nil
	}
}

func (c *wsConn) WriteText(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		if errors.Is(werr, websocket.ErrCloseSent) {
			werr = nil
		}
		c.closeErr = errors.Join(werr, c.conn.Close())
	})

	return c.closeErr
}
