package fakebackend

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/news-chat/internal/chat"
	"github.com/cwrk-planet/news-chat/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	globalScope  = "global"
	writeTimeout = 5 * time.Second
)

func roomScope(id int64) string { return "room:" + strconv.FormatInt(id, 10) }

// WS: GET /ws/{username}
func (b *Backend) handleGlobalWS(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(pathParam(r, "username"))
	if username == "" || username == domain.SystemSender {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}
	b.serveWS(w, r, globalScope, 0, username)
}

// WS: GET /ws/chat/{roomID}/{username}
func (b *Backend) handleRoomWS(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(pathParam(r, "roomID"), 10, 64)
	if err != nil || !b.store.HasRoom(roomID) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	username := strings.TrimSpace(pathParam(r, "username"))
	if username == "" || username == domain.SystemSender {
		http.Error(w, "invalid username", http.StatusBadRequest)
		return
	}
	b.serveWS(w, r, roomScope(roomID), roomID, username)
}

func (b *Backend) serveWS(w http.ResponseWriter, r *http.Request, scope string, roomID int64, username string) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("ws upgrade failed", "scope", scope, "err", err)
		return
	}

	c := newWSPeer(conn, scope)
	b.hub.Add(c)
	b.announce(scope, fmt.Sprintf("%s entered the room", username))

	go b.pingLoop(c)
	b.readLoop(c, roomID, username)

	b.hub.Remove(c)
	b.announce(scope, fmt.Sprintf("%s left the room", username))
	if err := c.Close(); err != nil {
		b.log.Debug("ws close failed", "scope", scope, "user", username, "err", err)
	}
}

func (b *Backend) readLoop(c *wsPeer, roomID int64, username string) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(b.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * b.opts.PingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * b.opts.PingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}
		if roomID != 0 {
			if err := b.store.AppendMessage(roomID, username, text); err != nil {
				b.log.Warn("ws chat save failed", "room", roomID, "user", username, "err", err)
			}
		}
		// рассылка всем в scope, включая отправителя
		b.broadcast(c.scope, domain.ChatMessage{Username: username, Message: text})
	}
}

func (b *Backend) pingLoop(c *wsPeer) {
	ticker := time.NewTicker(b.opts.PingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
		case <-c.closed:
			return
		}
	}
}

func (b *Backend) announce(scope, text string) {
	b.broadcast(scope, domain.ChatMessage{Username: domain.SystemSender, Message: text})
}

func (b *Backend) broadcast(scope string, msg domain.ChatMessage) {
	frame, err := chat.EncodeFrame(msg)
	if err != nil {
		b.log.Error("ws encode frame failed", "scope", scope, "err", err)
		return
	}
	b.hub.Broadcast(scope, frame)
}

type wsPeer struct {
	conn  *websocket.Conn
	scope string

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

func newWSPeer(c *websocket.Conn, scope string) *wsPeer {
	return &wsPeer{conn: c, scope: scope, closed: make(chan struct{})}
}

func (c *wsPeer) Send(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *wsPeer) Scope() string { return c.scope }

func (c *wsPeer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})

	return err
}
