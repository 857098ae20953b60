package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/pkg/logger"
)

var errConnClosed = errors.New("use of closed connection")

type fakeConn struct {
	frames chan []byte
	closed chan struct{}

	mu       sync.Mutex
	written  []string
	writeErr error
	closes   int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadFrame() ([]byte, error) {
	select {
	case <-c.closed:
		return nil, errConnClosed
	default:
	}
	select {
	case f, ok := <-c.frames:
		if !ok {
			return nil, fmt.Errorf("%w: 1000", ErrPeerClosed)
		}
		return f, nil
	case <-c.closed:
		return nil, errConnClosed
	}
}

func (c *fakeConn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, text)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	if c.closes == 1 {
		close(c.closed)
	}
	return nil
}

func (c *fakeConn) push(username, message string) {
	c.frames <- []byte(fmt.Sprintf(`{"username":%q,"message":%q}`, username, message))
}

func (c *fakeConn) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// fakeDialer отдаёт соединения по очереди; gate, если задан, держит dial до сигнала.
type fakeDialer struct {
	mu    sync.Mutex
	urls  []string
	conns []*fakeConn
	err   error
	gate  chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}

func (d *fakeDialer) Conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func newTestManager(t *testing.T, d Dialer, identity string, obs Observer) *Manager {
	t.Helper()
	m, err := New(Options{
		Dialer:   d,
		Identity: StaticIdentity(identity),
		BaseURL:  "ws://chat.test",
		Observer: obs,
		Logger:   logger.Discard(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close()
		m.Wait()
	})
	return m
}

func waitFor(t *testing.T, m *Manager, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := m.Snapshot()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s; state=%s history=%v", what, s.State, s.History)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func historyLen(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return len(s.History) >= n }
}

func inState(st domain.ConnState) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.State == st }
}
