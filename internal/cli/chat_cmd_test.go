package cli

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwrk-planet/news-chat/internal/chat"
	"github.com/cwrk-planet/news-chat/internal/config"
	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/pkg/logger"
)

// flakyDialer отказывает первые fails раз, потом звонит по-настоящему.
type flakyDialer struct {
	fails int32
	calls atomic.Int32
	next  chat.Dialer
}

func (d *flakyDialer) Dial(ctx context.Context, url string) (chat.Conn, error) {
	if d.calls.Add(1) <= d.fails {
		return nil, errors.New("connection refused")
	}
	return d.next.Dial(ctx, url)
}

func TestChatSurface_ReconnectsAfterFailure(t *testing.T) {
	env := newTestEnv(t)
	wsBase := "ws" + strings.TrimPrefix(env.url, "http")

	out := &syncBuffer{}
	s := &chatSurface{
		app:      &App{},
		out:      out,
		sentinel: domain.SystemSender,
		reconnect: config.Reconnect{
			Enabled:         true,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			MaxElapsed:      5 * time.Second,
		},
		failed: make(chan struct{}, 1),
	}
	d := &flakyDialer{fails: 2, next: &chat.WSDialer{HandshakeTimeout: time.Second, WriteTimeout: time.Second}}
	mgr, err := chat.New(chat.Options{
		Dialer:   d,
		Identity: chat.StaticIdentity("alice"),
		BaseURL:  wsBase,
		Observer: s,
		Logger:   logger.Discard(),
	})
	require.NoError(t, err)
	s.mgr = mgr

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = mgr.Close()
		mgr.Wait()
	})
	go s.supervise(ctx)

	require.Error(t, s.mount(ctx, domain.GlobalScope()))
	waitOutput(t, out, "joined global chat as alice")

	assert.Equal(t, domain.StateOpen, mgr.State())
	assert.GreaterOrEqual(t, d.calls.Load(), int32(3))
	assert.Contains(t, out.String(), "connection failed")
	assert.Contains(t, out.String(), "reconnecting in")
}

func TestChatSurface_NoReconnectAfterClose(t *testing.T) {
	env := newTestEnv(t)
	wsBase := "ws" + strings.TrimPrefix(env.url, "http")

	out := &syncBuffer{}
	s := &chatSurface{app: &App{}, out: out, sentinel: domain.SystemSender, failed: make(chan struct{}, 1)}
	mgr, err := chat.New(chat.Options{
		Dialer:   &chat.WSDialer{HandshakeTimeout: time.Second, WriteTimeout: time.Second},
		Identity: chat.StaticIdentity("alice"),
		BaseURL:  wsBase,
		Observer: s,
		Logger:   logger.Discard(),
	})
	require.NoError(t, err)
	s.mgr = mgr
	t.Cleanup(mgr.Wait)

	require.NoError(t, s.mount(context.Background(), domain.GlobalScope()))
	require.NoError(t, mgr.Close())

	assert.Equal(t, domain.StateClosed, mgr.State())
	assert.Empty(t, s.failed)
	assert.Contains(t, out.String(), "-- disconnected")
}
