package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
	"github.com/cwrk-planet/news-chat/internal/fakebackend"
	"github.com/cwrk-planet/news-chat/pkg/logger"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeLineReader отдаёт строки из канала; закрытый канал -> io.EOF.
type fakeLineReader struct {
	lines  chan string
	out    *syncBuffer
	prompt string
}

func newFakeLineReader(out *syncBuffer, lines ...string) *fakeLineReader {
	lr := &fakeLineReader{lines: make(chan string, 16), out: out}
	for _, l := range lines {
		lr.lines <- l
	}
	return lr
}

func (f *fakeLineReader) Readline() (string, error) {
	line, ok := <-f.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (f *fakeLineReader) ReadPassword(string) ([]byte, error) {
	line, err := f.Readline()
	return []byte(line), err
}

func (f *fakeLineReader) SetPrompt(p string) { f.prompt = p }
func (f *fakeLineReader) Stdout() io.Writer  { return f.out }
func (f *fakeLineReader) Close() error       { return nil }

// testEnv — fakebackend на httptest и изолированные конфиг и токен.
type testEnv struct {
	backend *fakebackend.Backend
	url     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	b := fakebackend.New(fakebackend.Options{Seed: true, BcryptCost: bcrypt.MinCost, Logger: logger.Discard()})
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("NEWSCHAT_API_URL", srv.URL)
	t.Setenv("NEWSCHAT_TOKEN_FILE", filepath.Join(dir, "token.json"))
	t.Setenv("NEWSCHAT_CHAT_RECONNECT_ENABLED", "false")

	return &testEnv{backend: b, url: srv.URL}
}

type result struct {
	out string
	err error
}

// run выполняет одну команду как отдельный запуск бинаря.
func (e *testEnv) run(t *testing.T, lr *fakeLineReader, args ...string) result {
	t.Helper()
	return e.runContext(context.Background(), t, lr, args...)
}

func (e *testEnv) runContext(ctx context.Context, t *testing.T, lr *fakeLineReader, args ...string) result {
	t.Helper()
	out := &syncBuffer{}
	err := e.execute(ctx, out, lr, args...)
	return result{out: out.String(), err: err}
}

// execute пишет вывод команды в out по ходу работы.
func (e *testEnv) execute(ctx context.Context, out *syncBuffer, lr *fakeLineReader, args ...string) error {
	if lr != nil && lr.out == nil {
		lr.out = out
	}
	a := newApp(Streams{In: io.NopCloser(strings.NewReader("")), Out: out, Err: io.Discard})
	a.newLineReader = func(prompt string) (lineReader, error) {
		if lr == nil {
			empty := newFakeLineReader(out)
			close(empty.lines)
			return empty, nil
		}
		lr.SetPrompt(prompt)
		return lr, nil
	}

	root := newRootCommand(a)
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func (e *testEnv) signupAndLogin(t *testing.T) {
	t.Helper()
	r := e.run(t, nil, "signup", "--email", "alice@example.com", "--username", "alice", "--password", "secret1")
	require.NoError(t, r.err)
	r = e.run(t, nil, "login", "--email", "alice@example.com", "--password", "secret1")
	require.NoError(t, r.err)
	require.Contains(t, r.out, "logged in as alice")
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t)

	r := env.run(t, nil, "me")
	require.NoError(t, r.err)
	assert.Equal(t, "alice <alice@example.com>\n", r.out)

	r = env.run(t, nil, "logout")
	require.NoError(t, r.err)

	r = env.run(t, nil, "me")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, errs.ErrUnauthorized)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	env := newTestEnv(t)
	r := env.run(t, nil, "signup", "--email", "bob@example.com", "--username", "bob", "--password", "secret1")
	require.NoError(t, r.err)

	lr := newFakeLineReader(nil, "secret1")
	r = env.run(t, lr, "login", "--email", "bob@example.com")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "logged in as bob")
	assert.Equal(t, "password: ", lr.prompt)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t)

	r := env.run(t, nil, "login", "--email", "alice@example.com", "--password", "nope-nope")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, errs.ErrUnauthorized)
}

func TestPasswd(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t)

	r := env.run(t, nil, "passwd", "--current", "secret1", "--new", "secret2", "--confirm", "other")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, errs.ErrInvalidInput)

	r = env.run(t, nil, "passwd", "--current", "secret1", "--new", "secret2", "--confirm", "secret2")
	require.NoError(t, r.err)

	r = env.run(t, nil, "login", "--email", "alice@example.com", "--password", "secret2")
	require.NoError(t, r.err)
}

func TestArticles(t *testing.T) {
	env := newTestEnv(t)

	r := env.run(t, nil, "articles", "--category", "경제")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Markets rally after election results")
	assert.Contains(t, r.out, "Semiconductor exports rebound")
	assert.NotContains(t, r.out, "Typhoon")

	r = env.run(t, nil, "articles", "-s", "TYPHOON")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Typhoon expected to make landfall")

	r = env.run(t, nil, "articles", "--popular", "--category", "경제")
	require.Error(t, r.err)
}

func TestRoomsAndRoom(t *testing.T) {
	env := newTestEnv(t)

	r := env.run(t, nil, "rooms")
	require.NoError(t, r.err)
	for _, topic := range []string{"election", "semiconductor", "typhoon"} {
		assert.Contains(t, r.out, topic)
	}

	require.NoError(t, env.backend.Store().AppendMessage(1, "carol", "turnout looks huge"))

	r = env.run(t, nil, "room", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "# election (room 1")
	assert.Contains(t, r.out, "Election turnout hits record high")
	assert.Contains(t, r.out, "carol> turnout looks huge")

	r = env.run(t, nil, "room", "999")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, errs.ErrNotFound)
}

func TestRooms_WatchRefreshes(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- env.execute(ctx, out, nil, "rooms", "--watch", "--interval", "10ms") }()

	deadline := time.Now().Add(3 * time.Second)
	// таблица пишется одним Flush, так что второй RANK значит вторую целую таблицу
	for strings.Count(out.String(), "RANK") < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("watch did not refresh twice:\n%s", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("rooms --watch did not stop on cancel")
	}
	assert.GreaterOrEqual(t, strings.Count(out.String(), "-- top rooms at"), 2)
	assert.GreaterOrEqual(t, strings.Count(out.String(), "election"), 2)
}

func TestChat_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	r := env.run(t, newFakeLineReader(nil), "chat")
	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, errs.ErrUnauthorized)
}

func TestChat_RoomSession(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t)

	out := &syncBuffer{}
	lr := newFakeLineReader(out)
	done := make(chan result, 1)
	go func() { done <- env.run(t, lr, "chat", "1") }()

	waitOutput(t, out, "alice entered the room")
	lr.lines <- "hello from the cli"
	waitOutput(t, out, "hello from the cli <me")

	lr.lines <- "/global"
	waitOutput(t, out, "joined global chat as alice")
	lr.lines <- "/quit"

	select {
	case r := <-done:
		require.NoError(t, r.err)
	case <-time.After(3 * time.Second):
		t.Fatal("chat did not exit on /quit")
	}
	close(lr.lines)

	assert.Contains(t, out.String(), "# election")
	assert.Contains(t, out.String(), "joined room 1 chat as alice")

	msgs, err := env.backend.Store().Room(1)
	require.NoError(t, err)
	require.NotEmpty(t, msgs.Messages)
	assert.Equal(t, "hello from the cli", msgs.Messages[len(msgs.Messages)-1].Message)
}

func TestChat_UnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	env.signupAndLogin(t)

	out := &syncBuffer{}
	lr := newFakeLineReader(out, "/quit")
	r := env.run(t, lr, "chat", "999")
	require.NoError(t, r.err)
	assert.Contains(t, out.String(), "load room 999")
}

func waitOutput(t *testing.T, out *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(out.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %q in output:\n%s", want, out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRenderMessage(t *testing.T) {
	cases := []struct {
		name string
		msg  domain.ChatMessage
		want string
	}{
		{"system", domain.ChatMessage{Username: "📢", Message: "bob entered the room"}, "  *** bob entered the room\n"},
		{"other", domain.ChatMessage{Username: "bob", Message: "hi"}, "bob> hi\n"},
		{"own", domain.ChatMessage{Username: "alice", Message: "hey"}, strings.Repeat(" ", ownWidth-len("hey <me")) + "hey <me\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			renderMessage(&buf, tc.msg, "alice", "📢")
			assert.Equal(t, tc.want, buf.String())
		})
	}
}
