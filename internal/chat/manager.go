package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/pkg/logger"
)

// Snapshot — копия состояния сессии на момент мутации.
type Snapshot struct {
	Scope        domain.Scope
	Identity     string
	State        domain.ConnState
	History      []domain.ChatMessage
	PendingInput string
	// Generation — эпоха соединения, растёт на каждом mount и teardown.
	Generation uint64
	// Err — текст последней ошибки транспорта, пусто если не Failed.
	Err string
}

// Observer получает снапшот после каждой мутации истории или состояния, в порядке мутаций.
// Вызывается под внутренним локом уведомлений: методы Manager из OnUpdate звать нельзя.
type Observer interface {
	OnUpdate(Snapshot)
}

type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnUpdate(s Snapshot) { f(s) }

type Options struct {
	Dialer   Dialer
	Identity IdentitySource
	// BaseURL — ws(s)://host, без /ws.
	BaseURL  string
	Observer Observer
	Logger   *slog.Logger
}

type MountOption func(*mountOptions)

type mountOptions struct {
	backlog []domain.ChatMessage
}

// WithBacklog — история комнаты из REST; ставится перед всеми живыми фреймами.
func WithBacklog(msgs []domain.ChatMessage) MountOption {
	return func(o *mountOptions) {
		o.backlog = append(o.backlog, msgs...)
	}
}

// Manager держит не больше одного живого соединения и упорядоченную историю для него.
type Manager struct {
	dialer   Dialer
	identity IdentitySource
	baseURL  string
	observer Observer
	log      *slog.Logger

	mu         sync.Mutex
	state      domain.ConnState
	scope      domain.Scope
	user       string
	history    []domain.ChatMessage
	pending    string
	gen        uint64
	conn       Conn
	cancelDial context.CancelFunc
	lastErr    string
	outbox     []Snapshot

	notifyMu sync.Mutex
	readers  sync.WaitGroup
}

func New(opts Options) (*Manager, error) {
	if opts.Dialer == nil {
		return nil, errors.New("chat: dialer is required")
	}
	if opts.Identity == nil {
		return nil, errors.New("chat: identity source is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("chat: parse base url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("chat: unsupported scheme %q", u.Scheme)
	}
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}

	return &Manager{
		dialer:   opts.Dialer,
		identity: opts.Identity,
		baseURL:  base,
		observer: opts.Observer,
		log:      log.With("component", "chat"),
		state:    domain.StateIdle,
	}, nil
}

// Mount привязывает сессию к scope: закрывает текущее соединение, чистит историю и дозванивается.
// Без identity dial не начинается и возвращается ErrNoIdentity: Idle остаётся Idle,
// открытая сессия после teardown остаётся Closed.
func (m *Manager) Mount(ctx context.Context, scope domain.Scope, opts ...MountOption) error {
	if !scope.Valid() {
		return ErrInvalidScope
	}
	var mo mountOptions
	for _, o := range opts {
		o(&mo)
	}

	m.mu.Lock()
	m.teardownLocked()

	m.scope = scope
	m.pending = ""
	m.history = nil

	user, ok := m.identity.Identity()
	if !ok {
		m.user = ""
		m.queueLocked()
		m.unlockAndNotify()
		return ErrNoIdentity
	}
	m.lastErr = ""
	target, err := Endpoint(m.baseURL, scope, user)
	if err != nil {
		m.user = user
		m.failLocked(err)
		m.unlockAndNotify()
		return err
	}

	m.gen++
	gen := m.gen
	m.user = user
	m.history = append(make([]domain.ChatMessage, 0, len(mo.backlog)), mo.backlog...)
	m.state = domain.StateConnecting
	dialCtx, cancel := context.WithCancel(ctx)
	m.cancelDial = cancel
	m.queueLocked()
	m.unlockAndNotify()

	m.log.DebugContext(ctx, "chat.Mount dialing", logger.Args(ctx, "scope", scope.String(), "gen", gen)...)
	conn, err := m.dialer.Dial(dialCtx, target)

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		cancel()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrSuperseded
	}
	m.cancelDial = nil
	cancel()

	if err != nil {
		m.log.WarnContext(ctx, "chat.Mount failed", logger.Args(ctx, "scope", scope.String(), "err", err)...)
		m.failLocked(err)
		m.unlockAndNotify()
		return err
	}

	m.conn = conn
	m.state = domain.StateOpen
	m.queueLocked()
	m.readers.Add(1)
	go m.readLoop(gen, conn)
	m.unlockAndNotify()

	m.log.InfoContext(ctx, "chat session open", logger.Args(ctx, "scope", scope.String(), "user", user, "gen", gen)...)
	return nil
}

// Close — Open -> Closing -> Closed. close-фрейм уходит до возврата. На закрытой сессии no-op.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.teardownLocked()
	m.unlockAndNotify()

	return nil
}

// Unmount закрывает сессию поверхности, которая уходит с экрана.
func (m *Manager) Unmount() error { return m.Close() }

// Send отправляет обрезанный текст. Не Open или пустой текст: тихий no-op.
func (m *Manager) Send(text string) error {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	if m.state != domain.StateOpen || text == "" {
		m.mu.Unlock()
		return nil
	}
	if err := m.conn.WriteText(text); err != nil {
		m.log.Warn("chat.Send failed", "scope", m.scope.String(), "err", err)
		m.failLocked(err)
		m.unlockAndNotify()
		return fmt.Errorf("chat: send: %w", err)
	}
	m.pending = ""
	m.queueLocked()
	m.unlockAndNotify()

	return nil
}

// SetInput правит черновик в поле ввода.
func (m *Manager) SetInput(text string) {
	m.mu.Lock()
	m.pending = text
	m.queueLocked()
	m.unlockAndNotify()
}

// SendPending отправляет текущий черновик.
func (m *Manager) SendPending() error {
	m.mu.Lock()
	text := m.pending
	m.mu.Unlock()

	return m.Send(text)
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshotLocked()
}

func (m *Manager) State() domain.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Wait ждёт выхода всех reader-горутин. Звать после Close.
func (m *Manager) Wait() {
	m.readers.Wait()
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	defer m.readers.Done()

	for {
		data, err := conn.ReadFrame()
		if err != nil {
			m.readFailed(gen, err)
			return
		}
		msg, err := DecodeFrame(data)
		if err != nil {
			m.log.Warn("chat.readLoop dropped frame", "gen", gen, "bytes", len(data), "err", err)
			continue
		}
		if !m.appendFrame(gen, msg) {
			return
		}
	}
}

// appendFrame вернёт false, если соединение уже не текущее.
func (m *Manager) appendFrame(gen uint64, msg domain.ChatMessage) bool {
	m.mu.Lock()
	if m.gen != gen || m.state != domain.StateOpen {
		m.mu.Unlock()
		return false
	}
	m.history = append(m.history, msg)
	m.queueLocked()
	m.unlockAndNotify()

	return true
}

func (m *Manager) readFailed(gen uint64, err error) {
	m.mu.Lock()
	if m.gen != gen || m.state != domain.StateOpen {
		// наш собственный teardown
		m.mu.Unlock()
		return
	}

	if errors.Is(err, ErrPeerClosed) {
		m.log.Info("chat session closed by peer", "scope", m.scope.String(), "gen", gen)
		m.gen++
		m.state = domain.StateClosing
		m.queueLocked()
		m.closeConnLocked()
		m.state = domain.StateClosed
		m.queueLocked()
	} else {
		m.log.Warn("chat.readLoop failed", "scope", m.scope.String(), "gen", gen, "err", err)
		m.failLocked(err)
	}
	m.unlockAndNotify()
}

func (m *Manager) teardownLocked() {
	switch m.state {
	case domain.StateConnecting:
		m.gen++
		m.state = domain.StateClosing
		m.queueLocked()
		if m.cancelDial != nil {
			m.cancelDial()
			m.cancelDial = nil
		}
		m.state = domain.StateClosed
		m.queueLocked()
	case domain.StateOpen:
		m.gen++
		m.state = domain.StateClosing
		m.queueLocked()
		m.closeConnLocked()
		m.state = domain.StateClosed
		m.queueLocked()
	}
}

func (m *Manager) failLocked(err error) {
	m.gen++
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	m.closeConnLocked()
	m.state = domain.StateFailed
	m.lastErr = err.Error()
	m.queueLocked()
}

func (m *Manager) closeConnLocked() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil {
		m.log.Debug("chat conn close failed", "scope", m.scope.String(), "err", err)
	}
	m.conn = nil
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Scope:        m.scope,
		Identity:     m.user,
		State:        m.state,
		History:      append([]domain.ChatMessage(nil), m.history...),
		PendingInput: m.pending,
		Generation:   m.gen,
		Err:          m.lastErr,
	}
}

func (m *Manager) queueLocked() {
	if m.observer == nil {
		return
	}
	m.outbox = append(m.outbox, m.snapshotLocked())
}

// unlockAndNotify отпускает mu и отдаёт накопленные снапшоты наблюдателю.
// notifyMu берётся до отпускания mu, поэтому порядок уведомлений = порядок мутаций.
func (m *Manager) unlockAndNotify() {
	batch := m.outbox
	m.outbox = nil
	if len(batch) == 0 {
		m.mu.Unlock()
		return
	}

	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	for _, s := range batch {
		m.observer.OnUpdate(s)
	}
}
