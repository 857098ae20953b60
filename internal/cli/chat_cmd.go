package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/cwrk-planet/news-chat/internal/chat"
	"github.com/cwrk-planet/news-chat/internal/config"
	"github.com/cwrk-planet/news-chat/internal/domain"
)

func newChatCommand(a *App) *cobra.Command {
	var reconnect bool

	cmd := &cobra.Command{
		Use:   "chat [roomID]",
		Short: "Join the global chat or a room chat",
		Args:  cobra.MaximumNArgs(1),
		Example: `  newschat chat
  newschat chat 42
  newschat chat 42 --reconnect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := domain.GlobalScope()
			if len(args) == 1 {
				scope = domain.RoomScope(args[0])
			}
			rc := a.cfg.Chat.Reconnect
			if cmd.Flags().Changed("reconnect") {
				rc.Enabled = reconnect
			}
			return a.runChat(cmd.Context(), scope, rc)
		},
	}

	cmd.Flags().BoolVar(&reconnect, "reconnect", false, "Reconnect with backoff when the connection fails")

	return cmd
}

func (a *App) runChat(ctx context.Context, scope domain.Scope, rc config.Reconnect) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}

	rl, err := a.newLineReader("> ")
	if err != nil {
		return fmt.Errorf("open prompt: %w", err)
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &chatSurface{
		app:       a,
		out:       rl.Stdout(),
		sentinel:  a.cfg.WS.Sentinel,
		reconnect: rc,
		failed:    make(chan struct{}, 1),
	}

	dialer := &chat.WSDialer{
		HandshakeTimeout: a.cfg.WS.HandshakeTimeout,
		WriteTimeout:     a.cfg.WS.WriteTimeout,
		MaxMessageSize:   a.cfg.WS.MaxMessageSize,
	}
	if a.cfg.WS.AttachToken {
		dialer.Token = a.auth.Token
	}
	s.mgr, err = chat.New(chat.Options{
		Dialer:   dialer,
		Identity: a.auth,
		BaseURL:  a.cfg.WS.BaseURL,
		Observer: s,
		Logger:   a.log,
	})
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		_ = s.mgr.Close()
		s.mgr.Wait()
	}()

	unsubscribe := a.auth.Subscribe(func(u *domain.User) {
		if u == nil {
			_ = s.mgr.Close()
		}
	})
	defer unsubscribe()

	if rc.Enabled {
		go s.supervise(ctx)
	}
	// ошибку dial уже показал OnUpdate
	if err := s.mount(ctx, scope); err != nil && s.mgr.State() != domain.StateFailed {
		fmt.Fprintf(s.out, "-- %v\n", err)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := rl.Readline()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line := <-lines:
			if quit := s.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

// chatSurface — терминальная поверхность над chat.Manager.
type chatSurface struct {
	app       *App
	mgr       *chat.Manager
	out       io.Writer
	sentinel  string
	reconnect config.Reconnect
	failed    chan struct{}

	// только из OnUpdate
	printed   int
	lastState domain.ConnState
	lastGen   uint64

	mu    sync.Mutex
	scope domain.Scope
}

// OnUpdate печатает новые сообщения и смены состояния. Методы Manager отсюда не звать.
func (s *chatSurface) OnUpdate(snap chat.Snapshot) {
	if snap.State == domain.StateConnecting || s.printed > len(snap.History) {
		s.printed = 0
	}
	if snap.State != s.lastState || snap.Generation != s.lastGen {
		s.lastState, s.lastGen = snap.State, snap.Generation
		renderState(s.out, snap)
	}
	for ; s.printed < len(snap.History); s.printed++ {
		renderMessage(s.out, snap.History[s.printed], snap.Identity, s.sentinel)
	}

	if snap.State == domain.StateFailed {
		select {
		case s.failed <- struct{}{}:
		default:
		}
	}
}

func (s *chatSurface) currentScope() domain.Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// mount подтягивает историю комнаты по REST и монтирует сессию.
func (s *chatSurface) mount(ctx context.Context, scope domain.Scope) error {
	var opts []chat.MountOption
	if scope.Kind == domain.ScopeRoom {
		room, err := s.app.api.Room(ctx, scope.RoomID)
		if err != nil {
			return fmt.Errorf("load room %s: %w", scope.RoomID, err)
		}
		fmt.Fprintf(s.out, "# %s\n", room.Details.TopicKeyword)
		opts = append(opts, chat.WithBacklog(room.Messages))
	}
	s.mu.Lock()
	s.scope = scope
	s.mu.Unlock()

	err := s.mgr.Mount(ctx, scope, opts...)
	if errors.Is(err, chat.ErrNoIdentity) {
		return errNotLoggedIn
	}
	return err
}

// supervise перемонтирует сессию с экспоненциальной задержкой после Failed.
func (s *chatSurface) supervise(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.failed:
		}

		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = s.reconnect.InitialInterval
		eb.MaxInterval = s.reconnect.MaxInterval

		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			if s.mgr.State() == domain.StateOpen {
				return struct{}{}, nil
			}
			err := s.mount(ctx, s.currentScope())
			switch {
			case err == nil:
				return struct{}{}, nil
			case errors.Is(err, errNotLoggedIn), errors.Is(err, chat.ErrInvalidScope), errors.Is(err, chat.ErrSuperseded):
				return struct{}{}, backoff.Permanent(err)
			default:
				return struct{}{}, err
			}
		},
			backoff.WithBackOff(eb),
			backoff.WithMaxElapsedTime(s.reconnect.MaxElapsed),
			backoff.WithNotify(func(err error, d time.Duration) {
				fmt.Fprintf(s.out, "-- reconnecting in %s\n", d.Round(100*time.Millisecond))
			}),
		)
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(s.out, "-- giving up on reconnect: %v\n", err)
		}
	}
}

// handleLine вернёт true, если пользователь вышел.
func (s *chatSurface) handleLine(ctx context.Context, line string) bool {
	text := strings.TrimSpace(line)
	switch {
	case text == "/quit" || text == "/exit":
		return true
	case text == "/global":
		if err := s.mount(ctx, domain.GlobalScope()); err != nil && s.mgr.State() != domain.StateFailed {
			fmt.Fprintf(s.out, "-- %v\n", err)
		}
	case strings.HasPrefix(text, "/room"):
		id := strings.TrimSpace(strings.TrimPrefix(text, "/room"))
		if id == "" {
			fmt.Fprintln(s.out, "-- usage: /room <id>")
			return false
		}
		if err := s.mount(ctx, domain.RoomScope(id)); err != nil && s.mgr.State() != domain.StateFailed {
			fmt.Fprintf(s.out, "-- %v\n", err)
		}
	default:
		s.mgr.SetInput(line)
		if err := s.mgr.SendPending(); err != nil {
			fmt.Fprintf(s.out, "-- send failed: %v\n", err)
		}
	}

	return false
}
