package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chzyer/readline"

	"github.com/cwrk-planet/news-chat/internal/auth"
	"github.com/cwrk-planet/news-chat/internal/config"
	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
	"github.com/cwrk-planet/news-chat/internal/rest"
	"github.com/cwrk-planet/news-chat/pkg/logger"
)

var errNotLoggedIn = fmt.Errorf("%w: not logged in, run `newschat login` first", errs.ErrUnauthorized)

type Streams struct {
	In  io.ReadCloser
	Out io.Writer
	Err io.Writer
}

// lineReader — то, что нужно от readline; в тестах подменяется.
type lineReader interface {
	Readline() (string, error)
	ReadPassword(prompt string) ([]byte, error)
	SetPrompt(prompt string)
	Stdout() io.Writer
	Close() error
}

// App — общее состояние команд: конфиг, REST-клиент, контекст аутентификации.
type App struct {
	streams    Streams
	configPath string
	debug      bool

	cfg  *config.Config
	log  *slog.Logger
	api  *rest.Client
	auth *auth.Context

	authReady bool

	newLineReader func(prompt string) (lineReader, error)
}

func newApp(s Streams) *App {
	a := &App{streams: s}
	a.newLineReader = func(prompt string) (lineReader, error) {
		return readline.NewEx(&readline.Config{
			Prompt:          prompt,
			Stdin:           s.In,
			Stdout:          s.Out,
			Stderr:          s.Err,
			HistoryLimit:    200,
			InterruptPrompt: "^C",
			EOFPrompt:       "/quit",
		})
	}

	return a
}

// setup собирает конфиг, логгер и клиенты. Бекенд здесь не трогаем.
func (a *App) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.debug {
		cfg.Logging.Debug = true
	}
	a.cfg = cfg

	lc := logger.Config{
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		Debug:     cfg.Logging.Debug,
		File:      cfg.Logging.File,
		AddSource: cfg.Logging.AddSource,
		Out:       a.streams.Err,
	}
	if cfg.Logging.Env != "" {
		lc.Env = logger.ParseEnv(cfg.Logging.Env)
	}
	if !lc.Debug {
		// в терминале пользователя только предупреждения и ошибки
		lc.Level = slog.LevelWarn
	}
	if err := logger.Init(lc); err != nil {
		return err
	}
	a.log = logger.L()

	a.api, err = rest.New(rest.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  a.log,
	})
	if err != nil {
		return err
	}
	a.auth = auth.NewContext(a.api, auth.NewFileStore(cfg.Auth.TokenFile), a.log)

	return nil
}

// initAuth проверяет сохранённый токен, один раз за запуск.
func (a *App) initAuth(ctx context.Context) {
	if a.authReady {
		return
	}
	a.authReady = true
	if err := a.auth.Init(ctx); err != nil {
		fmt.Fprintf(a.streams.Err, "warning: could not validate saved session: %v\n", err)
	}
}

func (a *App) requireUser(ctx context.Context) (domain.User, error) {
	a.initAuth(ctx)
	u, ok := a.auth.User()
	if !ok {
		if a.auth.Token() != "" {
			return domain.User{}, fmt.Errorf("%w: backend unreachable", errs.ErrUnavailable)
		}
		return domain.User{}, errNotLoggedIn
	}

	return u, nil
}

// prompt читает строку или пароль, если флаг не задан.
func (a *App) prompt(value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}
	rl, err := a.newLineReader(label + ": ")
	if err != nil {
		return fmt.Errorf("open prompt: %w", err)
	}
	defer rl.Close()

	var line string
	if secret {
		b, err := rl.ReadPassword(label + ": ")
		if err != nil {
			return promptErr(err)
		}
		line = string(b)
	} else {
		line, err = rl.Readline()
		if err != nil {
			return promptErr(err)
		}
	}
	*value = line

	return nil
}

func promptErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return errors.New("cancelled")
	}
	return err
}
