package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu   sync.Mutex
	def  *slog.Logger
	file *os.File
)

// Init настраивает slog в зависимости от среды и ставит его дефолтным.
func Init(cfg Config) error {
	if cfg.Env == "" {
		cfg.Env = DetectEnv()
	}
	if cfg.Service == "" {
		cfg.Service = "newschat"
	}
	if cfg.RunID == "" {
		cfg.RunID = newRunID()
	}

	// Выбор бекенда по умолчанию
	if cfg.Backend == "" {
		if cfg.Env == EnvDev {
			cfg.Backend = BackendStd
		} else {
			cfg.Backend = BackendZap
		}
	}

	mu.Lock()
	defer mu.Unlock()

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	var f *os.File
	if cfg.File != "" {
		var err error
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("logger: open %s: %w", cfg.File, err)
		}
		out = f
	}

	var h slog.Handler
	switch cfg.Backend {
	case BackendZap:
		h = newZapHandler(cfg, out)
	default:
		h = newStdHandler(cfg, out)
	}
	h = h.WithAttrs(commonAttr(cfg))

	closeFileLocked()
	file = f
	def = slog.New(h)
	slog.SetDefault(def)

	return nil
}

func L() *slog.Logger {
	mu.Lock()
	l := def
	mu.Unlock()
	if l != nil {
		return l
	}

	_ = Init(Config{})
	return L()
}

// Discard отдаёт логгер в никуда, для тестов.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close закрывает лог-файл, если он был открыт.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	return closeFileLocked()
}

func closeFileLocked() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil

	return err
}
