package logger

import (
	"io"
	"log/slog"
)

type Backend string

const (
	BackendStd Backend = "std" // text handler, для терминала
	BackendZap Backend = "zap" // slog-zap, JSON
)

type Config struct {
	// Метаданные для логгера
	Service string
	Version string
	// RunID — метка запуска; пусто -> генерируется в Init.
	RunID string

	// Управление выводом
	Level   slog.Level
	Env     Env
	Backend Backend // default: std для dev, zap для stage/prod
	Debug   bool

	// Out — куда писать. По умолчанию os.Stderr: stdout занят чатом.
	Out io.Writer
	// File — если задан, логи пишутся в файл (append), Out игнорируется.
	File string

	// Zap sampling
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}

func (c Config) level() slog.Level {
	if c.Debug && c.Level == 0 {
		return slog.LevelDebug
	}

	return c.Level
}
