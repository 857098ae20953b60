package logger

import (
	"io"
	"log/slog"
)

func newStdHandler(cfg Config, out io.Writer) slog.Handler {
	return slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     cfg.level(),
		AddSource: cfg.AddSource,
	})
}
