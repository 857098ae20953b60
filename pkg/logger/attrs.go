package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// newRunID метит один запуск клиента: хост, pid и короткий uuid.
func newRunID() string {
	hn, err := os.Hostname()
	if err != nil || hn == "" {
		hn = "local"
	}

	return fmt.Sprintf("%s-%d-%s", hn, os.Getpid(), uuid.NewString()[:8])
}

func commonAttr(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("version", cfg.Version),
	}
	if cfg.RunID != "" {
		attrs = append(attrs, slog.String("run_id", cfg.RunID))
	}

	return attrs
}
