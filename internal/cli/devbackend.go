package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwrk-planet/news-chat/internal/fakebackend"
)

// newDevBackendCommand поднимает in-memory бекенд для локальной отладки клиента.
func newDevBackendCommand(a *App) *cobra.Command {
	var (
		addr   string
		seed   bool
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:    "dev-backend",
		Short:  "Run an in-memory news/chat backend",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := fakebackend.New(fakebackend.Options{
				Secret:         []byte(secret),
				TokenTTL:       ttl,
				MaxMessageSize: a.cfg.WS.MaxMessageSize,
				Seed:           seed,
				Logger:         a.log,
			})
			srv := fakebackend.NewServer(fakebackend.ServerConfig{
				Addr:        addr,
				ReadTimeout: 15 * time.Second,
				IdleTimeout: 60 * time.Second,
			}, b.Handler())

			return srv.Run(cmd.Context(), func(bound string) {
				fmt.Fprintf(a.streams.Out, "dev backend listening on http://%s\n", bound)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().BoolVar(&seed, "seed", true, "Seed demo articles and rooms")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (random if empty)")
	cmd.Flags().DurationVar(&ttl, "token-ttl", 30*time.Minute, "Access token lifetime")

	return cmd
}
