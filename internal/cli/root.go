// Package cli — терминальный клиент новостного чата: лента, комнаты, аутентификация и чат.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cwrk-planet/news-chat/pkg/logger"
)

const version = "v0.1.0"

func NewRootCommand(in io.ReadCloser, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(newApp(Streams{In: in, Out: out, Err: errOut}))
}

func newRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "newschat",
		Short:         "Browse news and chat about it from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Close()
		},
	}
	root.SetIn(a.streams.In)
	root.SetOut(a.streams.Out)
	root.SetErr(a.streams.Err)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config.yaml (default $CONFIG_PATH or ~/.newschat/config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Verbose logging to stderr")

	root.AddCommand(
		newLoginCommand(a),
		newSignupCommand(a),
		newLogoutCommand(a),
		newMeCommand(a),
		newProfileCommand(a),
		newPasswdCommand(a),
		newArticlesCommand(a),
		newViewCommand(a),
		newRoomsCommand(a),
		newRoomCommand(a),
		newChatCommand(a),
		newDevBackendCommand(a),
	)

	return root
}
