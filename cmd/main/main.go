package main

import (
	"context"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"twitchbot/internal/pkg/app"
)

type rootFlags struct {
	configPath string
	envPath    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "twitchbot",
		Short:         "Twitch chat bot: commands, timers and ban patterns for one channel",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(flags.configPath, flags.envPath)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.json", "path to the JSON config, created with defaults if missing")
	cmd.PersistentFlags().StringVar(&flags.envPath, "env", ".env", "optional dotenv file with chat credentials")

	cmd.AddCommand(newBanwordsCmd(flags))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
