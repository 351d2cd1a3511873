package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"strings"
	"twitchbot/internal/app/domain/message"
	"twitchbot/internal/app/domain/moderation"
	"twitchbot/internal/app/infrastructure/config"
	"twitchbot/pkg/logger"
)

func newBanwordsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banwords",
		Short: "Inspect and edit the ban patterns in the config",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <text>...",
		Short: "Report which texts the configured patterns would ban",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadConfig(flags)
			if err != nil {
				return err
			}
			cfg := manager.Get()

			mod, err := moderation.New(logger.New(logger.WithOutput(io.Discard)), nil, moderation.Options{
				Patterns:     cfg.Banwords.Patterns,
				MatchTimeout: cfg.Banwords.MatchTimeoutDuration(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, text := range args {
				if action, ok := mod.Evaluate(message.New("check", text)); ok {
					fmt.Fprintf(out, "ban\t%q\t%s\n", text, action.Pattern)
				} else {
					fmt.Fprintf(out, "ok\t%q\n", text)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <pattern>",
		Short: "Validate a pattern and append it to the config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadConfig(flags)
			if err != nil {
				return err
			}

			pattern := strings.TrimSpace(args[0])
			if _, err := moderation.Compile(pattern); err != nil {
				return err
			}

			if err := manager.Update(func(cfg *config.Config) {
				cfg.Banwords.Patterns = append(cfg.Banwords.Patterns, pattern)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", pattern)
			return nil
		},
	})
	return cmd
}

func loadConfig(flags *rootFlags) (*config.Manager, error) {
	if err := config.LoadEnv(flags.envPath); err != nil {
		return nil, err
	}
	return config.New(flags.configPath)
}
