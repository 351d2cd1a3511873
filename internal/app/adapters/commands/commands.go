package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
	"twitchbot/internal/app/domain/message"
	"twitchbot/internal/app/domain/registry"
	"twitchbot/internal/app/infrastructure/config"
	"twitchbot/internal/app/ports"
)

const userPlaceholder = "{user}"

// Registrar is the registration half of the bot.
type Registrar interface {
	RegisterCommand(trigger string, handler registry.CommandHandler) error
	RegisterTimer(handler registry.TimerHandler, interval time.Duration) error
}

// Static replies with a fixed text, substituting the sender for {user}.
func Static(text string) registry.CommandHandler {
	return func(_ context.Context, msg message.Message) (string, error) {
		return strings.ReplaceAll(text, userPlaceholder, msg.User), nil
	}
}

// Announcement posts a fixed text on every timer firing.
func Announcement(text string) registry.TimerHandler {
	return func(context.Context) (string, error) {
		return text, nil
	}
}

// Register binds the configured commands, timers and the status command.
func Register(r Registrar, cfg *config.Config, status ports.StatusPort) error {
	for trigger, text := range cfg.Commands {
		if err := r.RegisterCommand(trigger, Static(text)); err != nil {
			return fmt.Errorf("register command %s: %w", trigger, err)
		}
	}

	if cfg.App.StatusCommand != "" {
		if err := r.RegisterCommand(cfg.App.StatusCommand, NewStatus(status, nil).Handle); err != nil {
			return fmt.Errorf("register command %s: %w", cfg.App.StatusCommand, err)
		}
	}

	for i, t := range cfg.Timers {
		if err := r.RegisterTimer(Announcement(t.Text), t.IntervalDuration()); err != nil {
			return fmt.Errorf("register timer %d: %w", i, err)
		}
	}
	return nil
}
