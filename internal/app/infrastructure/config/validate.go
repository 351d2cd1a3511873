package config

import (
	"errors"
	"fmt"
	"strings"
	"twitchbot/internal/app/domain/moderation"
)

func (m *Manager) validate(cfg *Config) error {
	// app
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if cfg.App.LogLevel != "" && !validLevels[cfg.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of trace, debug, info, warn, error; got %s", cfg.App.LogLevel)
	}
	if cfg.App.GinMode != "" && cfg.App.GinMode != "debug" && cfg.App.GinMode != "release" && cfg.App.GinMode != "test" {
		return fmt.Errorf("app.gin_mode must be one of debug, release, test; got %s", cfg.App.GinMode)
	}
	if strings.ContainsAny(cfg.App.StatusCommand, " \t") {
		return errors.New("app.status_command must be a single token")
	}

	// chat
	switch cfg.Chat.Transport {
	case TransportTCP, TransportTLS, TransportWebSocket, TransportPlainWS:
	default:
		return fmt.Errorf("chat.transport must be one of tcp, tls, wss, ws; got %s", cfg.Chat.Transport)
	}
	if cfg.Chat.Host == "" {
		return errors.New("chat.host is required")
	}
	if cfg.Chat.Port <= 0 || cfg.Chat.Port > 65535 {
		return errors.New("chat.port must be [1,65535]")
	}
	if cfg.Chat.Username == "" {
		return errors.New("chat.username is required")
	}
	if cfg.Chat.OAuth == "" {
		return errors.New("chat.oauth is required")
	}
	if strings.TrimPrefix(cfg.Chat.Channel, "#") == "" {
		return errors.New("chat.channel is required")
	}
	if cfg.Chat.HandshakeTimeout < 0 || cfg.Chat.HandshakeTimeout > 300 {
		return errors.New("chat.handshake_timeout must be [0,300]")
	}
	if cfg.Chat.ReadBufferSize < 0 {
		return errors.New("chat.read_buffer_size must not be negative")
	}

	// proxy
	if cfg.Proxy != nil {
		if cfg.Proxy.Address == "" {
			return errors.New("proxy.address is required")
		}
		if cfg.Proxy.Port <= 0 || cfg.Proxy.Port > 65535 {
			return errors.New("proxy.port must be [1,65535]")
		}
	}

	// reconnect
	if cfg.Reconnect.MaxTries > 100 {
		return errors.New("reconnect.max_tries must be [0,100]")
	}
	if cfg.Reconnect.InitialDelay < 0 || cfg.Reconnect.MaxDelay < 0 {
		return errors.New("reconnect delays must not be negative")
	}
	if cfg.Reconnect.MaxDelay != 0 && cfg.Reconnect.InitialDelay > cfg.Reconnect.MaxDelay {
		return errors.New("reconnect.initial_delay must not exceed reconnect.max_delay")
	}

	// dispatch
	if cfg.Dispatch.Workers < 0 || cfg.Dispatch.Workers > 1024 {
		return errors.New("dispatch.workers must be [0,1024]")
	}
	if cfg.Dispatch.QueueSize < 0 {
		return errors.New("dispatch.queue_size must not be negative")
	}
	if cfg.Dispatch.HandlerTimeout < 0 {
		return errors.New("dispatch.handler_timeout must not be negative")
	}

	// banwords
	if cfg.Banwords.Patterns == nil {
		cfg.Banwords.Patterns = []string{}
	}
	for i, pattern := range cfg.Banwords.Patterns {
		if _, err := moderation.Compile(pattern); err != nil {
			return fmt.Errorf("banwords.patterns[%d]: %w", i, err)
		}
	}
	if cfg.Banwords.MatchTimeout < 0 || cfg.Banwords.Cooldown < 0 {
		return errors.New("banwords.match_timeout and banwords.cooldown must not be negative")
	}

	// commands
	if cfg.Commands == nil {
		cfg.Commands = make(map[string]string)
	}
	for trigger, text := range cfg.Commands {
		if trigger == "" || strings.ContainsAny(trigger, " \t") {
			return fmt.Errorf("commands: trigger %q must be a single token", trigger)
		}
		if text == "" {
			return fmt.Errorf("commands.%s: text is required", trigger)
		}
		if trigger == cfg.App.StatusCommand {
			return fmt.Errorf("commands.%s: trigger is reserved by app.status_command", trigger)
		}
	}

	// timers
	if cfg.Timers == nil {
		cfg.Timers = []Timer{}
	}
	for i, t := range cfg.Timers {
		if t.Text == "" {
			return fmt.Errorf("timers[%d].text is required", i)
		}
		if t.Interval < 1 || t.Interval > 1440 {
			return fmt.Errorf("timers[%d].interval must be [1,1440]", i)
		}
	}

	return nil
}
