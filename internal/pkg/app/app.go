package app

import (
	"context"
	"errors"
	"fmt"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"net"
	"strconv"
	"time"
	"twitchbot/internal/app/adapters/bot"
	"twitchbot/internal/app/adapters/commands"
	router "twitchbot/internal/app/adapters/http"
	"twitchbot/internal/app/adapters/platform/twitch/irc"
	"twitchbot/internal/app/domain/moderation"
	"twitchbot/internal/app/infrastructure/config"
	"twitchbot/pkg/logger"
)

const cpuSampleInterval = 15 * time.Second

type App struct {
	log     logger.Logger
	manager *config.Manager
	bot     *bot.Bot
	router  *router.Router
}

// New loads configuration and builds the bot with its commands, timers and
// HTTP surface. Nothing connects until Run.
func New(configPath, envPath string) (*App, error) {
	if err := config.LoadEnv(envPath); err != nil {
		return nil, err
	}

	manager, err := config.New(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()

	var opts []logger.Option
	if cfg.App.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.App.LogFile))
	}
	base := logger.New(opts...)
	base.SetLogLevel(cfg.App.LogLevel)
	log := logger.NewPrefixedLogger(base, cfg.Chat.Channel)

	var proxyAddr string
	if cfg.Proxy != nil && cfg.Proxy.Address != "" && cfg.Proxy.Port != 0 {
		proxyAddr = net.JoinHostPort(cfg.Proxy.Address, strconv.Itoa(cfg.Proxy.Port))
	}

	dialer, err := irc.NewDialer(irc.DialOptions{
		Transport: cfg.Chat.Transport,
		Host:      cfg.Chat.Host,
		Port:      cfg.Chat.Port,
		Proxy:     proxyAddr,
		Timeout:   cfg.Chat.HandshakeTimeoutDuration(),
	})
	if err != nil {
		return nil, fmt.Errorf("build dialer: %w", err)
	}

	conn := irc.New(log, irc.Options{
		Username:         cfg.Chat.Username,
		OAuth:            cfg.Chat.OAuth,
		Channel:          cfg.Chat.Channel,
		HandshakeTimeout: cfg.Chat.HandshakeTimeoutDuration(),
		ReadBufferSize:   cfg.Chat.ReadBufferSize,
	}, dialer)

	moderator, err := moderation.New(log, conn, moderation.Options{
		Patterns:     cfg.Banwords.Patterns,
		MatchTimeout: cfg.Banwords.MatchTimeoutDuration(),
		Cooldown:     cfg.Banwords.CooldownDuration(),
	})
	if err != nil {
		return nil, fmt.Errorf("compile ban patterns: %w", err)
	}

	b := bot.New(log, conn, moderator, bot.Options{
		Color:          cfg.Chat.Color,
		Workers:        cfg.Dispatch.Workers,
		QueueSize:      cfg.Dispatch.QueueSize,
		HandlerTimeout: cfg.Dispatch.HandlerTimeoutDuration(),
		Reconnect: bot.ReconnectOptions{
			MaxTries:     cfg.Reconnect.MaxTries,
			InitialDelay: cfg.Reconnect.InitialDelayDuration(),
			MaxDelay:     cfg.Reconnect.MaxDelayDuration(),
		},
	})
	if err := commands.Register(b, cfg, b); err != nil {
		return nil, err
	}

	a := &App{
		log:     log,
		manager: manager,
		bot:     b,
	}
	if cfg.App.HTTPAddr != "" {
		a.router = router.NewRouter(log, b, router.Options{
			Addr:      cfg.App.HTTPAddr,
			GinMode:   cfg.App.GinMode,
			AuthToken: cfg.App.AuthToken,
		})
	}
	return a, nil
}

// Run blocks until ctx is cancelled or the bot stops on a fatal error. The
// HTTP server and the CPU collector stop with it.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.bot.Run(gctx)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("bot stopped")
		}
		return err
	})

	if a.router != nil {
		g.Go(func() error {
			return a.router.Run(gctx)
		})
	}

	g.Go(func() error {
		commands.CollectCPU(gctx, a.log, cpuSampleInterval, nil)
		return nil
	})

	a.log.Info("Chatbot started", slog.String("channel", a.manager.Get().Chat.Channel))
	if err := g.Wait(); err != nil {
		a.log.Error("Chatbot stopped", err)
		return err
	}

	a.log.Info("Chatbot stopped")
	return nil
}
