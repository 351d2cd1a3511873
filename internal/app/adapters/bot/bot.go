package bot

import (
	"context"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
	"log/slog"
	"sync/atomic"
	"time"
	"twitchbot/internal/app/adapters/metrics"
	"twitchbot/internal/app/adapters/platform/twitch/irc"
	"twitchbot/internal/app/domain/message"
	"twitchbot/internal/app/domain/registry"
	"twitchbot/internal/app/infrastructure/timers"
	"twitchbot/internal/app/infrastructure/workers"
	"twitchbot/internal/app/ports"
	"twitchbot/pkg/logger"
)

var ErrAlreadyRunning = errors.New("bot is already running")

const (
	defaultColor          = "CadetBlue"
	defaultWorkers        = 16
	defaultQueueSize      = 1024
	defaultHandlerTimeout = 10 * time.Second

	connectedAnnouncement = "/me Connected."
)

type ReconnectOptions struct {
	// MaxTries bounds connect attempts per detected loss.
	MaxTries     uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

type Options struct {
	Color          string
	Workers        int
	QueueSize      int
	HandlerTimeout time.Duration
	Reconnect      ReconnectOptions
}

func (o *Options) setDefaults() {
	if o.Color == "" {
		o.Color = defaultColor
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = defaultHandlerTimeout
	}
	if o.Reconnect.MaxTries == 0 {
		o.Reconnect.MaxTries = 1
	}
	if o.Reconnect.InitialDelay <= 0 {
		o.Reconnect.InitialDelay = time.Second
	}
	if o.Reconnect.MaxDelay <= 0 {
		o.Reconnect.MaxDelay = 30 * time.Second
	}
}

// Bot reads chat, answers keep-alives and fans every message out to the
// moderator and the matching command without waiting for either.
type Bot struct {
	log       logger.Logger
	conn      *irc.Conn
	moderator ports.ModeratorPort
	registry  *registry.Registry
	timers    ports.TimersPort
	opts      Options

	running   atomic.Bool
	startedAt atomic.Pointer[time.Time]
	skipped   rate.Sometimes
}

func New(log logger.Logger, conn *irc.Conn, moderator ports.ModeratorPort, opts Options) *Bot {
	opts.setDefaults()

	conn.OnStateChange(func(s irc.State) {
		metrics.ConnectionState.Set(float64(s))
	})

	return &Bot{
		log:       log,
		conn:      conn,
		moderator: moderator,
		registry:  registry.New(),
		timers:    timers.NewScheduler(),
		opts:      opts,
		skipped:   rate.Sometimes{First: 5, Interval: time.Minute},
	}
}

// RegisterCommand binds a trigger token to a handler. It must be called
// before Run.
func (b *Bot) RegisterCommand(trigger string, handler registry.CommandHandler) error {
	return b.registry.RegisterCommand(trigger, handler)
}

// RegisterTimer adds a handler posted every interval. It must be called
// before Run.
func (b *Bot) RegisterTimer(handler registry.TimerHandler, interval time.Duration) error {
	return b.registry.RegisterTimer(handler, interval)
}

func (b *Bot) Status() ports.Status {
	st := ports.Status{
		State:   b.conn.State().String(),
		Session: b.conn.SessionID(),
		Channel: b.conn.Channel(),
		Timers:  len(b.timers.ActiveTimers()),
	}
	if t := b.startedAt.Load(); t != nil {
		st.StartedAt = *t
	}
	return st
}

// Run connects, then reads and dispatches until ctx is cancelled or the
// connection fails in a way a reconnect cannot repair.
func (b *Bot) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer b.running.Store(false)

	b.registry.Freeze()

	if err := b.conn.Connect(ctx); err != nil {
		return fmt.Errorf("initial connect: %w", err)
	}
	now := time.Now()
	b.startedAt.Store(&now)

	stop := context.AfterFunc(ctx, func() { _ = b.conn.Close() })
	defer stop()
	defer b.conn.Close()

	b.announce()

	pool := workers.New(b.opts.Workers, b.opts.QueueSize)
	defer pool.Stop()

	tctx, cancelTimers := context.WithCancel(ctx)
	defer func() {
		cancelTimers()
		b.timers.Wait()
	}()
	for _, entry := range b.registry.Timers() {
		b.startTimer(tctx, entry)
	}

	for {
		lines, err := b.conn.NextLines(ctx)
		for _, line := range lines {
			b.handleLine(ctx, pool, line)
		}
		if err == nil {
			continue
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, irc.ErrConnectionLost) {
			return fmt.Errorf("read chat: %w", err)
		}

		b.log.Warn("Chat connection lost, reconnecting", slog.String("error", err.Error()))
		if err := b.reconnect(ctx); err != nil {
			return err
		}
	}
}

func (b *Bot) announce() {
	for _, text := range []string{"/color " + b.opts.Color, connectedAnnouncement} {
		if err := b.conn.Say(text); err != nil {
			b.log.Error("Failed to send announcement", err, slog.String("text", text))
		}
	}
}

func (b *Bot) reconnect(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.opts.Reconnect.InitialDelay
	bo.MaxInterval = b.opts.Reconnect.MaxDelay

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := b.conn.Connect(ctx)
		if err == nil {
			return struct{}{}, nil
		}

		metrics.Reconnects.WithLabelValues("failure").Inc()
		b.log.Error("Reconnect failed", err, slog.Int("attempt", attempt))
		if errors.Is(err, irc.ErrAuthFailed) || ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(b.opts.Reconnect.MaxTries))
	if err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}

	metrics.Reconnects.WithLabelValues("success").Inc()
	return nil
}

func (b *Bot) handleLine(ctx context.Context, pool *workers.Pool, line string) {
	metrics.LinesReceived.Inc()

	if irc.IsKeepAlive(line) {
		if err := b.conn.Send(irc.Pong(line)); err != nil {
			b.log.Error("Failed to answer keep-alive", err)
			return
		}
		metrics.KeepAlives.Inc()
		return
	}

	msg, err := irc.Decode(line)
	if err != nil {
		metrics.MalformedLines.Inc()
		b.log.Trace("Skipping line", slog.String("line", line))
		b.skipped.Do(func() {
			b.log.Debug("Skipping non-chat lines", slog.String("example", line))
		})
		return
	}

	metrics.MessagesReceived.Inc()
	b.log.Debug("New message", slog.String("username", msg.User), slog.String("text", msg.Text))
	b.dispatch(ctx, pool, msg)
}

func (b *Bot) dispatch(ctx context.Context, pool *workers.Pool, msg message.Message) {
	if b.moderator != nil {
		b.submit(ctx, pool, "moderation", func(ctx context.Context) (string, error) {
			banned, err := b.moderator.Moderate(ctx, msg)
			if banned {
				metrics.ModerationActions.WithLabelValues("ban").Inc()
			}
			return "", err
		})
	}

	trigger := msg.Trigger()
	handler, ok := b.registry.Command(trigger)
	if !ok {
		return
	}

	metrics.UserCommands.WithLabelValues(trigger).Inc()
	b.submit(ctx, pool, "command", func(ctx context.Context) (string, error) {
		return handler(ctx, msg)
	})
}

func (b *Bot) submit(ctx context.Context, pool *workers.Pool, kind string, fn func(context.Context) (string, error)) {
	if err := pool.Submit(func() { b.guard(ctx, kind, fn) }); err != nil {
		metrics.DroppedUnits.WithLabelValues(kind).Inc()
		b.log.Warn("Dropped unit of work", slog.String("kind", kind), slog.String("error", err.Error()))
	}
}

func (b *Bot) startTimer(ctx context.Context, entry registry.TimerEntry) {
	id := fmt.Sprintf("timer-%d", entry.ID)
	b.timers.AddTimer(ctx, id, entry.Interval, func(ctx context.Context) {
		metrics.TimerFirings.WithLabelValues(id).Inc()
		b.guard(ctx, "timer", entry.Handler)
	})
}
