package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
	"twitchbot/internal/app/adapters/metrics"
)

var errPanic = errors.New("handler panicked")

type result struct {
	text string
	err  error
}

// guard runs one handler with a deadline and sends its reply. Errors, panics
// and timeouts are logged and end here.
func (b *Bot) guard(ctx context.Context, kind string, fn func(context.Context) (string, error)) {
	uctx, cancel := context.WithTimeout(ctx, b.opts.HandlerTimeout)
	defer cancel()

	done := make(chan result, 1)
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("Handler panic", nil, slog.String("kind", kind), slog.String("stack", string(debug.Stack())))
				done <- result{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()

		text, err := fn(uctx)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		metrics.HandlerDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		b.deliver(kind, res)
	case <-uctx.Done():
		metrics.HandlerFailures.WithLabelValues(kind, "timeout").Inc()
		b.log.Warn("Handler abandoned", slog.String("kind", kind), slog.String("error", uctx.Err().Error()))
	}
}

func (b *Bot) deliver(kind string, res result) {
	if res.err != nil {
		reason := "error"
		if errors.Is(res.err, errPanic) {
			reason = "panic"
		}
		metrics.HandlerFailures.WithLabelValues(kind, reason).Inc()
		b.log.Error("Handler failed", res.err, slog.String("kind", kind))
		return
	}
	if res.text == "" {
		return
	}

	if err := b.conn.Say(res.text); err != nil {
		metrics.HandlerFailures.WithLabelValues(kind, "send").Inc()
		b.log.Error("Failed to send reply", err, slog.String("kind", kind))
	}
}
