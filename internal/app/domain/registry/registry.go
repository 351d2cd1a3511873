package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"twitchbot/internal/app/domain/message"
)

var (
	ErrFrozen          = errors.New("registry is frozen")
	ErrEmptyTrigger    = errors.New("empty trigger")
	ErrNilHandler      = errors.New("nil handler")
	ErrInvalidInterval = errors.New("timer interval must be positive")
)

// CommandHandler answers a chat message. An empty reply sends nothing.
type CommandHandler func(ctx context.Context, msg message.Message) (string, error)

// TimerHandler produces the text a timer posts on each firing.
type TimerHandler func(ctx context.Context) (string, error)

type TimerEntry struct {
	ID       int
	Handler  TimerHandler
	Interval time.Duration
}

// Registry maps trigger tokens to handlers and keeps the timer list. It is
// filled during setup and frozen before the read loop starts, after which
// lookups need no locking.
type Registry struct {
	mu       sync.Mutex
	frozen   atomic.Bool
	commands map[string]CommandHandler
	timers   []TimerEntry
}

func New() *Registry {
	return &Registry{commands: make(map[string]CommandHandler)}
}

// RegisterCommand binds trigger to handler, replacing an earlier binding.
func (r *Registry) RegisterCommand(trigger string, handler CommandHandler) error {
	switch {
	case trigger == "":
		return ErrEmptyTrigger
	case handler == nil:
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return ErrFrozen
	}
	r.commands[trigger] = handler
	return nil
}

// RegisterTimer adds one more timer entry. Duplicates are allowed.
func (r *Registry) RegisterTimer(handler TimerHandler, interval time.Duration) error {
	switch {
	case handler == nil:
		return ErrNilHandler
	case interval <= 0:
		return ErrInvalidInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return ErrFrozen
	}
	r.timers = append(r.timers, TimerEntry{ID: len(r.timers), Handler: handler, Interval: interval})
	return nil
}

// Freeze ends the setup phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen.Store(true)
}

func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Command looks up an exact trigger. A miss is not an error.
func (r *Registry) Command(trigger string) (CommandHandler, bool) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}

	h, ok := r.commands[trigger]
	return h, ok
}

func (r *Registry) Timers() []TimerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TimerEntry, len(r.timers))
	copy(out, r.timers)
	return out
}

func (r *Registry) Triggers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.commands))
	for trigger := range r.commands {
		out = append(out, trigger)
	}
	return out
}
