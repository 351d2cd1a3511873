package ports

import (
	"context"
	"time"
)

type TimersPort interface {
	AddTimer(ctx context.Context, id string, interval time.Duration, task func(ctx context.Context))
	ActiveTimers() map[string]time.Duration
	Wait()
}
