package timers

import (
	"context"
	"sync"
	"time"
)

type Timer struct {
	ID       string
	Interval time.Duration
	Task     func(ctx context.Context)
	stop     context.CancelFunc
}

// Scheduler runs every timer on its own goroutine and ticker, so a slow task
// only delays its own next firing.
type Scheduler struct {
	mutex  sync.Mutex
	timers map[string]*Timer
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*Timer)}
}

// AddTimer starts firing task every interval until ctx is done or the timer
// is removed. Re-adding an id replaces the running timer.
func (s *Scheduler) AddTimer(ctx context.Context, id string, interval time.Duration, task func(ctx context.Context)) {
	tctx, cancel := context.WithCancel(ctx)
	t := &Timer{
		ID:       id,
		Interval: interval,
		Task:     task,
		stop:     cancel,
	}

	s.mutex.Lock()
	if old, ok := s.timers[id]; ok {
		old.stop()
	}
	s.timers[id] = t
	s.mutex.Unlock()

	s.wg.Add(1)
	go s.run(tctx, t)
}

func (s *Scheduler) run(ctx context.Context, t *Timer) {
	defer s.wg.Done()
	defer s.forget(t)

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Task(ctx)
		}
	}
}

func (s *Scheduler) forget(t *Timer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.timers[t.ID] == t {
		delete(s.timers, t.ID)
	}
}

func (s *Scheduler) RemoveTimer(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t, ok := s.timers[id]; ok {
		t.stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) ActiveTimers() map[string]time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make(map[string]time.Duration, len(s.timers))
	for id, t := range s.timers {
		out[id] = t.Interval
	}
	return out
}

// Wait blocks until every timer goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
