package commands

import (
	"context"
	"errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"time"
	"twitchbot/internal/app/adapters/metrics"
	"twitchbot/internal/app/domain/message"
	"twitchbot/internal/app/domain/registry"
	"twitchbot/internal/app/infrastructure/config"
	"twitchbot/internal/app/ports"
	"twitchbot/pkg/logger"
)

type fakeStatus struct{ st ports.Status }

func (f fakeStatus) Status() ports.Status { return f.st }

func TestStatic(t *testing.T) {
	tests := []struct {
		text string
		user string
		want string
	}{
		{"hi {user}", "alice", "hi alice"},
		{"{user} vs {user}", "bob", "bob vs bob"},
		{"no placeholder", "carol", "no placeholder"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Static(tt.text)(context.Background(), message.New(tt.user, "!cmd"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnnouncement(t *testing.T) {
	got, err := Announcement("follow the channel")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "follow the channel", got)
}

func TestStatus(t *testing.T) {
	st := fakeStatus{ports.Status{State: "connected", StartedAt: time.Now().Add(-90 * time.Second)}}

	s := NewStatus(st, func() (float64, error) { return 12.5, nil })
	got, err := s.Handle(context.Background(), message.New("alice", "!status"))
	require.NoError(t, err)
	assert.Contains(t, got, "bot running 1m30s")
	assert.Contains(t, got, "CPU load 12.50%")
	assert.Contains(t, got, "connected")

	s = NewStatus(st, func() (float64, error) { return 0, errors.New("no cpu") })
	_, err = s.Handle(context.Background(), message.New("alice", "!status"))
	assert.ErrorContains(t, err, "no cpu")
}

func TestRegister(t *testing.T) {
	cfg := (&config.Manager{}).GetDefault()
	cfg.Commands = map[string]string{"!hello": "hi {user}", "!discord": "discord.gg/room"}
	cfg.Timers = []config.Timer{{Text: "hydrate", Interval: 15}}

	r := registry.New()
	require.NoError(t, Register(r, cfg, fakeStatus{}))

	assert.ElementsMatch(t, []string{"!hello", "!discord", "!status"}, r.Triggers())

	handler, ok := r.Command("!hello")
	require.True(t, ok)
	got, err := handler(context.Background(), message.New("alice", "!hello"))
	require.NoError(t, err)
	assert.Equal(t, "hi alice", got)

	timers := r.Timers()
	require.Len(t, timers, 1)
	assert.Equal(t, 15*time.Minute, timers[0].Interval)
}

func TestRegister_Frozen(t *testing.T) {
	cfg := (&config.Manager{}).GetDefault()
	cfg.Commands = map[string]string{"!hello": "hi"}

	r := registry.New()
	r.Freeze()
	assert.ErrorIs(t, Register(r, cfg, fakeStatus{}), registry.ErrFrozen)
}

func TestCollectCPU(t *testing.T) {
	log := logger.New(logger.WithOutput(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		CollectCPU(ctx, log, 5*time.Millisecond, func() (float64, error) { return 42, nil })
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.CPUUsage) == 42
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
