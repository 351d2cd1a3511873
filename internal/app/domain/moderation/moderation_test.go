package moderation

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"sync"
	"testing"
	"time"
	"twitchbot/internal/app/domain/message"
	"twitchbot/pkg/logger"
)

type fakeSender struct {
	mu   sync.Mutex
	said []string
	err  error
}

func (f *fakeSender) Say(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.said = append(f.said, text)
	return nil
}

func newModerator(t *testing.T, sender *fakeSender, opts Options) *Moderator {
	t.Helper()

	m, err := New(logger.New(logger.WithOutput(io.Discard)), sender, opts)
	require.NoError(t, err)
	return m
}

func TestModerator_Evaluate(t *testing.T) {
	m := newModerator(t, &fakeSender{}, Options{Patterns: []string{`buy\s+followers`, `r'spam(bot)?'`, `^exact$`}})

	tests := []struct {
		name    string
		text    string
		wantBan bool
		pattern string
	}{
		{"unanchored match", "hey buy   followers now", true, `buy\s+followers`},
		{"raw form", "i am a spambot", true, `spam(bot)?`},
		{"anchored pattern", "exact", true, `^exact$`},
		{"anchored pattern no match", "not exact", false, ""},
		{"clean", "hello chat", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, ok := m.Evaluate(message.New("mallory", tt.text))
			assert.Equal(t, tt.wantBan, ok)
			if ok {
				assert.Equal(t, "mallory", action.User)
				assert.Equal(t, tt.pattern, action.Pattern)
				assert.Equal(t, "/ban mallory", action.Command())
			}
		})
	}
}

func TestModerator_FirstMatchWins(t *testing.T) {
	m := newModerator(t, &fakeSender{}, Options{Patterns: []string{"foo", "foo bar"}})

	action, ok := m.Evaluate(message.New("x", "foo bar"))
	require.True(t, ok)
	assert.Equal(t, "foo", action.Pattern)
}

func TestModerator_ModerateSendsOneBan(t *testing.T) {
	sender := &fakeSender{}
	m := newModerator(t, sender, Options{Patterns: []string{"bad", "worse"}})

	banned, err := m.Moderate(context.Background(), message.New("mallory", "bad and worse"))
	require.NoError(t, err)
	assert.True(t, banned)

	banned, err = m.Moderate(context.Background(), message.New("alice", "fine"))
	require.NoError(t, err)
	assert.False(t, banned)

	assert.Equal(t, []string{"/ban mallory"}, sender.said)
}

func TestModerator_Cooldown(t *testing.T) {
	sender := &fakeSender{}
	m := newModerator(t, sender, Options{Patterns: []string{"bad"}, Cooldown: time.Minute})

	for range 3 {
		_, err := m.Moderate(context.Background(), message.New("Mallory", "bad"))
		require.NoError(t, err)
	}
	_, err := m.Moderate(context.Background(), message.New("eve", "bad"))
	require.NoError(t, err)

	assert.Equal(t, []string{"/ban Mallory", "/ban eve"}, sender.said)
}

func TestModerator_BansEveryMatchWithoutCooldown(t *testing.T) {
	sender := &fakeSender{}
	m := newModerator(t, sender, Options{Patterns: []string{"spam"}})

	for range 2 {
		banned, err := m.Moderate(context.Background(), message.New("mallory", "spam spam"))
		require.NoError(t, err)
		assert.True(t, banned)
	}
	assert.Equal(t, []string{"/ban mallory", "/ban mallory"}, sender.said)
}

func TestModerator_SendFailureIsRetriedNextTime(t *testing.T) {
	sender := &fakeSender{err: errors.New("closed")}
	m := newModerator(t, sender, Options{Patterns: []string{"bad"}, Cooldown: time.Minute})

	_, err := m.Moderate(context.Background(), message.New("mallory", "bad"))
	require.Error(t, err)

	sender.err = nil
	banned, err := m.Moderate(context.Background(), message.New("mallory", "bad"))
	require.NoError(t, err)
	assert.True(t, banned)
}

func TestModerator_InvalidPattern(t *testing.T) {
	_, err := New(logger.New(logger.WithOutput(io.Discard)), &fakeSender{}, Options{Patterns: []string{"("}})
	assert.Error(t, err)
}

func TestModerator_NoPatterns(t *testing.T) {
	sender := &fakeSender{}
	m := newModerator(t, sender, Options{})

	banned, err := m.Moderate(context.Background(), message.New("alice", "anything"))
	require.NoError(t, err)
	assert.False(t, banned)
	assert.Empty(t, sender.said)
}
