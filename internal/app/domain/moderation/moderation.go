package moderation

import (
	"context"
	"fmt"
	"github.com/dlclark/regexp2"
	"log/slog"
	"strings"
	"time"
	"twitchbot/internal/app/domain/message"
	"twitchbot/internal/app/infrastructure/storage"
	"twitchbot/internal/app/ports"
	"twitchbot/pkg/logger"
)

const (
	defaultMatchTimeout = 100 * time.Millisecond
	bannedCacheSize     = 10_000
)

type BanAction struct {
	User    string
	Pattern string
}

// Command is the chat directive that performs the ban.
func (b BanAction) Command() string {
	return "/ban " + b.User
}

type Options struct {
	Patterns     []string
	MatchTimeout time.Duration
	// Cooldown suppresses repeated bans of the same user; zero disables it.
	Cooldown time.Duration
}

// Moderator tests chat text against banned patterns. Patterns are compiled
// once and never change.
type Moderator struct {
	log      logger.Logger
	sender   ports.SenderPort
	patterns []*regexp2.Regexp
	banned   ports.CachePort[struct{}]
}

func New(log logger.Logger, sender ports.SenderPort, opts Options) (*Moderator, error) {
	if opts.MatchTimeout <= 0 {
		opts.MatchTimeout = defaultMatchTimeout
	}

	m := &Moderator{log: log, sender: sender}
	for _, p := range opts.Patterns {
		re, err := Compile(p)
		if err != nil {
			return nil, err
		}
		re.MatchTimeout = opts.MatchTimeout
		m.patterns = append(m.patterns, re)
	}

	if opts.Cooldown > 0 {
		m.banned = storage.NewCache[struct{}](bannedCacheSize, opts.Cooldown)
	}
	return m, nil
}

// Compile accepts a bare pattern or the r'...' / r"..." form used in configs.
func Compile(pattern string) (*regexp2.Regexp, error) {
	if (strings.HasPrefix(pattern, `r"`) && strings.HasSuffix(pattern, `"`)) ||
		(strings.HasPrefix(pattern, `r'`) && strings.HasSuffix(pattern, `'`)) {
		if len(pattern) >= 3 {
			pattern = pattern[2 : len(pattern)-1]
		}
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid ban pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Evaluate returns the ban for the first pattern found anywhere in the text.
func (m *Moderator) Evaluate(msg message.Message) (BanAction, bool) {
	for _, re := range m.patterns {
		ok, err := re.MatchString(msg.Text)
		if err != nil {
			m.log.Warn("Ban pattern match aborted", slog.String("pattern", re.String()), slog.String("error", err.Error()))
			continue
		}
		if ok {
			return BanAction{User: msg.User, Pattern: re.String()}, true
		}
	}
	return BanAction{}, false
}

// Moderate evaluates msg and sends the ban on a match. It reports whether a
// ban was sent.
func (m *Moderator) Moderate(ctx context.Context, msg message.Message) (bool, error) {
	if len(m.patterns) == 0 {
		return false, nil
	}

	action, ok := m.Evaluate(msg)
	if !ok {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := strings.ToLower(action.User)
	if m.banned != nil && !m.banned.SetIfAbsent(key, struct{}{}) {
		m.log.Debug("User already banned", slog.String("username", action.User))
		return false, nil
	}

	m.log.Warn("Banword in phrase", slog.String("username", action.User), slog.String("text", msg.Text), slog.String("pattern", action.Pattern))
	if err := m.sender.Say(action.Command()); err != nil {
		if m.banned != nil {
			m.banned.ClearKey(key)
		}
		return false, fmt.Errorf("send ban for %s: %w", action.User, err)
	}
	return true, nil
}
