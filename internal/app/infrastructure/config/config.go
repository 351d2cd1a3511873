package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	EnvUsername = "TWITCH_BOT_USERNAME"
	EnvOAuth    = "TWITCH_OAUTH_TOKEN"
	EnvChannel  = "TWITCH_CHANNEL"
)

// ErrDefaultsWritten is returned by New when no config existed and a
// default one was written, but credentials are still missing.
var ErrDefaultsWritten = errors.New("default config written, fill in chat credentials")

type Manager struct {
	mu   sync.RWMutex
	cfg  *Config
	path string

	// значения из файла, перекрытые переменными окружения
	fileChat Chat
	lookup   func(string) (string, bool)
}

type Option func(*Manager)

// WithLookupEnv replaces os.LookupEnv, for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(m *Manager) {
		m.lookup = fn
	}
}

// LoadEnv reads a dotenv file into the process environment. A missing file
// is not an error; variables already set are kept.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env %s: %w", path, err)
	}
	return nil
}

func New(path string, opts ...Option) (*Manager, error) {
	m := &Manager{path: path, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(m)
	}

	cfg, err := m.readParse(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	created := false
	if errors.Is(err, os.ErrNotExist) {
		cfg = m.GetDefault()
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal config: %w", err)
		}

		if err := m.writeAtomic(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write config: %w", err)
		}
		created = true
	}

	m.fileChat = cfg.Chat
	m.applyEnv(cfg)

	if err := m.validate(cfg); err != nil {
		if created {
			return nil, fmt.Errorf("%w: %s: %w", ErrDefaultsWritten, path, err)
		}
		return nil, fmt.Errorf("validate: %w", err)
	}

	m.cfg = cfg
	return m, nil
}

func (m *Manager) applyEnv(cfg *Config) {
	if v, ok := m.lookup(EnvUsername); ok && v != "" {
		cfg.Chat.Username = v
	}
	if v, ok := m.lookup(EnvOAuth); ok && v != "" {
		cfg.Chat.OAuth = v
	}
	if v, ok := m.lookup(EnvChannel); ok && v != "" {
		cfg.Chat.Channel = v
	}
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cfg
}

func (m *Manager) Update(modify func(cfg *Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg == nil {
		return errors.New("no config loaded")
	}

	modify(m.cfg)

	if err := m.validate(m.cfg); err != nil {
		return fmt.Errorf("invalid config update: %w", err)
	}
	return m.saveLocked()
}

func (m *Manager) readParse(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("no config path provided")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open/read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &cfg, nil
}

func (m *Manager) saveLocked() error {
	if m.path == "" {
		return errors.New("no config file loaded")
	}
	if m.cfg == nil {
		return errors.New("no config to save")
	}

	// секреты из окружения в файл не попадают
	out := *m.cfg
	if v, ok := m.lookup(EnvUsername); ok && v != "" && out.Chat.Username == v {
		out.Chat.Username = m.fileChat.Username
	}
	if v, ok := m.lookup(EnvOAuth); ok && v != "" && out.Chat.OAuth == v {
		out.Chat.OAuth = m.fileChat.OAuth
	}
	if v, ok := m.lookup(EnvChannel); ok && v != "" && out.Chat.Channel == v {
		out.Chat.Channel = m.fileChat.Channel
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return m.writeAtomic(m.path, data, 0644)
}

func (m *Manager) writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", base, time.Now().UnixNano()))

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (c *Chat) HandshakeTimeoutDuration() time.Duration {
	return time.Duration(c.HandshakeTimeout) * time.Second
}

func (r *Reconnect) InitialDelayDuration() time.Duration {
	return time.Duration(r.InitialDelay) * time.Millisecond
}

func (r *Reconnect) MaxDelayDuration() time.Duration {
	return time.Duration(r.MaxDelay) * time.Millisecond
}

func (d *Dispatch) HandlerTimeoutDuration() time.Duration {
	return time.Duration(d.HandlerTimeout) * time.Second
}

func (b *Banwords) MatchTimeoutDuration() time.Duration {
	return time.Duration(b.MatchTimeout) * time.Millisecond
}

func (b *Banwords) CooldownDuration() time.Duration {
	return time.Duration(b.Cooldown) * time.Second
}

func (t *Timer) IntervalDuration() time.Duration {
	return time.Duration(t.Interval) * time.Minute
}
