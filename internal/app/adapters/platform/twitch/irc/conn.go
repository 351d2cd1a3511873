package irc

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"twitchbot/pkg/logger"
	"unicode/utf8"
)

const (
	defaultReadBufferSize   = 4096
	defaultHandshakeTimeout = 30 * time.Second

	maxMessageLength = 500
)

type State int32

const (
	Disconnected State = iota
	Handshaking
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Handshaking:
		return "handshaking"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	}
	return "unknown"
}

type Options struct {
	Username         string
	OAuth            string
	Channel          string
	HandshakeTimeout time.Duration
	ReadBufferSize   int
	MaxLineLength    int
}

// Conn owns the transport and its handshake. Connect and NextLines are
// called from a single reading goroutine; Send is safe for concurrent use.
type Conn struct {
	log    logger.Logger
	opts   Options
	dialer Dialer

	state     atomic.Int32
	connected atomic.Bool

	mu        sync.Mutex
	transport io.ReadWriteCloser
	// joined is the transport once its handshake has completed; chat goes
	// only there
	joined  io.ReadWriteCloser
	session string

	wmu sync.Mutex

	framer  *Framer
	buf     []byte
	pending []string

	onStateChange func(State)
}

func New(log logger.Logger, opts Options, dialer Dialer) *Conn {
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = defaultReadBufferSize
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshakeTimeout
	}

	return &Conn{
		log:    log,
		opts:   opts,
		dialer: dialer,
		framer: NewFramer(opts.MaxLineLength),
		buf:    make([]byte, opts.ReadBufferSize),
	}
}

// OnStateChange registers a callback for state transitions. It must be set
// before Connect is called.
func (c *Conn) OnStateChange(fn func(State)) {
	c.onStateChange = fn
}

func (c *Conn) State() State {
	return State(c.state.Load())
}

func (c *Conn) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

func (c *Conn) Channel() string {
	return strings.TrimPrefix(c.opts.Channel, "#")
}

func (c *Conn) setState(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}
	if c.onStateChange != nil {
		c.onStateChange(s)
	}
}

// Connect replaces any existing transport with a new one and runs the
// PASS/NICK/JOIN handshake, returning once the server has finished sending
// the channel's member list.
func (c *Conn) Connect(ctx context.Context) error {
	c.closeTransport()
	c.framer.Reset()
	c.pending = nil

	if c.connected.Load() {
		c.setState(Reconnecting)
	} else {
		c.setState(Handshaking)
	}

	hctx, cancel := context.WithTimeout(ctx, c.opts.HandshakeTimeout)
	defer cancel()

	c.log.Info("Connecting to chat", slog.String("channel", c.Channel()))
	t, err := c.dialer.Dial(hctx)
	if err != nil {
		return c.connectFailed("dial", handshakeErr(ctx, hctx, err))
	}

	// closing the transport is the only way to interrupt a blocked read
	stop := context.AfterFunc(hctx, func() { _ = t.Close() })
	defer stop()

	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
	c.setState(Handshaking)

	for _, line := range []string{
		"PASS " + oauthToken(c.opts.OAuth),
		"NICK " + strings.ToLower(c.opts.Username),
		"JOIN " + channelName(strings.ToLower(c.opts.Channel)),
	} {
		if err := c.Send(line); err != nil {
			return c.connectFailed("auth", handshakeErr(ctx, hctx, err))
		}
	}

	joined := false
	for !joined {
		lines, err := c.read()
		for i, line := range lines {
			c.log.Trace("Handshake line", slog.String("line", line))

			switch {
			case IsKeepAlive(line):
				if err := c.Send(Pong(line)); err != nil {
					return c.connectFailed("join", handshakeErr(ctx, hctx, err))
				}
			case IsAuthFailure(line):
				return c.connectFailed("auth", fmt.Errorf("%w: %s", ErrAuthFailed, line))
			case IsJoinComplete(line):
				joined = true
				// chat that arrived in the same read belongs to the new session
				c.pending = append(c.pending, lines[i+1:]...)
			}
			if joined {
				break
			}
		}

		if !joined && err != nil {
			return c.connectFailed("join", handshakeErr(ctx, hctx, err))
		}
	}

	if !stop() {
		return c.connectFailed("join", handshakeErr(ctx, hctx, hctx.Err()))
	}

	session := uuid.NewString()
	c.mu.Lock()
	c.session = session
	c.joined = t
	c.mu.Unlock()

	c.connected.Store(true)
	c.setState(Connected)
	c.log.Info("Joined chat", slog.String("channel", c.Channel()), slog.String("session", session))
	return nil
}

func (c *Conn) connectFailed(stage string, err error) error {
	c.closeTransport()
	c.setState(Disconnected)
	return &ConnectError{Stage: stage, Err: err}
}

func handshakeErr(parent, hctx context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(hctx.Err(), context.DeadlineExceeded) {
		return ErrHandshakeTimeout
	}
	return err
}

func oauthToken(token string) string {
	if strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}

// Send writes one line followed by CRLF. Writes never interleave.
func (c *Conn) Send(line string) error {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()

	return c.write(t, line)
}

// Say sends text to the joined channel as a chat message. It fails with
// ErrNotConnected while a handshake is in progress.
func (c *Conn) Say(text string) error {
	if utf8.RuneCountInString(text) >= maxMessageLength {
		return &SendError{Line: text, Err: ErrMessageTooLong}
	}

	c.mu.Lock()
	t := c.joined
	c.mu.Unlock()

	return c.write(t, PrivMsg(c.opts.Channel, text))
}

func (c *Conn) write(t io.ReadWriteCloser, line string) error {
	if t == nil {
		return &SendError{Line: line, Err: ErrNotConnected}
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	if _, err := io.WriteString(t, line+"\r\n"); err != nil {
		return &SendError{Line: line, Err: err}
	}
	c.log.Trace("Sent line", slog.String("line", redact(line)))
	return nil
}

// NextLines blocks for one transport read and returns the complete lines it
// produced. Lines may accompany a non-nil error. ErrConnectionLost is the
// only error a caller is expected to recover from.
func (c *Conn) NextLines(ctx context.Context) ([]string, error) {
	if len(c.pending) > 0 {
		lines := c.pending
		c.pending = nil
		return lines, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := c.read()
	if err != nil && ctx.Err() != nil {
		return lines, ctx.Err()
	}
	return lines, err
}

func (c *Conn) read() ([]string, error) {
	c.mu.Lock()
	t := c.transport
	c.mu.Unlock()

	if t == nil {
		return nil, ErrNotConnected
	}

	n, err := t.Read(c.buf)

	var lines []string
	if n > 0 {
		lines = c.framer.Feed(c.buf[:n])
	}

	switch {
	case err != nil && isConnectionLost(err):
		c.lost()
		return lines, fmt.Errorf("%w: %w", ErrConnectionLost, err)
	case err != nil:
		return lines, fmt.Errorf("read: %w", err)
	case n == 0:
		c.lost()
		return lines, ErrConnectionLost
	}
	return lines, nil
}

func (c *Conn) lost() {
	c.mu.Lock()
	c.joined = nil
	c.mu.Unlock()
	c.setState(Disconnected)
}

// Close drops the transport. A blocked NextLines returns with an error.
func (c *Conn) Close() error {
	err := c.closeTransport()
	c.setState(Disconnected)
	return err
}

func (c *Conn) closeTransport() error {
	c.mu.Lock()
	t := c.transport
	c.transport = nil
	c.joined = nil
	c.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.Close()
}
