// Package irctest provides an in-memory chat server for tests. Each dial
// creates a net.Pipe; the server side is handed to the test as a Peer.
package irctest

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	DefaultTimeout = 2 * time.Second

	JoinComplete = ":bot.tmi.twitch.tv 366 bot #room :End of /NAMES list"
)

type Server struct {
	peers chan *Peer

	mu      sync.Mutex
	dials   int
	dialErr error
}

func NewServer() *Server {
	return &Server{peers: make(chan *Peer, 16)}
}

// Dial matches irc.DialerFunc.
func (s *Server) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	s.mu.Lock()
	s.dials++
	err := s.dialErr
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, server := net.Pipe()
	s.peers <- newPeer(server)
	return client, nil
}

// FailDials makes every following Dial return err. A nil err restores dialing.
func (s *Server) FailDials(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dialErr = err
}

func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dials
}

// Accept returns the peer of the next dial.
func (s *Server) Accept(t testing.TB) *Peer {
	t.Helper()

	select {
	case p := <-s.peers:
		return p
	case <-time.After(DefaultTimeout):
		t.Fatal("no connection dialed")
		return nil
	}
}

type Peer struct {
	conn  net.Conn
	lines chan string
}

func newPeer(conn net.Conn) *Peer {
	p := &Peer{conn: conn, lines: make(chan string, 256)}
	go func() {
		defer close(p.lines)

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			p.lines <- strings.TrimRight(scanner.Text(), "\r")
		}
	}()
	return p
}

// Send writes one CRLF-terminated line to the client.
func (p *Peer) Send(t testing.TB, line string) {
	t.Helper()

	_ = p.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := io.WriteString(p.conn, line+"\r\n"); err != nil {
		t.Fatalf("send %q: %v", line, err)
	}
}

// SendRaw writes bytes as is, for framing tests.
func (p *Peer) SendRaw(t testing.TB, data string) {
	t.Helper()

	_ = p.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := io.WriteString(p.conn, data); err != nil {
		t.Fatalf("send raw: %v", err)
	}
}

// Expect returns the next line the client wrote.
func (p *Peer) Expect(t testing.TB) string {
	t.Helper()

	select {
	case line, ok := <-p.lines:
		if !ok {
			t.Fatal("connection closed while waiting for a line")
		}
		return line
	case <-time.After(DefaultTimeout):
		t.Fatal("timed out waiting for a line")
	}
	return ""
}

// ExpectNone fails if the client writes anything within d.
func (p *Peer) ExpectNone(t testing.TB, d time.Duration) {
	t.Helper()

	select {
	case line, ok := <-p.lines:
		if ok {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(d):
	}
}

// Handshake consumes PASS, NICK and JOIN, then completes the join. It
// returns the three handshake lines.
func (p *Peer) Handshake(t testing.TB) []string {
	t.Helper()

	got := []string{p.Expect(t), p.Expect(t), p.Expect(t)}
	p.Send(t, ":tmi.twitch.tv 001 bot :Welcome, GLHF!")
	p.Send(t, JoinComplete)
	return got
}

func (p *Peer) Close() {
	_ = p.conn.Close()
}
