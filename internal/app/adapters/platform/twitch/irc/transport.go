package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"github.com/gorilla/websocket"
	"golang.org/x/net/proxy"
	"io"
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"
)

const (
	TransportTCP       = "tcp"
	TransportTLS       = "tls"
	TransportWebSocket = "wss"
	TransportPlainWS   = "ws"
)

// Dialer opens a fresh transport for one connection attempt.
type Dialer interface {
	Dial(ctx context.Context) (io.ReadWriteCloser, error)
}

type DialerFunc func(ctx context.Context) (io.ReadWriteCloser, error)

func (f DialerFunc) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	return f(ctx)
}

type DialOptions struct {
	Transport string
	Host      string
	Port      int
	// Proxy is the host:port of a SOCKS5 proxy; empty dials directly.
	Proxy   string
	Timeout time.Duration
}

func (o DialOptions) addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func NewDialer(opts DialOptions) (Dialer, error) {
	base, err := baseDialer(opts)
	if err != nil {
		return nil, err
	}

	switch opts.Transport {
	case TransportTCP, TransportTLS, "":
		return &netDialer{opts: opts, base: base}, nil
	case TransportWebSocket, TransportPlainWS:
		return &wsDialer{opts: opts, base: base}, nil
	}
	return nil, fmt.Errorf("unknown transport %q", opts.Transport)
}

func baseDialer(opts DialOptions) (proxy.ContextDialer, error) {
	direct := &net.Dialer{Timeout: opts.Timeout}
	if opts.Proxy == "" {
		return direct, nil
	}

	d, err := proxy.SOCKS5("tcp", opts.Proxy, nil, direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("socks5 dialer does not support contexts")
	}
	return cd, nil
}

type netDialer struct {
	opts DialOptions
	base proxy.ContextDialer
}

func (d *netDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	conn, err := d.base.DialContext(ctx, "tcp", d.opts.addr())
	if err != nil {
		return nil, err
	}
	if d.opts.Transport != TransportTLS {
		return conn, nil
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: d.opts.Host, MinVersion: tls.VersionTLS12})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

type wsDialer struct {
	opts DialOptions
	base proxy.ContextDialer
}

func (d *wsDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	dialer := websocket.Dialer{
		NetDialContext:   d.base.DialContext,
		HandshakeTimeout: d.opts.Timeout,
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
	}

	url := fmt.Sprintf("%s://%s", d.opts.Transport, d.opts.addr())
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

// wsTransport exposes a websocket as a byte stream: every text frame is
// read through in turn and every Write becomes one frame.
type wsTransport struct {
	conn   *websocket.Conn
	reader io.Reader
	wmu    sync.Mutex
}

func (w *wsTransport) Read(p []byte) (int, error) {
	for {
		if w.reader == nil {
			_, r, err := w.conn.NextReader()
			if err != nil {
				return 0, err
			}
			w.reader = r
		}

		n, err := w.reader.Read(p)
		if errors.Is(err, io.EOF) {
			w.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (w *wsTransport) Write(p []byte) (int, error) {
	w.wmu.Lock()
	defer w.wmu.Unlock()

	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsTransport) Close() error {
	return w.conn.Close()
}

// isConnectionLost separates a dropped peer from other transport failures.
func isConnectionLost(err error) bool {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return true
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
